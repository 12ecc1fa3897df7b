// Package company implements the company profile store and the draft
// merge engine: autosaved drafts are consolidated into the canonical
// company record inside a single transaction.
package company

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/auth"
	"github.com/workmatch/workmatch/internal/db"
	svcErr "github.com/workmatch/workmatch/internal/errors"
	"github.com/workmatch/workmatch/internal/metrics"
	"github.com/workmatch/workmatch/internal/repository"
)

var validate = validator.New()

// fieldRules mirrors db.CompanyFields for payload validation. Companies
// keep at most three slider selections.
type fieldRules struct {
	Name       string             `validate:"max=128"`
	WebsiteURL string             `validate:"omitempty,url"`
	Sliders    []db.CompanySlider `validate:"max=3,dive"`
}

type Service struct {
	appCtx      *app.AppContext
	companyRepo *repository.CompanyRepository
	userRepo    *repository.UserRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		companyRepo: repository.NewCompanyRepository(appCtx.DB),
		userRepo:    repository.NewUserRepository(appCtx.DB),
	}
}

// ValidateFields checks a company payload against the field rules.
func ValidateFields(f db.CompanyFields) error {
	err := validate.Struct(fieldRules{
		Name:       f.Name,
		WebsiteURL: f.WebsiteURL,
		Sliders:    f.Sliders,
	})
	if err != nil {
		return svcErr.Invalid(err.Error())
	}
	return nil
}

// SaveDraft upserts the caller's single active draft. A user editing an
// existing company gets draftType "edit" keyed by that company; a user
// with no company gets draftType "create" keyed by company 0. Each save
// overwrites the draft document wholesale.
func (s *Service) SaveDraft(ctx context.Context, authCtx auth.AuthContext, fields db.CompanyFields, step int) (*db.CompanyDraft, error) {
	if authCtx.Role != db.RoleEmployer {
		return nil, svcErr.Forbidden("employer accounts only")
	}
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}

	draftType := db.DraftTypeCreate
	companyID := uint64(0)
	if authCtx.CompanyID != 0 {
		draftType = db.DraftTypeEdit
		companyID = authCtx.CompanyID
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	draft := db.CompanyDraft{
		UserID:     authCtx.UserID,
		CompanyID:  companyID,
		DraftType:  draftType,
		DraftData:  string(data),
		Step:       step,
		LastActive: time.Now().UTC(),
	}
	if err := s.companyRepo.UpsertDraft(ctx, draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// GetDraft returns the caller's active draft, or NotFound.
func (s *Service) GetDraft(ctx context.Context, authCtx auth.AuthContext) (*db.CompanyDraft, error) {
	draft, err := s.companyRepo.GetDraft(ctx, authCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("no active draft")
		}
		return nil, err
	}
	return draft, nil
}

// DiscardDraft throws the caller's draft away without applying it.
func (s *Service) DiscardDraft(ctx context.Context, authCtx auth.AuthContext) error {
	draft, err := s.companyRepo.GetDraft(ctx, authCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return svcErr.NotFound("no active draft")
		}
		return err
	}
	return s.companyRepo.DeleteDraft(ctx, draft.UserID, draft.CompanyID)
}

// ApplyDraft consolidates the caller's draft into the canonical company
// record inside one transaction:
//
//   - Create path (no company yet): insert the company (name falling back
//     to the user's stored companyName), link the user as admin, delete
//     the draft.
//   - Edit path: patch the company, delete the draft.
//
// The draft row is deleted strictly after the company write; any failure
// rolls the whole transaction back and leaves the draft untouched, so the
// caller can safely retry.
func (s *Service) ApplyDraft(ctx context.Context, authCtx auth.AuthContext) (*db.Company, error) {
	user, err := s.userRepo.GetByID(ctx, authCtx.UserID)
	if err != nil {
		return nil, svcErr.NotFound("user not found")
	}

	var company db.Company
	var path string

	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		draft, err := s.companyRepo.GetDraftForUpdate(tx, user.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// No draft: hand back the existing company unchanged.
				if user.CompanyID == nil {
					return svcErr.NotFound("no draft to apply")
				}
				return tx.First(&company, *user.CompanyID).Error
			}
			return err
		}

		var fields db.CompanyFields
		if err := json.Unmarshal([]byte(draft.DraftData), &fields); err != nil {
			return svcErr.Invalid("draft data is corrupted")
		}

		if draft.DraftType == db.DraftTypeCreate || user.CompanyID == nil {
			path = "create"
			name := fields.Name
			if name == "" {
				name = user.CompanyName
			}
			if name == "" {
				return svcErr.Invalid("company name is required")
			}
			company = db.Company{
				Name:        name,
				Industry:    fields.Industry,
				Size:        fields.Size,
				Location:    fields.Location,
				Description: fields.Description,
				WebsiteURL:  fields.WebsiteURL,
				LogoURL:     fields.LogoURL,
				Sliders:     fields.Sliders,
			}
			if err := tx.Create(&company).Error; err != nil {
				return err
			}
			err := tx.Model(&db.User{}).
				Where("id = ?", user.ID).
				Updates(map[string]any{
					"company_id":   company.ID,
					"company_role": db.CompanyRoleAdmin,
				}).Error
			if err != nil {
				return err
			}
		} else {
			path = "edit"
			res := tx.Model(&db.Company{}).
				Where("id = ?", draft.CompanyID).
				Updates(map[string]any{
					"name":        fields.Name,
					"industry":    fields.Industry,
					"size":        fields.Size,
					"location":    fields.Location,
					"description": fields.Description,
					"website_url": fields.WebsiteURL,
					"logo_url":    fields.LogoURL,
					"sliders":     fields.Sliders,
					"updated_at":  time.Now().UTC(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return svcErr.NotFound("company not found")
			}
			if err := tx.First(&company, draft.CompanyID).Error; err != nil {
				return err
			}
		}

		// Draft goes away only once the company write has succeeded.
		return tx.Where("user_id = ? AND company_id = ?", draft.UserID, draft.CompanyID).
			Delete(&db.CompanyDraft{}).Error
	})
	if err != nil {
		return nil, err
	}

	if path != "" {
		metrics.DraftsAppliedCounter.WithLabelValues(path).Inc()
		s.appCtx.Logger.Info("draft applied", "user", user.ID, "company", company.ID, "path", path)
	}
	return &company, nil
}

// CreateCompany is the direct (non-draft) create path: inserts the company
// and links the caller as admin in one transaction.
func (s *Service) CreateCompany(ctx context.Context, authCtx auth.AuthContext, fields db.CompanyFields) (*db.Company, error) {
	if authCtx.Role != db.RoleEmployer {
		return nil, svcErr.Forbidden("employer accounts only")
	}
	if authCtx.CompanyID != 0 {
		return nil, svcErr.Conflict("account already belongs to a company")
	}
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}
	if fields.Name == "" {
		return nil, svcErr.Invalid("company name is required")
	}

	company := db.Company{
		Name:        fields.Name,
		Industry:    fields.Industry,
		Size:        fields.Size,
		Location:    fields.Location,
		Description: fields.Description,
		WebsiteURL:  fields.WebsiteURL,
		LogoURL:     fields.LogoURL,
		Sliders:     fields.Sliders,
	}
	err := s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&company).Error; err != nil {
			return err
		}
		return tx.Model(&db.User{}).
			Where("id = ?", authCtx.UserID).
			Updates(map[string]any{
				"company_id":   company.ID,
				"company_role": db.CompanyRoleAdmin,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// UpdateCompany patches the caller's company. Last write wins between
// concurrent team members; there is no version check.
func (s *Service) UpdateCompany(ctx context.Context, authCtx auth.AuthContext, fields db.CompanyFields) (*db.Company, error) {
	if authCtx.CompanyID == 0 {
		return nil, svcErr.NotFound("no company profile")
	}
	if !auth.Can(authCtx.CompanyRole, auth.PermManageCompany) {
		return nil, svcErr.Forbidden("your team role cannot edit the company profile")
	}
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}
	if err := s.companyRepo.Update(ctx, authCtx.CompanyID, fields); err != nil {
		return nil, err
	}
	return s.companyRepo.GetByID(ctx, authCtx.CompanyID)
}

// GetCompany returns the caller's company.
func (s *Service) GetCompany(ctx context.Context, authCtx auth.AuthContext) (*db.Company, error) {
	if authCtx.CompanyID == 0 {
		return nil, svcErr.NotFound("no company profile")
	}
	return s.companyRepo.GetByID(ctx, authCtx.CompanyID)
}
