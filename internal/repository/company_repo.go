package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/workmatch/workmatch/internal/db"
)

// CompanyRepository provides data access for companies and their profile
// drafts. The draft-apply transaction itself lives in the company service;
// the ForUpdate helpers here are what it composes.
type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(database *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: database}
}

func (r *CompanyRepository) Create(ctx context.Context, company *db.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *CompanyRepository) GetByID(ctx context.Context, companyID uint64) (*db.Company, error) {
	var company db.Company
	if err := r.db.WithContext(ctx).First(&company, companyID).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// Update patches the company row with the given fields.
func (r *CompanyRepository) Update(ctx context.Context, companyID uint64, fields db.CompanyFields) error {
	res := r.db.WithContext(ctx).
		Model(&db.Company{}).
		Where("id = ?", companyID).
		Updates(fieldsToMap(fields))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertDraft inserts or overwrites the single active draft for
// (user, company-or-none). Each save replaces draft_data wholesale.
func (r *CompanyRepository) UpsertDraft(ctx context.Context, draft db.CompanyDraft) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "company_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"draft_type", "draft_data", "step", "last_active",
			}),
		}).
		Create(&draft).Error
}

// GetDraft returns the user's active draft, if any. A user has at most one
// in-flight draft: company_id = 0 while creating, their company id while
// editing.
func (r *CompanyRepository) GetDraft(ctx context.Context, userID uint64) (*db.CompanyDraft, error) {
	var draft db.CompanyDraft
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_active DESC").
		First(&draft).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// GetDraftForUpdate re-reads the draft row with a row lock inside tx, so a
// concurrent save cannot slip between the apply's read and delete.
func (r *CompanyRepository) GetDraftForUpdate(tx *gorm.DB, userID uint64) (*db.CompanyDraft, error) {
	var draft db.CompanyDraft
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Order("last_active DESC").
		First(&draft).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// DeleteDraft removes the draft row for (user, company).
func (r *CompanyRepository) DeleteDraft(ctx context.Context, userID, companyID uint64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND company_id = ?", userID, companyID).
		Delete(&db.CompanyDraft{}).Error
}

// fieldsToMap builds the update set for a whole-document company patch.
// updated_at is bumped explicitly since map updates skip gorm hooks.
func fieldsToMap(f db.CompanyFields) map[string]any {
	return map[string]any{
		"name":        f.Name,
		"industry":    f.Industry,
		"size":        f.Size,
		"location":    f.Location,
		"description": f.Description,
		"website_url": f.WebsiteURL,
		"logo_url":    f.LogoURL,
		"sliders":     f.Sliders,
		"updated_at":  time.Now().UTC(),
	}
}
