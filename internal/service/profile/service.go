// Package profile manages jobseeker profiles and their slider preference
// vectors.
package profile

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/auth"
	"github.com/workmatch/workmatch/internal/db"
	svcErr "github.com/workmatch/workmatch/internal/errors"
	"github.com/workmatch/workmatch/internal/repository"
)

var validate = validator.New()

type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

// Input is the jobseeker profile document. Each save is a whole-document
// overwrite.
type Input struct {
	Headline       string         `json:"headline" validate:"max=255"`
	Education      string         `json:"education" validate:"max=255"`
	Location       string         `json:"location" validate:"max=128"`
	Industry       string         `json:"industry" validate:"max=128"`
	OpenToRelocate bool           `json:"openToRelocate"`
	Sliders        map[string]int `json:"sliders"`
}

// Save overwrites the caller's profile.
func (s *Service) Save(ctx context.Context, authCtx auth.AuthContext, in Input) (*db.JobseekerProfile, error) {
	if authCtx.Role != db.RoleJobseeker {
		return nil, svcErr.Forbidden("jobseeker accounts only")
	}
	if err := validate.Struct(in); err != nil {
		return nil, svcErr.Invalid(err.Error())
	}
	// Slider positions live on a 0–100 bipolar scale.
	for id, v := range in.Sliders {
		if v < 0 || v > 100 {
			return nil, svcErr.Invalid(fmt.Sprintf("slider %q value %d is out of range [0,100]", id, v))
		}
	}

	prof := db.JobseekerProfile{
		UserID:         authCtx.UserID,
		Headline:       in.Headline,
		Education:      in.Education,
		Location:       in.Location,
		Industry:       in.Industry,
		OpenToRelocate: in.OpenToRelocate,
		Sliders:        in.Sliders,
	}
	if err := s.userRepo.UpsertProfile(ctx, prof); err != nil {
		return nil, err
	}
	return &prof, nil
}

// Get returns the caller's profile.
func (s *Service) Get(ctx context.Context, authCtx auth.AuthContext) (*db.JobseekerProfile, error) {
	if authCtx.Role != db.RoleJobseeker {
		return nil, svcErr.Forbidden("jobseeker accounts only")
	}
	prof, err := s.userRepo.GetProfile(ctx, authCtx.UserID)
	if err != nil {
		return nil, svcErr.NotFound("profile not found")
	}
	return prof, nil
}
