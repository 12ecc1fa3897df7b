package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/workmatch/workmatch/internal/db"
)

// UserRepository provides data access for accounts and jobseeker profiles.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, userID uint64) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ClearCompany removes the user's company affiliation (team removal).
func (r *UserRepository) ClearCompany(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"company_id":   nil,
			"company_role": "",
		}).Error
}

func (r *UserRepository) UpdateCompanyRole(ctx context.Context, userID uint64, companyRole string) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", userID).
		Update("company_role", companyRole).Error
}

// ListTeam returns all members of a company.
func (r *UserRepository) ListTeam(ctx context.Context, companyID uint64) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) GetProfile(ctx context.Context, userID uint64) (*db.JobseekerProfile, error) {
	var profile db.JobseekerProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpsertProfile overwrites the jobseeker profile document in place.
func (r *UserRepository) UpsertProfile(ctx context.Context, profile db.JobseekerProfile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"headline", "education", "location", "industry",
				"open_to_relocate", "sliders", "updated_at",
			}),
		}).
		Create(&profile).Error
}
