package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/workmatch/workmatch/internal/db"
)

// JobRepository provides data access for job postings.
type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(database *gorm.DB) *JobRepository {
	return &JobRepository{db: database}
}

func (r *JobRepository) Create(ctx context.Context, posting *db.JobPosting) error {
	return r.db.WithContext(ctx).Create(posting).Error
}

func (r *JobRepository) GetByID(ctx context.Context, postingID uint64) (*db.JobPosting, error) {
	var posting db.JobPosting
	if err := r.db.WithContext(ctx).First(&posting, postingID).Error; err != nil {
		return nil, err
	}
	return &posting, nil
}

func (r *JobRepository) Update(ctx context.Context, posting *db.JobPosting) error {
	return r.db.WithContext(ctx).Save(posting).Error
}

func (r *JobRepository) ListByCompany(ctx context.Context, companyID uint64) ([]db.JobPosting, error) {
	var postings []db.JobPosting
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id DESC").
		Find(&postings).Error
	return postings, err
}

// GetByIDs fetches the given postings; missing ids are simply absent from
// the result, callers compare lengths.
func (r *JobRepository) GetByIDs(ctx context.Context, postingIDs []uint64) ([]db.JobPosting, error) {
	var postings []db.JobPosting
	err := r.db.WithContext(ctx).
		Where("id IN ?", postingIDs).
		Find(&postings).Error
	return postings, err
}
