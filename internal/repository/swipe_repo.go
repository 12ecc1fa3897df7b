package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/workmatch/workmatch/internal/db"
	"github.com/workmatch/workmatch/internal/utils/pagination"
)

// SwipeRepository provides data access for swipe records: one-directional
// interest decisions between jobseekers and companies.
type SwipeRepository struct {
	db *gorm.DB
}

// NewSwipeRepository creates a new repository bound to the given DB connection.
func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

// Upsert inserts or overwrites the swipe for (jobseeker, company, direction).
//
// Behavior:
//   - If the row exists → interested and actor_id are updated (last write wins).
//   - If it doesn't → a new row is inserted.
//   - Composite PK ensures the overwrite guarantee; no history is kept.
func (r *SwipeRepository) Upsert(ctx context.Context, swipe db.Swipe) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "jobseeker_id"}, {Name: "company_id"}, {Name: "direction"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"interested", "actor_id", "updated_at"}),
		}).
		Create(&swipe).Error
}

// GetPair returns both direction rows for a (jobseeker, company) pair.
// Either pointer is nil when that side has not swiped yet.
func (r *SwipeRepository) GetPair(ctx context.Context, jobseekerID, companyID uint64) (jobseekerSide, employerSide *db.Swipe, err error) {
	var swipes []db.Swipe
	err = r.db.WithContext(ctx).
		Where("jobseeker_id = ? AND company_id = ?", jobseekerID, companyID).
		Find(&swipes).Error
	if err != nil {
		return nil, nil, err
	}
	for i := range swipes {
		switch swipes[i].Direction {
		case db.DirectionJobseeker:
			jobseekerSide = &swipes[i]
		case db.DirectionEmployer:
			employerSide = &swipes[i]
		}
	}
	return jobseekerSide, employerSide, nil
}

// GetInterestedEmployers returns companies that swiped interested on the
// jobseeker and that the jobseeker has not passed on.
//
// Behavior:
//   - Ordered by updated_at DESC, company_id DESC.
//   - Supports cursor-based pagination via paginationToken.
func (r *SwipeRepository) GetInterestedEmployers(
	ctx context.Context,
	jobseekerID uint64,
	paginationToken *string,
	limit int,
) ([]db.Swipe, *string, error) {
	var swipes []db.Swipe

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.jobseeker_id = ? AND s.direction = ? AND s.interested = ?",
			jobseekerID, db.DirectionEmployer, true).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s2
				WHERE s2.jobseeker_id = s.jobseeker_id
				  AND s2.company_id = s.company_id
				  AND s2.direction = ?
				  AND s2.interested = ?
			)`, db.DirectionJobseeker, false).
		Order("s.updated_at DESC, s.company_id DESC").
		Limit(limit + 1)

	if cursor.LastID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(s.updated_at < ? OR (s.updated_at = ? AND s.company_id < ?))",
			ts, ts, cursor.LastID,
		)
	}

	if err := query.Find(&swipes).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(swipes) > limit {
		last := swipes[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			LastID:      last.CompanyID,
			CreatedUnix: last.UpdatedAt.UnixMilli(),
		})
		nextToken = &token
		swipes = swipes[:limit]
	}

	return swipes, nextToken, nil
}

// CountInterestedEmployers counts companies interested in the jobseeker,
// excluding ones the jobseeker passed on. Used with the Redis counter
// (DB is the fallback).
func (r *SwipeRepository) CountInterestedEmployers(ctx context.Context, jobseekerID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.jobseeker_id = ? AND s.direction = ? AND s.interested = ?",
			jobseekerID, db.DirectionEmployer, true).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s2
				WHERE s2.jobseeker_id = s.jobseeker_id
				  AND s2.company_id = s.company_id
				  AND s2.direction = ?
				  AND s2.interested = ?
			)`, db.DirectionJobseeker, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListUndecidedCompanies returns companies the jobseeker has not swiped on
// yet, newest first, with an id cursor.
func (r *SwipeRepository) ListUndecidedCompanies(
	ctx context.Context,
	jobseekerID uint64,
	paginationToken *string,
	limit int,
) ([]db.Company, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	var companies []db.Company
	query := r.db.WithContext(ctx).
		Table("companies c").
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s
				WHERE s.jobseeker_id = ?
				  AND s.company_id = c.id
				  AND s.direction = ?
			)`, jobseekerID, db.DirectionJobseeker).
		Order("c.id DESC").
		Limit(limit + 1)

	if cursor.LastID > 0 {
		query = query.Where("c.id < ?", cursor.LastID)
	}

	if err := query.Find(&companies).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(companies) > limit {
		token, _ := pagination.Encode(pagination.Cursor{LastID: companies[limit-1].ID})
		nextToken = &token
		companies = companies[:limit]
	}
	return companies, nextToken, nil
}

// ListUndecidedJobseekers returns jobseekers the company has not swiped on
// yet, newest first, with an id cursor.
func (r *SwipeRepository) ListUndecidedJobseekers(
	ctx context.Context,
	companyID uint64,
	paginationToken *string,
	limit int,
) ([]db.User, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	var users []db.User
	query := r.db.WithContext(ctx).
		Table("users u").
		Where("u.role = ? AND u.active = ?", db.RoleJobseeker, true).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s
				WHERE s.company_id = ?
				  AND s.jobseeker_id = u.id
				  AND s.direction = ?
			)`, companyID, db.DirectionEmployer).
		Order("u.id DESC").
		Limit(limit + 1)

	if cursor.LastID > 0 {
		query = query.Where("u.id < ?", cursor.LastID)
	}

	if err := query.Find(&users).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(users) > limit {
		token, _ := pagination.Encode(pagination.Cursor{LastID: users[limit-1].ID})
		nextToken = &token
		users = users[:limit]
	}
	return users, nextToken, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
