package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/workmatch/workmatch/internal/db"
	"github.com/workmatch/workmatch/internal/utils/pagination"
)

// MatchRepository provides data access for matches and their attached jobs.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// Create inserts the match for a pair. The unique index on
// (jobseeker_id, company_id) is the concurrency guard: if another
// resolution won the race, the duplicate-key error is absorbed and the
// existing row is returned with created=false.
func (r *MatchRepository) Create(ctx context.Context, jobseekerID, companyID uint64) (*db.Match, bool, error) {
	match := db.Match{
		JobseekerID: jobseekerID,
		CompanyID:   companyID,
		Status:      "active",
	}
	err := r.db.WithContext(ctx).Create(&match).Error
	if err == nil {
		return &match, true, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		existing, getErr := r.GetByPair(ctx, jobseekerID, companyID)
		if getErr != nil {
			return nil, false, getErr
		}
		return existing, false, nil
	}
	return nil, false, err
}

// GetByID fetches a match by primary key.
func (r *MatchRepository) GetByID(ctx context.Context, matchID uint64) (*db.Match, error) {
	var match db.Match
	if err := r.db.WithContext(ctx).First(&match, matchID).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

// GetByPair fetches the match for a (jobseeker, company) pair, if any.
func (r *MatchRepository) GetByPair(ctx context.Context, jobseekerID, companyID uint64) (*db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).
		Where("jobseeker_id = ? AND company_id = ?", jobseekerID, companyID).
		First(&match).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// ListForJobseeker returns the jobseeker's matches, newest first, with an
// id cursor.
func (r *MatchRepository) ListForJobseeker(
	ctx context.Context,
	jobseekerID uint64,
	paginationToken *string,
	limit int,
) ([]db.Match, *string, error) {
	return r.list(ctx, "jobseeker_id = ?", jobseekerID, paginationToken, limit)
}

// ListForCompany returns the company's matches, newest first, with an id
// cursor.
func (r *MatchRepository) ListForCompany(
	ctx context.Context,
	companyID uint64,
	paginationToken *string,
	limit int,
) ([]db.Match, *string, error) {
	return r.list(ctx, "company_id = ?", companyID, paginationToken, limit)
}

func (r *MatchRepository) list(
	ctx context.Context,
	cond string,
	arg uint64,
	paginationToken *string,
	limit int,
) ([]db.Match, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	var matches []db.Match
	query := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("id DESC").
		Limit(limit + 1)

	if cursor.LastID > 0 {
		query = query.Where("id < ?", cursor.LastID)
	}

	if err := query.Find(&matches).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(matches) > limit {
		token, _ := pagination.Encode(pagination.Cursor{LastID: matches[limit-1].ID})
		nextToken = &token
		matches = matches[:limit]
	}
	return matches, nextToken, nil
}

// AttachJobs links job postings to a match with append semantics:
// re-sharing an already attached posting is a no-op, never a duplicate.
func (r *MatchRepository) AttachJobs(ctx context.Context, matchID uint64, jobPostingIDs []uint64) error {
	if len(jobPostingIDs) == 0 {
		return nil
	}
	rows := make([]db.MatchJob, 0, len(jobPostingIDs))
	for _, id := range jobPostingIDs {
		rows = append(rows, db.MatchJob{MatchID: matchID, JobPostingID: id})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// MarkJobsShared stamps the first time postings were shared on the match.
func (r *MatchRepository) MarkJobsShared(ctx context.Context, matchID uint64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("id = ? AND jobs_shared_at IS NULL", matchID).
		Update("jobs_shared_at", at).Error
}

// GetJobs returns the postings attached to a match.
func (r *MatchRepository) GetJobs(ctx context.Context, matchID uint64) ([]db.MatchJob, error) {
	var jobs []db.MatchJob
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("job_posting_id").
		Find(&jobs).Error
	return jobs, err
}

// GetJob returns one attached posting row.
func (r *MatchRepository) GetJob(ctx context.Context, matchID, jobPostingID uint64) (*db.MatchJob, error) {
	var job db.MatchJob
	err := r.db.WithContext(ctx).
		Where("match_id = ? AND job_posting_id = ?", matchID, jobPostingID).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// SetJobInterest records the jobseeker's boolean response for an attached
// posting. Last write wins.
func (r *MatchRepository) SetJobInterest(ctx context.Context, matchID, jobPostingID uint64, interested bool, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&db.MatchJob{}).
		Where("match_id = ? AND job_posting_id = ?", matchID, jobPostingID).
		Updates(map[string]any{
			"interested":   interested,
			"responded_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ScheduleInterview overwrites the match's scheduled interview time and
// type. Last write wins, no history. Callers verify the match exists first;
// no RowsAffected check here because MySQL reports 0 affected rows when an
// UPDATE writes values identical to the current ones, which would turn an
// idempotent reschedule retry into a not-found.
func (r *MatchRepository) ScheduleInterview(ctx context.Context, matchID uint64, at time.Time, interviewType string) error {
	return r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("id = ?", matchID).
		Updates(map[string]any{
			"interview_scheduled_at": at,
			"interview_type":         interviewType,
		}).Error
}
