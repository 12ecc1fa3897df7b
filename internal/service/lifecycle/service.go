// Package lifecycle implements the post-match workflow: sharing job
// postings, recording the jobseeker's per-job interest, and scheduling
// interviews. The lifecycle fields are independent flags rather than a
// strict state machine; several can be set at once.
package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/auth"
	"github.com/workmatch/workmatch/internal/db"
	svcErr "github.com/workmatch/workmatch/internal/errors"
	"github.com/workmatch/workmatch/internal/events"
	"github.com/workmatch/workmatch/internal/repository"
)

type Service struct {
	appCtx    *app.AppContext
	matchRepo *repository.MatchRepository
	jobRepo   *repository.JobRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		matchRepo: repository.NewMatchRepository(appCtx.DB),
		jobRepo:   repository.NewJobRepository(appCtx.DB),
	}
}

// ShareJobs attaches postings to a match with append-union semantics:
// re-sharing already shared ids is a no-op, new ids are added, nothing is
// ever replaced. Emits a job_shared notification event; delivery is
// fire-and-forget relative to the state mutation.
func (s *Service) ShareJobs(ctx context.Context, authCtx auth.AuthContext, matchID uint64, jobPostingIDs []uint64) (*db.Match, []db.MatchJob, error) {
	match, err := s.employerSideMatch(ctx, authCtx, matchID, auth.PermShareJobs)
	if err != nil {
		return nil, nil, err
	}

	ids := lo.Uniq(jobPostingIDs)
	if len(ids) == 0 {
		return nil, nil, svcErr.Invalid("jobPostingIds must not be empty")
	}

	postings, err := s.jobRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	if len(postings) != len(ids) {
		return nil, nil, svcErr.NotFound("one or more job postings not found")
	}
	for _, p := range postings {
		if p.CompanyID != match.CompanyID {
			return nil, nil, svcErr.Forbidden("job posting belongs to another company")
		}
	}

	if err := s.matchRepo.AttachJobs(ctx, matchID, ids); err != nil {
		return nil, nil, err
	}
	if err := s.matchRepo.MarkJobsShared(ctx, matchID, time.Now().UTC()); err != nil {
		return nil, nil, err
	}

	s.appCtx.Bus.Publish(events.JobsSharedTopic, events.JobsShared{
		MatchID:       matchID,
		JobseekerID:   match.JobseekerID,
		JobPostingIDs: ids,
	})

	updated, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	jobs, err := s.matchRepo.GetJobs(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	return updated, jobs, nil
}

// ExpressJobInterest records the jobseeker's boolean response to a shared
// posting. The returned schedulingEnabled flag is advisory: it prompts
// the client to offer interview scheduling, nothing server-side is gated
// on it.
func (s *Service) ExpressJobInterest(ctx context.Context, authCtx auth.AuthContext, jobPostingID uint64, interested bool) (bool, error) {
	if authCtx.Role != db.RoleJobseeker {
		return false, svcErr.Forbidden("jobseeker accounts only")
	}

	posting, err := s.jobRepo.GetByID(ctx, jobPostingID)
	if err != nil {
		return false, svcErr.NotFound("job posting not found")
	}

	match, err := s.matchRepo.GetByPair(ctx, authCtx.UserID, posting.CompanyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, svcErr.NotFound("no match with this company")
		}
		return false, err
	}

	err = s.matchRepo.SetJobInterest(ctx, match.ID, jobPostingID, interested, time.Now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, svcErr.NotFound("job posting was not shared on this match")
		}
		return false, err
	}

	s.appCtx.Bus.Publish(events.JobInterestTopic, events.JobInterest{
		MatchID:      match.ID,
		CompanyID:    match.CompanyID,
		JobPostingID: jobPostingID,
		Interested:   interested,
	})

	return interested, nil
}

// ScheduleInterview overwrites the match's scheduled interview. Past dates
// are not rejected here; the presentation layer restricts selection.
func (s *Service) ScheduleInterview(ctx context.Context, authCtx auth.AuthContext, matchID uint64, scheduledAt time.Time, interviewType string) (*db.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, svcErr.NotFound("match not found")
	}
	if err := s.authorizeParty(authCtx, match, auth.PermScheduleInterview); err != nil {
		return nil, err
	}

	if err := s.matchRepo.ScheduleInterview(ctx, matchID, scheduledAt.UTC(), interviewType); err != nil {
		return nil, err
	}

	s.appCtx.Bus.Publish(events.InterviewScheduledTopic, events.InterviewScheduled{
		MatchID:       matchID,
		JobseekerID:   match.JobseekerID,
		CompanyID:     match.CompanyID,
		ScheduledAt:   scheduledAt.UnixMilli(),
		InterviewType: interviewType,
	})

	return s.matchRepo.GetByID(ctx, matchID)
}

// employerSideMatch loads a match and checks the caller is an authorized
// team member of its employer side.
func (s *Service) employerSideMatch(ctx context.Context, authCtx auth.AuthContext, matchID uint64, perm auth.Permission) (*db.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, svcErr.NotFound("match not found")
	}
	if authCtx.Role != db.RoleEmployer || authCtx.CompanyID != match.CompanyID {
		return nil, svcErr.Forbidden("not a member of this match's company")
	}
	if !auth.Can(authCtx.CompanyRole, perm) {
		return nil, svcErr.Forbidden("your team role cannot perform this action")
	}
	return match, nil
}

// authorizeParty allows either side of the match; employer-side callers
// additionally need the permission.
func (s *Service) authorizeParty(authCtx auth.AuthContext, match *db.Match, perm auth.Permission) error {
	switch authCtx.Role {
	case db.RoleJobseeker:
		if match.JobseekerID == authCtx.UserID {
			return nil
		}
	case db.RoleEmployer:
		if authCtx.CompanyID == match.CompanyID && auth.Can(authCtx.CompanyRole, perm) {
			return nil
		}
	}
	return svcErr.Forbidden("not a party to this match")
}
