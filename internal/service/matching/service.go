// Package matching implements the swipe recorder and match resolver: the
// double opt-in workflow that turns two interested swipes into a match.
package matching

import (
	"context"
	"strconv"
	"time"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/auth"
	"github.com/workmatch/workmatch/internal/db"
	svcErr "github.com/workmatch/workmatch/internal/errors"
	"github.com/workmatch/workmatch/internal/events"
	"github.com/workmatch/workmatch/internal/metrics"
	"github.com/workmatch/workmatch/internal/repository"
)

const feedPageSize = 10

// Service contains the business logic on top of repository and cache
// layers for swipes, matches and the discovery feeds.
type Service struct {
	appCtx      *app.AppContext
	swipeRepo   *repository.SwipeRepository
	matchRepo   *repository.MatchRepository
	userRepo    *repository.UserRepository
	companyRepo *repository.CompanyRepository
}

// NewService creates a matching service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		swipeRepo:   repository.NewSwipeRepository(appCtx.DB),
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		userRepo:    repository.NewUserRepository(appCtx.DB),
		companyRepo: repository.NewCompanyRepository(appCtx.DB),
	}
}

// SwipeResult is the outcome of recording a swipe. Match is non-nil when
// the swipe completed (or had already completed) a mutual match.
type SwipeResult struct {
	Swipe db.Swipe
	Match *db.Match
}

// RecordSwipe upserts the caller's decision on a target and immediately
// resolves the pair.
//
// Behavior:
//   - Jobseekers swipe on companies; employers (team members with the
//     swipe permission) swipe on jobseekers.
//   - Re-swiping overwrites the prior decision; no history is kept.
//   - Flipping to not-interested after a match exists does NOT retract
//     the match; only the swipe row changes.
func (s *Service) RecordSwipe(ctx context.Context, authCtx auth.AuthContext, targetID uint64, interested bool) (*SwipeResult, error) {
	s.appCtx.Logger.Debug("RecordSwipe called",
		"actor", authCtx.UserID, "role", authCtx.Role, "target", targetID, "interested", interested)

	var swipe db.Swipe

	switch authCtx.Role {
	case db.RoleJobseeker:
		if _, err := s.companyRepo.GetByID(ctx, targetID); err != nil {
			return nil, svcErr.NotFound("company not found")
		}
		swipe = db.Swipe{
			JobseekerID: authCtx.UserID,
			CompanyID:   targetID,
			Direction:   db.DirectionJobseeker,
			ActorID:     authCtx.UserID,
			Interested:  interested,
		}

	case db.RoleEmployer:
		if authCtx.CompanyID == 0 {
			return nil, svcErr.Forbidden("complete your company profile before swiping")
		}
		if !auth.Can(authCtx.CompanyRole, auth.PermSwipe) {
			return nil, svcErr.Forbidden("your team role cannot act in the match feed")
		}
		target, err := s.userRepo.GetByID(ctx, targetID)
		if err != nil {
			return nil, svcErr.NotFound("jobseeker not found")
		}
		if target.Role != db.RoleJobseeker {
			return nil, svcErr.Invalid("target is not a jobseeker account")
		}
		swipe = db.Swipe{
			JobseekerID: targetID,
			CompanyID:   authCtx.CompanyID,
			Direction:   db.DirectionEmployer,
			ActorID:     authCtx.UserID,
			Interested:  interested,
		}

	default:
		return nil, svcErr.Invalid("unknown account role")
	}

	if err := s.swipeRepo.Upsert(ctx, swipe); err != nil {
		return nil, err
	}
	metrics.SwipesCounter.WithLabelValues(swipe.Direction, strconv.FormatBool(interested)).Inc()

	// Keep the "liked you" counter warm. Advisory only; DB is the
	// fallback source of truth.
	if swipe.Direction == db.DirectionEmployer {
		key := s.appCtx.RedisCache.KeyForInterestCount(swipe.JobseekerID)
		if interested {
			_, _ = s.appCtx.RedisCache.Incr(ctx, key)
		} else {
			_, _ = s.appCtx.RedisCache.Decr(ctx, key)
		}
		_ = s.appCtx.RedisCache.Expire(ctx, key, time.Hour)
	}

	match, err := s.Resolve(ctx, swipe.JobseekerID, swipe.CompanyID)
	if err != nil {
		// The swipe itself is committed; resolution errors are real
		// failures, not race losses (those are absorbed below).
		return nil, err
	}

	return &SwipeResult{Swipe: swipe, Match: match}, nil
}

// Resolve creates the match for a pair iff both directions are interested.
//
// Behavior:
//   - Returns nil when either direction is missing or not interested.
//   - Insert races are settled by the unique (jobseeker_id, company_id)
//     index: the loser reads the winner's row. Exactly one match ever
//     exists per pair.
//   - Returns the (possibly pre-existing) match otherwise.
func (s *Service) Resolve(ctx context.Context, jobseekerID, companyID uint64) (*db.Match, error) {
	jsSide, empSide, err := s.swipeRepo.GetPair(ctx, jobseekerID, companyID)
	if err != nil {
		return nil, err
	}
	if jsSide == nil || empSide == nil || !jsSide.Interested || !empSide.Interested {
		return nil, nil
	}

	match, created, err := s.matchRepo.Create(ctx, jobseekerID, companyID)
	if err != nil {
		return nil, err
	}
	if created {
		metrics.MatchesCreatedCounter.Inc()
		s.appCtx.Logger.Info("match created",
			"match", match.ID, "jobseeker", jobseekerID, "company", companyID)
		s.appCtx.Bus.Publish(events.MatchCreatedTopic, events.MatchCreated{
			MatchID:     match.ID,
			JobseekerID: jobseekerID,
			CompanyID:   companyID,
		})
	}
	return match, nil
}

// ListMatches returns the caller's matches, newest first.
func (s *Service) ListMatches(ctx context.Context, authCtx auth.AuthContext, paginationToken *string) ([]db.Match, *string, error) {
	switch authCtx.Role {
	case db.RoleJobseeker:
		return s.matchRepo.ListForJobseeker(ctx, authCtx.UserID, paginationToken, feedPageSize)
	case db.RoleEmployer:
		if authCtx.CompanyID == 0 {
			return nil, nil, svcErr.Forbidden("no company profile")
		}
		return s.matchRepo.ListForCompany(ctx, authCtx.CompanyID, paginationToken, feedPageSize)
	}
	return nil, nil, svcErr.Invalid("unknown account role")
}

// GetMatch returns one match with its attached postings. The caller must
// be a party to the match.
func (s *Service) GetMatch(ctx context.Context, authCtx auth.AuthContext, matchID uint64) (*db.Match, []db.MatchJob, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, nil, svcErr.NotFound("match not found")
	}
	if !isParty(authCtx, match) {
		return nil, nil, svcErr.Forbidden("not a party to this match")
	}
	jobs, err := s.matchRepo.GetJobs(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	return match, jobs, nil
}

// InterestedEmployer is one entry of the jobseeker's "liked you" list.
type InterestedEmployer struct {
	CompanyID     uint64 `json:"companyId"`
	UnixTimestamp int64  `json:"unixTimestamp"`
}

// ListInterestedEmployers returns companies that liked the jobseeker,
// excluding ones the jobseeker already passed on.
func (s *Service) ListInterestedEmployers(ctx context.Context, authCtx auth.AuthContext, paginationToken *string) ([]InterestedEmployer, *string, error) {
	if authCtx.Role != db.RoleJobseeker {
		return nil, nil, svcErr.Forbidden("jobseeker accounts only")
	}
	swipes, nextToken, err := s.swipeRepo.GetInterestedEmployers(ctx, authCtx.UserID, paginationToken, feedPageSize)
	if err != nil {
		return nil, nil, err
	}
	out := make([]InterestedEmployer, 0, len(swipes))
	for _, sw := range swipes {
		out = append(out, InterestedEmployer{
			CompanyID:     sw.CompanyID,
			UnixTimestamp: sw.UpdatedAt.UnixMilli(),
		})
	}
	return out, nextToken, nil
}

// CountInterestedEmployers returns how many companies liked the jobseeker.
// Cache-first strategy:
//  1. Attempts to read the Redis counter.
//  2. On miss or parse error, falls back to the DB.
//  3. On DB fetch, repopulates Redis with a 1h TTL.
func (s *Service) CountInterestedEmployers(ctx context.Context, authCtx auth.AuthContext) (int64, error) {
	if authCtx.Role != db.RoleJobseeker {
		return 0, svcErr.Forbidden("jobseeker accounts only")
	}

	key := s.appCtx.RedisCache.KeyForInterestCount(authCtx.UserID)
	if cached, _ := s.appCtx.RedisCache.Get(ctx, key); cached != "" {
		if n, err := strconv.ParseInt(cached, 10, 64); err == nil && n >= 0 {
			_ = s.appCtx.RedisCache.Expire(ctx, key, time.Hour)
			return n, nil
		}
		// unparseable or negative counter, drop it and recount from the DB
		_ = s.appCtx.RedisCache.Del(ctx, key)
	}

	count, err := s.swipeRepo.CountInterestedEmployers(ctx, authCtx.UserID)
	if err != nil {
		return 0, err
	}
	_ = s.appCtx.RedisCache.Set(ctx, key, strconv.FormatInt(count, 10), time.Hour)
	return count, nil
}

// JobseekerFeed returns companies the jobseeker has not decided on yet.
func (s *Service) JobseekerFeed(ctx context.Context, authCtx auth.AuthContext, paginationToken *string) ([]db.Company, *string, error) {
	if authCtx.Role != db.RoleJobseeker {
		return nil, nil, svcErr.Forbidden("jobseeker accounts only")
	}
	return s.swipeRepo.ListUndecidedCompanies(ctx, authCtx.UserID, paginationToken, feedPageSize)
}

// EmployerCandidates returns jobseekers the company has not decided on yet.
func (s *Service) EmployerCandidates(ctx context.Context, authCtx auth.AuthContext, paginationToken *string) ([]db.User, *string, error) {
	if authCtx.Role != db.RoleEmployer || authCtx.CompanyID == 0 {
		return nil, nil, svcErr.Forbidden("employer accounts with a company only")
	}
	return s.swipeRepo.ListUndecidedJobseekers(ctx, authCtx.CompanyID, paginationToken, feedPageSize)
}

func isParty(authCtx auth.AuthContext, match *db.Match) bool {
	switch authCtx.Role {
	case db.RoleJobseeker:
		return match.JobseekerID == authCtx.UserID
	case db.RoleEmployer:
		return authCtx.CompanyID != 0 && match.CompanyID == authCtx.CompanyID
	}
	return false
}
