// Package jobs manages company-owned job postings. Posting status is
// independent of any match lifecycle.
package jobs

import (
	"context"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/auth"
	"github.com/workmatch/workmatch/internal/db"
	svcErr "github.com/workmatch/workmatch/internal/errors"
	"github.com/workmatch/workmatch/internal/repository"
)

type Service struct {
	appCtx  *app.AppContext
	jobRepo *repository.JobRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:  appCtx,
		jobRepo: repository.NewJobRepository(appCtx.DB),
	}
}

// PostingInput is the mutable posting document.
type PostingInput struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Status           string   `json:"status"`
	Requirements     []string `json:"requirements"`
	Responsibilities []string `json:"responsibilities"`
}

// Create adds a posting to the caller's company.
func (s *Service) Create(ctx context.Context, authCtx auth.AuthContext, in PostingInput) (*db.JobPosting, error) {
	if err := s.requirePostingManager(authCtx); err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, svcErr.Invalid("title is required")
	}
	status := db.JobStatusActive
	if in.Status != "" {
		parsed, err := db.ParseJobStatus(in.Status)
		if err != nil {
			return nil, svcErr.Invalid(err.Error())
		}
		status = parsed
	}

	posting := &db.JobPosting{
		CompanyID:        authCtx.CompanyID,
		CreatedBy:        authCtx.UserID,
		Title:            in.Title,
		Description:      in.Description,
		Status:           status,
		Requirements:     in.Requirements,
		Responsibilities: in.Responsibilities,
	}
	if err := s.jobRepo.Create(ctx, posting); err != nil {
		return nil, err
	}
	return posting, nil
}

// Update overwrites a posting's mutable fields. Last write wins between
// concurrent team members.
func (s *Service) Update(ctx context.Context, authCtx auth.AuthContext, postingID uint64, in PostingInput) (*db.JobPosting, error) {
	if err := s.requirePostingManager(authCtx); err != nil {
		return nil, err
	}
	posting, err := s.jobRepo.GetByID(ctx, postingID)
	if err != nil {
		return nil, svcErr.NotFound("job posting not found")
	}
	if posting.CompanyID != authCtx.CompanyID {
		return nil, svcErr.Forbidden("job posting belongs to another company")
	}

	if in.Title != "" {
		posting.Title = in.Title
	}
	if in.Description != "" {
		posting.Description = in.Description
	}
	if in.Status != "" {
		status, err := db.ParseJobStatus(in.Status)
		if err != nil {
			return nil, svcErr.Invalid(err.Error())
		}
		posting.Status = status
	}
	if in.Requirements != nil {
		posting.Requirements = in.Requirements
	}
	if in.Responsibilities != nil {
		posting.Responsibilities = in.Responsibilities
	}

	if err := s.jobRepo.Update(ctx, posting); err != nil {
		return nil, err
	}
	return posting, nil
}

// List returns the caller's company postings.
func (s *Service) List(ctx context.Context, authCtx auth.AuthContext) ([]db.JobPosting, error) {
	if authCtx.Role != db.RoleEmployer || authCtx.CompanyID == 0 {
		return nil, svcErr.Forbidden("employer accounts with a company only")
	}
	return s.jobRepo.ListByCompany(ctx, authCtx.CompanyID)
}

// Get returns one posting. Jobseekers may read postings shared with them;
// reads are not restricted to the owning company.
func (s *Service) Get(ctx context.Context, postingID uint64) (*db.JobPosting, error) {
	posting, err := s.jobRepo.GetByID(ctx, postingID)
	if err != nil {
		return nil, svcErr.NotFound("job posting not found")
	}
	return posting, nil
}

func (s *Service) requirePostingManager(authCtx auth.AuthContext) error {
	if authCtx.Role != db.RoleEmployer || authCtx.CompanyID == 0 {
		return svcErr.Forbidden("employer accounts with a company only")
	}
	if !auth.Can(authCtx.CompanyRole, auth.PermManageJobs) {
		return svcErr.Forbidden("your team role cannot manage job postings")
	}
	return nil
}
