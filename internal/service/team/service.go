// Package team manages company-scoped membership: email invitations,
// team roles and member removal.
package team

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/auth"
	"github.com/workmatch/workmatch/internal/db"
	svcErr "github.com/workmatch/workmatch/internal/errors"
	"github.com/workmatch/workmatch/internal/events"
	"github.com/workmatch/workmatch/internal/metrics"
	"github.com/workmatch/workmatch/internal/repository"
)

type Service struct {
	appCtx     *app.AppContext
	inviteRepo *repository.InviteRepository
	userRepo   *repository.UserRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		inviteRepo: repository.NewInviteRepository(appCtx.DB),
		userRepo:   repository.NewUserRepository(appCtx.DB),
	}
}

// Invite creates a pending invitation for an email address. Delivery of
// the email itself is an external concern; the invite event carries what
// the mailer needs.
func (s *Service) Invite(ctx context.Context, authCtx auth.AuthContext, email, role string) (*db.CompanyInvite, error) {
	if err := s.requireManager(authCtx); err != nil {
		return nil, err
	}
	if !db.ValidCompanyRole(role) {
		return nil, svcErr.Invalid("unknown team role")
	}

	invite := &db.CompanyInvite{
		CompanyID: authCtx.CompanyID,
		Email:     email,
		Role:      role,
		Token:     uuid.NewString(),
		Status:    db.InviteStatusPending,
		ExpiresAt: time.Now().UTC().Add(s.appCtx.Cfg.Invite.TTL),
		CreatedBy: authCtx.UserID,
	}
	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		return nil, err
	}

	metrics.InvitesCounter.WithLabelValues(db.InviteStatusPending).Inc()
	s.appCtx.Bus.Publish(events.InviteCreatedTopic, events.InviteCreated{
		InviteID:  invite.ID,
		CompanyID: invite.CompanyID,
		Email:     invite.Email,
	})
	return invite, nil
}

// ResendInvite regenerates the expiry on the existing row; it never
// creates a second invite. Accepted or cancelled invites stay terminal.
func (s *Service) ResendInvite(ctx context.Context, authCtx auth.AuthContext, inviteID uint64) (*db.CompanyInvite, error) {
	if err := s.requireManager(authCtx); err != nil {
		return nil, err
	}
	invite, err := s.inviteRepo.GetByID(ctx, inviteID)
	if err != nil {
		return nil, svcErr.NotFound("invite not found")
	}
	if invite.CompanyID != authCtx.CompanyID {
		return nil, svcErr.Forbidden("invite belongs to another company")
	}
	if invite.Status == db.InviteStatusAccepted || invite.Status == db.InviteStatusCancelled {
		return nil, svcErr.Conflict("invite is already settled")
	}

	expiresAt := time.Now().UTC().Add(s.appCtx.Cfg.Invite.TTL)
	if err := s.inviteRepo.ExtendExpiry(ctx, inviteID, expiresAt); err != nil {
		return nil, err
	}
	return s.inviteRepo.GetByID(ctx, inviteID)
}

// CancelInvite marks a pending invite cancelled.
func (s *Service) CancelInvite(ctx context.Context, authCtx auth.AuthContext, inviteID uint64) error {
	if err := s.requireManager(authCtx); err != nil {
		return err
	}
	invite, err := s.inviteRepo.GetByID(ctx, inviteID)
	if err != nil {
		return svcErr.NotFound("invite not found")
	}
	if invite.CompanyID != authCtx.CompanyID {
		return svcErr.Forbidden("invite belongs to another company")
	}
	if invite.Status != db.InviteStatusPending {
		return svcErr.Conflict("only pending invites can be cancelled")
	}
	metrics.InvitesCounter.WithLabelValues(db.InviteStatusCancelled).Inc()
	return s.inviteRepo.UpdateStatus(ctx, inviteID, db.InviteStatusCancelled)
}

// AcceptInvite links the caller to the inviting company with the invited
// role. The invite must be pending and unexpired; both the status column
// and the expiry timestamp are checked, so a stale invite is rejected
// even before the sweeper has run.
func (s *Service) AcceptInvite(ctx context.Context, authCtx auth.AuthContext, token string) (*db.CompanyInvite, error) {
	if authCtx.Role != db.RoleEmployer {
		return nil, svcErr.Forbidden("employer accounts only")
	}
	if authCtx.CompanyID != 0 {
		return nil, svcErr.Conflict("account already belongs to a company")
	}

	invite, err := s.inviteRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("invite not found")
		}
		return nil, err
	}
	if invite.Status != db.InviteStatusPending {
		return nil, svcErr.Conflict("invite is no longer open")
	}
	if time.Now().UTC().After(invite.ExpiresAt) {
		_ = s.inviteRepo.UpdateStatus(ctx, invite.ID, db.InviteStatusExpired)
		return nil, svcErr.Conflict("invite has expired")
	}

	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&db.User{}).
			Where("id = ?", authCtx.UserID).
			Updates(map[string]any{
				"company_id":   invite.CompanyID,
				"company_role": invite.Role,
			}).Error
		if err != nil {
			return err
		}
		return tx.Model(&db.CompanyInvite{}).
			Where("id = ?", invite.ID).
			Update("status", db.InviteStatusAccepted).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.InvitesCounter.WithLabelValues(db.InviteStatusAccepted).Inc()
	invite.Status = db.InviteStatusAccepted
	return invite, nil
}

// ListTeam returns the company's members.
func (s *Service) ListTeam(ctx context.Context, authCtx auth.AuthContext) ([]db.User, error) {
	if authCtx.CompanyID == 0 {
		return nil, svcErr.NotFound("no company profile")
	}
	return s.userRepo.ListTeam(ctx, authCtx.CompanyID)
}

// ListInvites returns the company's invites, newest first.
func (s *Service) ListInvites(ctx context.Context, authCtx auth.AuthContext) ([]db.CompanyInvite, error) {
	if err := s.requireManager(authCtx); err != nil {
		return nil, err
	}
	return s.inviteRepo.ListByCompany(ctx, authCtx.CompanyID)
}

// UpdateMemberRole changes a member's team role.
func (s *Service) UpdateMemberRole(ctx context.Context, authCtx auth.AuthContext, memberID uint64, role string) (*db.User, error) {
	if err := s.requireManager(authCtx); err != nil {
		return nil, err
	}
	if !db.ValidCompanyRole(role) {
		return nil, svcErr.Invalid("unknown team role")
	}
	member, err := s.sameCompanyMember(ctx, authCtx, memberID)
	if err != nil {
		return nil, err
	}
	if member.ID == authCtx.UserID && role != db.CompanyRoleAdmin {
		return nil, svcErr.Invalid("cannot demote yourself")
	}
	if err := s.userRepo.UpdateCompanyRole(ctx, memberID, role); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, memberID)
}

// RemoveMember detaches a member from the company, clearing companyId and
// companyRole on the user row.
func (s *Service) RemoveMember(ctx context.Context, authCtx auth.AuthContext, memberID uint64) error {
	if err := s.requireManager(authCtx); err != nil {
		return err
	}
	if memberID == authCtx.UserID {
		return svcErr.Invalid("cannot remove yourself")
	}
	if _, err := s.sameCompanyMember(ctx, authCtx, memberID); err != nil {
		return err
	}
	return s.userRepo.ClearCompany(ctx, memberID)
}

func (s *Service) requireManager(authCtx auth.AuthContext) error {
	if authCtx.Role != db.RoleEmployer || authCtx.CompanyID == 0 {
		return svcErr.Forbidden("employer accounts with a company only")
	}
	if !auth.Can(authCtx.CompanyRole, auth.PermManageTeam) {
		return svcErr.Forbidden("your team role cannot manage the team")
	}
	return nil
}

func (s *Service) sameCompanyMember(ctx context.Context, authCtx auth.AuthContext, memberID uint64) (*db.User, error) {
	member, err := s.userRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, svcErr.NotFound("member not found")
	}
	if member.CompanyID == nil || *member.CompanyID != authCtx.CompanyID {
		return nil, svcErr.NotFound("member is not part of this company")
	}
	return member, nil
}
