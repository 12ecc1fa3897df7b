package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/workmatch/workmatch/internal/db"
)

// InviteRepository provides data access for company team invitations.
type InviteRepository struct {
	db *gorm.DB
}

func NewInviteRepository(database *gorm.DB) *InviteRepository {
	return &InviteRepository{db: database}
}

func (r *InviteRepository) Create(ctx context.Context, invite *db.CompanyInvite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

func (r *InviteRepository) GetByID(ctx context.Context, inviteID uint64) (*db.CompanyInvite, error) {
	var invite db.CompanyInvite
	if err := r.db.WithContext(ctx).First(&invite, inviteID).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *InviteRepository) GetByToken(ctx context.Context, token string) (*db.CompanyInvite, error) {
	var invite db.CompanyInvite
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *InviteRepository) ListByCompany(ctx context.Context, companyID uint64) ([]db.CompanyInvite, error) {
	var invites []db.CompanyInvite
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id DESC").
		Find(&invites).Error
	return invites, err
}

func (r *InviteRepository) UpdateStatus(ctx context.Context, inviteID uint64, status string) error {
	return r.db.WithContext(ctx).
		Model(&db.CompanyInvite{}).
		Where("id = ?", inviteID).
		Update("status", status).Error
}

// ExtendExpiry pushes the expiry forward on the existing row. Resend never
// creates a second invite.
func (r *InviteRepository) ExtendExpiry(ctx context.Context, inviteID uint64, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&db.CompanyInvite{}).
		Where("id = ?", inviteID).
		Updates(map[string]any{
			"expires_at": expiresAt,
			"status":     db.InviteStatusPending,
		}).Error
}

// ExpireStale flips pending invites whose expiry has passed. Returns the
// number of rows touched; called by the cron sweeper.
func (r *InviteRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&db.CompanyInvite{}).
		Where("status = ? AND expires_at < ?", db.InviteStatusPending, now).
		Update("status", db.InviteStatusExpired)
	return res.RowsAffected, res.Error
}
