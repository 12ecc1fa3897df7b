package team_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/auth"
	"github.com/workmatch/workmatch/internal/cache"
	"github.com/workmatch/workmatch/internal/config"
	"github.com/workmatch/workmatch/internal/db"
	svcErr "github.com/workmatch/workmatch/internal/errors"
	"github.com/workmatch/workmatch/internal/repository"
	"github.com/workmatch/workmatch/internal/service/team"
)

//
// Test helpers
//

// setupService seeds company 10 with admin user 1 and recruiter user 2,
// plus employer user 3 with no company (the invite target).
func setupService(t *testing.T) (*team.Service, *gorm.DB) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(&db.User{}, &db.Company{}, &db.CompanyInvite{}))

	company := db.Company{ID: 10, Name: "Acme"}
	require.NoError(t, dbase.Create(&company).Error)

	company10 := uint64(10)
	users := []db.User{
		{ID: 1, Email: "admin@acme.com", Name: "Admin", PasswordHash: "x", Role: db.RoleEmployer, CompanyID: &company10, CompanyRole: db.CompanyRoleAdmin, Active: true},
		{ID: 2, Email: "rec@acme.com", Name: "Recruiter", PasswordHash: "x", Role: db.RoleEmployer, CompanyID: &company10, CompanyRole: db.CompanyRoleRecruiter, Active: true},
		{ID: 3, Email: "new@hire.com", Name: "New Hire", PasswordHash: "x", Role: db.RoleEmployer, Active: true},
	}
	require.NoError(t, dbase.Create(&users).Error)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(cfg, dbase, cache.NewRedisCache(cfg), EventBus.New(), logger)
	return team.NewService(appCtx), dbase
}

func adminAuth() auth.AuthContext {
	return auth.AuthContext{UserID: 1, Role: db.RoleEmployer, CompanyID: 10, CompanyRole: db.CompanyRoleAdmin}
}

func recruiterAuth() auth.AuthContext {
	return auth.AuthContext{UserID: 2, Role: db.RoleEmployer, CompanyID: 10, CompanyRole: db.CompanyRoleRecruiter}
}

func newHireAuth() auth.AuthContext {
	return auth.AuthContext{UserID: 3, Role: db.RoleEmployer}
}

//
// Tests
//

// TestInviteAndAccept walks the happy path: admin invites, the new hire
// accepts by token and ends up linked with the invited role.
func TestInviteAndAccept(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	invite, err := svc.Invite(ctx, adminAuth(), "new@hire.com", db.CompanyRoleHiringManager)
	require.NoError(t, err)
	assert.Equal(t, db.InviteStatusPending, invite.Status)
	assert.NotEmpty(t, invite.Token)
	assert.True(t, invite.ExpiresAt.After(time.Now()))

	accepted, err := svc.AcceptInvite(ctx, newHireAuth(), invite.Token)
	require.NoError(t, err)
	assert.Equal(t, db.InviteStatusAccepted, accepted.Status)

	var user db.User
	require.NoError(t, dbase.First(&user, 3).Error)
	require.NotNil(t, user.CompanyID)
	assert.Equal(t, uint64(10), *user.CompanyID)
	assert.Equal(t, db.CompanyRoleHiringManager, user.CompanyRole)

	// accepting twice fails: the invite is settled
	_, err = svc.AcceptInvite(ctx, auth.AuthContext{UserID: 4, Role: db.RoleEmployer}, invite.Token)
	assert.True(t, svcErr.IsKind(err, svcErr.KindConflict))
}

// TestInvitePermissions: only admins manage the team; unknown roles and
// companyless callers are rejected.
func TestInvitePermissions(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Invite(ctx, recruiterAuth(), "x@y.com", db.CompanyRoleRecruiter)
	assert.True(t, svcErr.IsKind(err, svcErr.KindForbidden))

	_, err = svc.Invite(ctx, newHireAuth(), "x@y.com", db.CompanyRoleRecruiter)
	assert.True(t, svcErr.IsKind(err, svcErr.KindForbidden))

	_, err = svc.Invite(ctx, adminAuth(), "x@y.com", "intern")
	assert.True(t, svcErr.IsKind(err, svcErr.KindInvalid))
}

// TestAcceptExpiredInvite: a stale invite is rejected on its timestamp
// even before the sweeper has flipped the status column.
func TestAcceptExpiredInvite(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	invite, err := svc.Invite(ctx, adminAuth(), "new@hire.com", db.CompanyRoleRecruiter)
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, dbase.Model(&db.CompanyInvite{}).Where("id = ?", invite.ID).Update("expires_at", past).Error)

	_, err = svc.AcceptInvite(ctx, newHireAuth(), invite.Token)
	assert.True(t, svcErr.IsKind(err, svcErr.KindConflict))

	var got db.CompanyInvite
	require.NoError(t, dbase.First(&got, invite.ID).Error)
	assert.Equal(t, db.InviteStatusExpired, got.Status)
}

// TestResendReopensExpiredInvite: resend pushes the expiry forward on the
// same row; no second invite appears.
func TestResendReopensExpiredInvite(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	invite, err := svc.Invite(ctx, adminAuth(), "new@hire.com", db.CompanyRoleRecruiter)
	require.NoError(t, err)

	require.NoError(t, dbase.Model(&db.CompanyInvite{}).Where("id = ?", invite.ID).
		Updates(map[string]any{
			"status":     db.InviteStatusExpired,
			"expires_at": time.Now().UTC().Add(-time.Hour),
		}).Error)

	resent, err := svc.ResendInvite(ctx, adminAuth(), invite.ID)
	require.NoError(t, err)
	assert.Equal(t, db.InviteStatusPending, resent.Status)
	assert.True(t, resent.ExpiresAt.After(time.Now()))
	assert.Equal(t, invite.Token, resent.Token)

	var count int64
	require.NoError(t, dbase.Model(&db.CompanyInvite{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = svc.AcceptInvite(ctx, newHireAuth(), resent.Token)
	require.NoError(t, err)

	// accepted invites stay terminal
	_, err = svc.ResendInvite(ctx, adminAuth(), invite.ID)
	assert.True(t, svcErr.IsKind(err, svcErr.KindConflict))
}

// TestCancelInvite: pending only; a cancelled token can never be accepted.
func TestCancelInvite(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	invite, err := svc.Invite(ctx, adminAuth(), "new@hire.com", db.CompanyRoleRecruiter)
	require.NoError(t, err)

	require.NoError(t, svc.CancelInvite(ctx, adminAuth(), invite.ID))

	_, err = svc.AcceptInvite(ctx, newHireAuth(), invite.Token)
	assert.True(t, svcErr.IsKind(err, svcErr.KindConflict))

	err = svc.CancelInvite(ctx, adminAuth(), invite.ID)
	assert.True(t, svcErr.IsKind(err, svcErr.KindConflict))
}

// TestTeamManagement: role change, self-demotion guard, member removal.
func TestTeamManagement(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	members, err := svc.ListTeam(ctx, adminAuth())
	require.NoError(t, err)
	require.Len(t, members, 2)

	member, err := svc.UpdateMemberRole(ctx, adminAuth(), 2, db.CompanyRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, db.CompanyRoleAdmin, member.CompanyRole)

	_, err = svc.UpdateMemberRole(ctx, adminAuth(), 1, db.CompanyRoleRecruiter)
	assert.True(t, svcErr.IsKind(err, svcErr.KindInvalid)) // cannot demote yourself

	err = svc.RemoveMember(ctx, adminAuth(), 1)
	assert.True(t, svcErr.IsKind(err, svcErr.KindInvalid)) // cannot remove yourself

	require.NoError(t, svc.RemoveMember(ctx, adminAuth(), 2))

	var user db.User
	require.NoError(t, dbase.First(&user, 2).Error)
	assert.Nil(t, user.CompanyID)
	assert.Empty(t, user.CompanyRole)

	// removed members are gone from the roster
	members, err = svc.ListTeam(ctx, adminAuth())
	require.NoError(t, err)
	require.Len(t, members, 1)
}

// TestExpireStaleSweep exercises the repository call the cron sweeper runs.
func TestExpireStaleSweep(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	fresh, err := svc.Invite(ctx, adminAuth(), "fresh@hire.com", db.CompanyRoleRecruiter)
	require.NoError(t, err)
	stale, err := svc.Invite(ctx, adminAuth(), "stale@hire.com", db.CompanyRoleRecruiter)
	require.NoError(t, err)

	require.NoError(t, dbase.Model(&db.CompanyInvite{}).Where("id = ?", stale.ID).
		Update("expires_at", time.Now().UTC().Add(-time.Minute)).Error)

	repo := repository.NewInviteRepository(dbase)
	touched, err := repo.ExpireStale(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), touched)

	var got db.CompanyInvite
	require.NoError(t, dbase.First(&got, stale.ID).Error)
	assert.Equal(t, db.InviteStatusExpired, got.Status)
	var gotFresh db.CompanyInvite
	require.NoError(t, dbase.First(&gotFresh, fresh.ID).Error)
	assert.Equal(t, db.InviteStatusPending, gotFresh.Status)
}
