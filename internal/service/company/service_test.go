package company_test

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
	"github.com/workmatch/workmatch/internal/service/company"
)

//
// Test helpers
//

// setupService wires a company Service onto an isolated in-memory SQLite
// DB with one employer user (id 1, no company yet).
func setupService(t *testing.T) (*company.Service, *gorm.DB) {
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

	require.NoError(t, dbase.AutoMigrate(&db.User{}, &db.Company{}, &db.CompanyDraft{}))

	user := db.User{
		ID: 1, Email: "founder@test.com", Name: "Founder", PasswordHash: "x",
		Role: db.RoleEmployer, CompanyName: "Fallback Inc", Active: true,
	}
	require.NoError(t, dbase.Create(&user).Error)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(cfg, dbase, cache.NewRedisCache(cfg), EventBus.New(), logger)
	return company.NewService(appCtx), dbase
}

func employerAuth(userID, companyID uint64, companyRole string) auth.AuthContext {
	return auth.AuthContext{UserID: userID, Role: db.RoleEmployer, CompanyID: companyID, CompanyRole: companyRole}
}

//
// Tests
//

// TestSaveDraftOverwrites: each save replaces the single active draft
// wholesale; no second row appears.
func TestSaveDraftOverwrites(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)
	authCtx := employerAuth(1, 0, "")

	_, err := svc.SaveDraft(ctx, authCtx, db.CompanyFields{Name: "First Name"}, 1)
	require.NoError(t, err)
	_, err = svc.SaveDraft(ctx, authCtx, db.CompanyFields{Name: "Second Name", Industry: "Tech"}, 2)
	require.NoError(t, err)

	var drafts []db.CompanyDraft
	require.NoError(t, dbase.Find(&drafts).Error)
	require.Len(t, drafts, 1)
	assert.Equal(t, db.DraftTypeCreate, drafts[0].DraftType)
	assert.Equal(t, 2, drafts[0].Step)
	assert.Contains(t, drafts[0].DraftData, "Second Name")
	assert.NotContains(t, drafts[0].DraftData, "First Name")

	got, err := svc.GetDraft(ctx, authCtx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Step)
}

// TestApplyDraftCreatePath: applying a create draft inserts the company,
// links the user as admin, and deletes the draft, all or nothing.
func TestApplyDraftCreatePath(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)
	authCtx := employerAuth(1, 0, "")

	_, err := svc.SaveDraft(ctx, authCtx, db.CompanyFields{
		Name: "Acme", Industry: "Tech",
		Sliders: db.CompanySliders{{ID: "pace", Value: 70, PreferredSide: "right"}},
	}, 3)
	require.NoError(t, err)

	got, err := svc.ApplyDraft(ctx, authCtx)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.NotZero(t, got.ID)

	var user db.User
	require.NoError(t, dbase.First(&user, 1).Error)
	require.NotNil(t, user.CompanyID)
	assert.Equal(t, got.ID, *user.CompanyID)
	assert.Equal(t, db.CompanyRoleAdmin, user.CompanyRole)

	var draftCount int64
	require.NoError(t, dbase.Model(&db.CompanyDraft{}).Count(&draftCount).Error)
	assert.Zero(t, draftCount)
}

// TestApplyDraftNameFallback: a create draft without a name falls back to
// the company name the user typed at signup.
func TestApplyDraftNameFallback(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	authCtx := employerAuth(1, 0, "")

	_, err := svc.SaveDraft(ctx, authCtx, db.CompanyFields{Industry: "Tech"}, 1)
	require.NoError(t, err)

	got, err := svc.ApplyDraft(ctx, authCtx)
	require.NoError(t, err)
	assert.Equal(t, "Fallback Inc", got.Name)
}

// TestApplyDraftEditPath: an edit draft patches the existing company and
// the edit draft is keyed by that company.
func TestApplyDraftEditPath(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	// create first
	created, err := svc.CreateCompany(ctx, employerAuth(1, 0, ""), db.CompanyFields{Name: "Acme"})
	require.NoError(t, err)
	authCtx := employerAuth(1, created.ID, db.CompanyRoleAdmin)

	_, err = svc.SaveDraft(ctx, authCtx, db.CompanyFields{Name: "Acme Rebranded", Location: "Berlin"}, 2)
	require.NoError(t, err)

	got, err := svc.ApplyDraft(ctx, authCtx)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Acme Rebranded", got.Name)
	assert.Equal(t, "Berlin", got.Location)

	var companyCount int64
	require.NoError(t, dbase.Model(&db.Company{}).Count(&companyCount).Error)
	assert.Equal(t, int64(1), companyCount) // patched, not duplicated

	var draftCount int64
	require.NoError(t, dbase.Model(&db.CompanyDraft{}).Count(&draftCount).Error)
	assert.Zero(t, draftCount)
}

// TestApplyDraftWithoutDraft rejects the create-path caller and hands the
// edit-path caller their unchanged company.
func TestApplyDraftWithoutDraft(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.ApplyDraft(ctx, employerAuth(1, 0, ""))
	assert.True(t, svcErr.IsKind(err, svcErr.KindNotFound))

	created, err := svc.CreateCompany(ctx, employerAuth(1, 0, ""), db.CompanyFields{Name: "Acme"})
	require.NoError(t, err)

	got, err := svc.ApplyDraft(ctx, employerAuth(1, created.ID, db.CompanyRoleAdmin))
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Acme", got.Name)
}

// TestApplyDraftAtomicity: if the company write fails mid-apply, the
// transaction rolls back and the draft survives for a retry.
func TestApplyDraftAtomicity(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)
	authCtx := employerAuth(1, 0, "")

	_, err := svc.SaveDraft(ctx, authCtx, db.CompanyFields{Name: "Acme"}, 1)
	require.NoError(t, err)

	// sabotage the company insert
	require.NoError(t, dbase.Migrator().DropTable(&db.Company{}))

	_, err = svc.ApplyDraft(ctx, authCtx)
	require.Error(t, err)

	var draftCount int64
	require.NoError(t, dbase.Model(&db.CompanyDraft{}).Count(&draftCount).Error)
	assert.Equal(t, int64(1), draftCount)

	var user db.User
	require.NoError(t, dbase.First(&user, 1).Error)
	assert.Nil(t, user.CompanyID)
}

// TestDiscardDraft removes the draft without touching companies.
func TestDiscardDraft(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)
	authCtx := employerAuth(1, 0, "")

	err := svc.DiscardDraft(ctx, authCtx)
	assert.True(t, svcErr.IsKind(err, svcErr.KindNotFound))

	_, err = svc.SaveDraft(ctx, authCtx, db.CompanyFields{Name: "Acme"}, 1)
	require.NoError(t, err)
	require.NoError(t, svc.DiscardDraft(ctx, authCtx))

	var draftCount, companyCount int64
	require.NoError(t, dbase.Model(&db.CompanyDraft{}).Count(&draftCount).Error)
	require.NoError(t, dbase.Model(&db.Company{}).Count(&companyCount).Error)
	assert.Zero(t, draftCount)
	assert.Zero(t, companyCount)
}

// TestCreateCompanyDirectPath and the already-has-a-company conflict.
func TestCreateCompanyDirectPath(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	created, err := svc.CreateCompany(ctx, employerAuth(1, 0, ""), db.CompanyFields{Name: "Acme"})
	require.NoError(t, err)

	var user db.User
	require.NoError(t, dbase.First(&user, 1).Error)
	require.NotNil(t, user.CompanyID)
	assert.Equal(t, created.ID, *user.CompanyID)

	_, err = svc.CreateCompany(ctx, employerAuth(1, created.ID, db.CompanyRoleAdmin), db.CompanyFields{Name: "Second"})
	assert.True(t, svcErr.IsKind(err, svcErr.KindConflict))
}

// TestUpdateCompanyPermissions: hiring managers cannot edit the profile,
// recruiters and admins can.
func TestUpdateCompanyPermissions(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	created, err := svc.CreateCompany(ctx, employerAuth(1, 0, ""), db.CompanyFields{Name: "Acme"})
	require.NoError(t, err)

	_, err = svc.UpdateCompany(ctx, employerAuth(1, created.ID, db.CompanyRoleHiringManager), db.CompanyFields{Name: "Nope"})
	assert.True(t, svcErr.IsKind(err, svcErr.KindForbidden))

	got, err := svc.UpdateCompany(ctx, employerAuth(1, created.ID, db.CompanyRoleRecruiter), db.CompanyFields{Name: "Acme GmbH"})
	require.NoError(t, err)
	assert.Equal(t, "Acme GmbH", got.Name)
}

// TestValidateFields enforces the slider cap and URL shape.
func TestValidateFields(t *testing.T) {
	err := company.ValidateFields(db.CompanyFields{
		Sliders: db.CompanySliders{
			{ID: "a", Value: 10, PreferredSide: "left"},
			{ID: "b", Value: 20, PreferredSide: "left"},
			{ID: "c", Value: 30, PreferredSide: "right"},
			{ID: "d", Value: 40, PreferredSide: "right"},
		},
	})
	assert.True(t, svcErr.IsKind(err, svcErr.KindInvalid))

	err = company.ValidateFields(db.CompanyFields{WebsiteURL: "not a url"})
	assert.True(t, svcErr.IsKind(err, svcErr.KindInvalid))

	err = company.ValidateFields(db.CompanyFields{
		Name:       "Acme",
		WebsiteURL: "https://acme.example",
		Sliders:    db.CompanySliders{{ID: "pace", Value: 50, PreferredSide: "left"}},
	})
	assert.NoError(t, err)
}
