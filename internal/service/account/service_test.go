package account_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/auth"
	"github.com/workmatch/workmatch/internal/config"
	"github.com/workmatch/workmatch/internal/db"
	svcErr "github.com/workmatch/workmatch/internal/errors"
	"github.com/workmatch/workmatch/internal/service/account"
)

func setupService(t *testing.T) (*account.Service, *gorm.DB) {
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

	require.NoError(t, dbase.AutoMigrate(&db.User{}))

	cfg := config.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(cfg, dbase, nil, EventBus.New(), logger)
	return account.NewService(appCtx), dbase
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	user, token, err := svc.Register(ctx, "a@test.com", "supersecret", "Alice", db.RoleJobseeker, "")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "supersecret", user.PasswordHash)

	_, token, err = svc.Login(ctx, "a@test.com", "supersecret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login(ctx, "a@test.com", "wrongpass")
	assert.True(t, svcErr.IsKind(err, svcErr.KindUnauthenticated))
	_, _, err = svc.Login(ctx, "nobody@test.com", "supersecret")
	assert.True(t, svcErr.IsKind(err, svcErr.KindUnauthenticated))
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, _, err := svc.Register(ctx, "a@test.com", "short", "Alice", db.RoleJobseeker, "")
	assert.True(t, svcErr.IsKind(err, svcErr.KindInvalid))

	_, _, err = svc.Register(ctx, "a@test.com", "supersecret", "Alice", "wizard", "")
	assert.True(t, svcErr.IsKind(err, svcErr.KindInvalid))

	_, _, err = svc.Register(ctx, "a@test.com", "supersecret", "Alice", db.RoleJobseeker, "")
	require.NoError(t, err)
	// duplicate email lands on the unique index
	_, _, err = svc.Register(ctx, "a@test.com", "supersecret", "Alice Again", db.RoleJobseeker, "")
	assert.True(t, svcErr.IsKind(err, svcErr.KindConflict))
}

// TestResolveAuthReadsFreshAffiliation: the token only carries identity;
// company links added after issuance show up on the next request.
func TestResolveAuthReadsFreshAffiliation(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	user, _, err := svc.Register(ctx, "e@test.com", "supersecret", "Emp", db.RoleEmployer, "Acme")
	require.NoError(t, err)

	authCtx, err := svc.ResolveAuth(&auth.Claims{UserID: user.ID, Role: user.Role})
	require.NoError(t, err)
	assert.Zero(t, authCtx.CompanyID)

	require.NoError(t, dbase.Model(&db.User{}).Where("id = ?", user.ID).
		Updates(map[string]any{"company_id": 42, "company_role": db.CompanyRoleAdmin}).Error)

	authCtx, err = svc.ResolveAuth(&auth.Claims{UserID: user.ID, Role: user.Role})
	require.NoError(t, err)
	assert.Equal(t, uint64(42), authCtx.CompanyID)
	assert.Equal(t, db.CompanyRoleAdmin, authCtx.CompanyRole)
}
