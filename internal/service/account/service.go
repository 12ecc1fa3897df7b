// Package account handles registration, login and per-request resolution
// of the caller's AuthContext.
package account

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/workmatch/workmatch/internal/app"
	"github.com/workmatch/workmatch/internal/auth"
	"github.com/workmatch/workmatch/internal/db"
	svcErr "github.com/workmatch/workmatch/internal/errors"
	"github.com/workmatch/workmatch/internal/repository"
)

type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

// Register creates an account and returns a signed token.
func (s *Service) Register(ctx context.Context, email, password, name, role, companyName string) (*db.User, string, error) {
	if role != db.RoleJobseeker && role != db.RoleEmployer {
		return nil, "", svcErr.Invalid("role must be jobseeker or employer")
	}
	if len(password) < 8 {
		return nil, "", svcErr.Invalid("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &db.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		CompanyName:  companyName,
		Active:       true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", svcErr.Wrap(svcErr.KindConflict, "email already registered", err)
	}

	token, err := auth.NewToken(s.appCtx.Cfg.Auth.JWTSecret, user.ID, user.Role, s.appCtx.Cfg.Auth.TokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (*db.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", svcErr.Unauthenticated("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", svcErr.Unauthenticated("invalid email or password")
	}

	token, err := auth.NewToken(s.appCtx.Cfg.Auth.JWTSecret, user.ID, user.Role, s.appCtx.Cfg.Auth.TokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ResolveAuth loads the caller's current company affiliation for the auth
// middleware. Token claims only carry identity; affiliation is read fresh
// so role changes apply immediately.
func (s *Service) ResolveAuth(claims *auth.Claims) (auth.AuthContext, error) {
	user, err := s.userRepo.GetByID(context.Background(), claims.UserID)
	if err != nil {
		return auth.AuthContext{}, err
	}
	authCtx := auth.AuthContext{
		UserID:      user.ID,
		Role:        user.Role,
		CompanyRole: user.CompanyRole,
	}
	if user.CompanyID != nil {
		authCtx.CompanyID = *user.CompanyID
	}
	return authCtx, nil
}
