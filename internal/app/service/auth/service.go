// Package auth registers users, issues JWT access tokens and rotates refresh
// tokens. Refresh tokens are stored by sha256 hash and are single use.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fatflowers/gymdesk/internal/app/storage"
	"github.com/fatflowers/gymdesk/internal/models"
	"github.com/fatflowers/gymdesk/pkg/apperr"
	"github.com/fatflowers/gymdesk/pkg/config"
	"github.com/fatflowers/gymdesk/pkg/logctx"
	"github.com/fatflowers/gymdesk/pkg/types"
)

var (
	ErrEmailInUse          = apperr.Conflict("email already in use")
	ErrInvalidCredentials  = apperr.Unauthorized("invalid credentials")
	ErrInvalidToken        = apperr.Unauthorized("invalid or expired token")
	ErrInvalidRefreshToken = apperr.Unauthorized("invalid refresh token")
	ErrRefreshRevoked      = apperr.Unauthorized("refresh token expired or revoked")
	ErrRoleNotAllowed      = apperr.Forbidden("only admins can assign staff roles")
	ErrUserNotFound        = apperr.NotFound("user not found")
)

type RegisterInput struct {
	Name     string     `json:"name" binding:"required,max=128"`
	Email    string     `json:"email" binding:"required,email,max=255"`
	Phone    string     `json:"phone" binding:"omitempty,max=32"`
	Password string     `json:"password" binding:"required,min=6,max=72"`
	Role     types.Role `json:"role" binding:"omitempty,oneof=ADMIN RECEPTION TRAINER MEMBER"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginResult struct {
	User *models.User `json:"user"`
	TokenPair
}

type Service struct {
	store      storage.Store
	log        *zap.SugaredLogger
	cfg        config.AuthConfig
	now        func() time.Time
	bcryptCost int
}

func NewService(store storage.Store, log *zap.SugaredLogger, cfg *config.Config) *Service {
	return &Service{
		store:      store,
		log:        log,
		cfg:        cfg.Auth,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
}

var Module = fx.Options(
	fx.Provide(NewService),
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user. Anyone may sign up as MEMBER; other roles need an
// ADMIN actor.
func (s *Service) Register(ctx context.Context, in RegisterInput, actor *Claims) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = types.RoleMember
	}
	if !role.Valid() {
		return nil, apperr.BadRequest("invalid role")
	}
	if role != types.RoleMember && (actor == nil || actor.Role != types.RoleAdmin) {
		return nil, ErrRoleNotAllowed
	}
	return s.createUser(ctx, in.Name, in.Email, in.Phone, in.Password, role)
}

func (s *Service) createUser(ctx context.Context, name, email, phone, password string, role types.Role) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	u := &models.User{
		Name:         name,
		Email:        normalizeEmail(email),
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// EnsureAdmin creates an ADMIN user for email unless one already exists.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, bool, error) {
	existing, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, fmt.Errorf("get user: %w", err)
	}
	u, err := s.createUser(ctx, name, email, "", password, types.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	u, err := s.store.GetUserByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issue(ctx, s.store, u)
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("user logged in", "user_id", u.ID)
	return &LoginResult{User: u, TokenPair: *pair}, nil
}

// issue signs a token pair for u and stores the refresh token hash through st.
func (s *Service) issue(ctx context.Context, st storage.UserStore, u *models.User) (*TokenPair, error) {
	now := s.now()

	access := newClaims(u.ID, tokenTypeAccess, now, s.cfg.AccessTTL)
	access.Role, access.Email, access.Name = u.Role, u.Email, u.Name
	accessToken, err := sign(access, s.cfg.AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh := newClaims(u.ID, tokenTypeRefresh, now, s.cfg.RefreshTTL)
	refreshToken, err := sign(refresh, s.cfg.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	err = st.CreateRefreshToken(ctx, &models.RefreshToken{
		UserID:    u.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: now.Add(s.cfg.RefreshTTL),
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. Presenting a token twice fails the second time.
func (s *Service) Refresh(ctx context.Context, token string) (*TokenPair, error) {
	claims, err := parse(token, s.cfg.RefreshSecret, tokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	var pair *TokenPair
	err = s.store.Atomic(ctx, func(tx storage.Store) error {
		stored, err := tx.GetRefreshTokenByHash(ctx, hashToken(token))
		if errors.Is(err, storage.ErrNotFound) {
			return ErrRefreshRevoked
		}
		if err != nil {
			return fmt.Errorf("get refresh token: %w", err)
		}
		if stored.Revoked || stored.UserID != claims.Subject || stored.ExpiresAt.Before(s.now()) {
			return ErrRefreshRevoked
		}
		if err := tx.RevokeRefreshToken(ctx, stored.ID); err != nil {
			if errors.Is(err, storage.ErrStale) {
				return ErrRefreshRevoked
			}
			return fmt.Errorf("revoke refresh token: %w", err)
		}

		u, err := tx.GetUser(ctx, stored.UserID)
		if errors.Is(err, storage.ErrNotFound) || (err == nil && !u.IsActive) {
			return ErrRefreshRevoked
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		pair, err = s.issue(ctx, tx, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes the refresh token if it is known. It never fails.
func (s *Service) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.store.RevokeRefreshTokenByHash(ctx, hashToken(token)); err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("logout revoke failed", "err", err)
	}
}

func (s *Service) Me(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// VerifyAccess validates an access token and returns its claims.
func (s *Service) VerifyAccess(token string) (*Claims, error) {
	claims, err := parse(token, s.cfg.AccessSecret, tokenTypeAccess)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
