package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/zetsuserv/support-portal/internal/auth"
	"github.com/zetsuserv/support-portal/internal/domain"
	"github.com/zetsuserv/support-portal/internal/notify"
	"github.com/zetsuserv/support-portal/internal/repository"
	apperrors "github.com/zetsuserv/support-portal/pkg/util"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether the address matches the portal's format rule.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// AuthService handles registration, login and password lifecycle for both
// requesters and administrators.
type AuthService struct {
	users      repository.UserRepository
	admins     repository.AdminRepository
	resets     repository.PasswordResetRepository
	tokens     *auth.TokenManager
	sender     notify.Sender
	bcryptCost int
	resetTTL   time.Duration
	logger     *zap.Logger
}

// AuthDependencies bundles collaborators for AuthService.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	AdminRepo  repository.AdminRepository
	ResetRepo  repository.PasswordResetRepository
	Tokens     *auth.TokenManager
	Sender     notify.Sender
	BcryptCost int
	ResetTTL   time.Duration
	Logger     *zap.Logger
}

// IssuedToken is returned on successful login.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	resetTTL := deps.ResetTTL
	if resetTTL <= 0 {
		resetTTL = 30 * time.Minute
	}
	cost := deps.BcryptCost
	if cost <= 0 {
		cost = 12
	}
	return &AuthService{
		users:      deps.UserRepo,
		admins:     deps.AdminRepo,
		resets:     deps.ResetRepo,
		tokens:     deps.Tokens,
		sender:     deps.Sender,
		bcryptCost: cost,
		resetTTL:   resetTTL,
		logger:     deps.Logger,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// RegisterUser creates a requester account.
func (s *AuthService) RegisterUser(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if !ValidEmail(email) {
		return nil, apperrors.NewValidationError("invalid email address", nil)
	}
	if len(password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// LoginUser authenticates a requester and issues a token.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*domain.User, *IssuedToken, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, err
	}
	if user.Status != domain.UserStatusActive {
		return nil, nil, apperrors.NewForbidden("account suspended")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, domain.SubjectTypeUser)
	if err != nil {
		return nil, nil, err
	}
	return user, &IssuedToken{Token: token, ExpiresAt: expiresAt}, nil
}

// LoginAdmin authenticates an administrator and issues a token.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*domain.Administrator, *IssuedToken, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, err
	}
	if !admin.Active {
		return nil, nil, apperrors.NewForbidden("account deactivated")
	}
	if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	token, expiresAt, err := s.tokens.GenerateToken(admin.ID, domain.SubjectTypeAdmin)
	if err != nil {
		return nil, nil, err
	}
	return admin, &IssuedToken{Token: token, ExpiresAt: expiresAt}, nil
}

// RequestPasswordReset issues a reset token for a requester and mails it.
// Unknown addresses are acknowledged silently so the endpoint does not leak
// which emails exist.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !ValidEmail(email) {
		return apperrors.NewValidationError("invalid email address", nil)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	tokenStr, err := randomToken()
	if err != nil {
		return err
	}
	reset := &repository.PasswordResetToken{
		SubjectType: string(domain.SubjectTypeUser),
		SubjectID:   user.ID,
		Token:       tokenStr,
		ExpiresAt:   time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return err
	}

	body := "<p>Hello " + user.Name + ",</p><p>Your password reset code is: <b>" + tokenStr + "</b></p>" +
		"<p>The code expires in " + s.resetTTL.String() + ".</p>"
	if err := s.sender.Send(ctx, user.Email, "Password reset request", body); err != nil {
		s.logger.Warn("password reset email failed", zap.Error(err))
	}
	return nil
}

// ConfirmPasswordReset consumes a reset token and sets the new password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	reset, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid reset token")
		}
		return err
	}
	if reset.UsedAt != nil || time.Now().After(reset.ExpiresAt) {
		return apperrors.NewUnauthorized("reset token expired")
	}

	user, err := s.users.GetByID(ctx, reset.SubjectID)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	if err := s.resets.MarkUsed(ctx, reset.ID); err != nil {
		s.logger.Warn("failed to mark reset token used", zap.Error(err))
	}
	s.logger.Info("password reset completed", zap.String("user_id", user.ID))
	return nil
}

// ChangePassword rotates a requester's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, current); err != nil {
		return apperrors.NewUnauthorized("current password incorrect")
	}
	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

func randomToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
