package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/zetsuserv/support-portal/internal/auth"
	"github.com/zetsuserv/support-portal/internal/domain"
	"github.com/zetsuserv/support-portal/internal/repository"
)

type fakeAdminRepo struct {
	admins map[string]*domain.Administrator
}

func (r *fakeAdminRepo) Create(_ context.Context, admin *domain.Administrator) error {
	admin.ID = "a-1"
	r.admins[admin.ID] = admin
	return nil
}

func (r *fakeAdminRepo) Update(_ context.Context, admin *domain.Administrator) error {
	r.admins[admin.ID] = admin
	return nil
}

func (r *fakeAdminRepo) GetByID(_ context.Context, id string) (*domain.Administrator, error) {
	admin, ok := r.admins[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return admin, nil
}

func (r *fakeAdminRepo) GetByEmail(_ context.Context, email string) (*domain.Administrator, error) {
	for _, admin := range r.admins {
		if admin.Email == email {
			return admin, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeResetRepo struct {
	tokens map[string]*repository.PasswordResetToken
	nextID int
}

func (r *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.nextID++
	token.ID = "pr-" + string(rune('0'+r.nextID))
	token.CreatedAt = time.Now()
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	token, ok := r.tokens[tokenStr]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return token, nil
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	for _, token := range r.tokens {
		if token.ID == id {
			now := time.Now()
			token.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

type authFixture struct {
	service *AuthService
	users   *fakeUserRepo
	admins  *fakeAdminRepo
	resets  *fakeResetRepo
	sender  *fakeSender
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:  &fakeUserRepo{users: map[string]*domain.User{}},
		admins: &fakeAdminRepo{admins: map[string]*domain.Administrator{}},
		resets: &fakeResetRepo{tokens: map[string]*repository.PasswordResetToken{}},
		sender: &fakeSender{},
	}
	f.service = NewAuthService(AuthDependencies{
		UserRepo:   f.users,
		AdminRepo:  f.admins,
		ResetRepo:  f.resets,
		Tokens:     auth.NewTokenManager("test-secret", 60),
		Sender:     f.sender,
		BcryptCost: bcrypt.MinCost,
		ResetTTL:   30 * time.Minute,
		Logger:     zap.NewNop(),
	})
	return f
}

func (f *authFixture) seedUser(t *testing.T, email, password string) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{
		ID:           "u-1",
		Name:         "Dana",
		Email:        email,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
	}
	f.users.users[user.ID] = user
	return user
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("user@example.com"))
	assert.True(t, ValidEmail("first.last+tag@sub.example.co"))
	assert.False(t, ValidEmail("plainaddress"))
	assert.False(t, ValidEmail("user@"))
	assert.False(t, ValidEmail("@example.com"))
	assert.False(t, ValidEmail("user@example"))
}

func TestRegisterUserValidation(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.RegisterUser(context.Background(), "", "a@example.com", "longenough")
	assert.Error(t, err)

	_, err = f.service.RegisterUser(context.Background(), "Dana", "bad-email", "longenough")
	assert.Error(t, err)

	_, err = f.service.RegisterUser(context.Background(), "Dana", "a@example.com", "short")
	assert.Error(t, err)
}

func TestRegisterUserRejectsDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "dana@example.com", "password1")

	_, err := f.service.RegisterUser(context.Background(), "Other", "dana@example.com", "password2")
	assert.Error(t, err)
}

func TestLoginUser(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "dana@example.com", "password1")

	user, issued, err := f.service.LoginUser(context.Background(), "Dana@Example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.NotEmpty(t, issued.Token)
	assert.True(t, issued.ExpiresAt.After(time.Now()))

	_, _, err = f.service.LoginUser(context.Background(), "dana@example.com", "wrong")
	assert.Error(t, err)

	_, _, err = f.service.LoginUser(context.Background(), "ghost@example.com", "password1")
	assert.Error(t, err)
}

func TestLoginAdminRejectsInactive(t *testing.T) {
	f := newAuthFixture(t)
	hash, err := auth.HashPassword("password1", bcrypt.MinCost)
	require.NoError(t, err)
	f.admins.admins["a-1"] = &domain.Administrator{
		ID:           "a-1",
		Email:        "ops@example.com",
		PasswordHash: hash,
		Active:       false,
	}

	_, _, err = f.service.LoginAdmin(context.Background(), "ops@example.com", "password1")
	assert.Error(t, err)
}

func TestPasswordResetRoundTrip(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "dana@example.com", "password1")

	require.NoError(t, f.service.RequestPasswordReset(context.Background(), "dana@example.com"))
	require.Len(t, f.sender.sent, 1)
	require.Len(t, f.resets.tokens, 1)

	var tokenStr string
	for token := range f.resets.tokens {
		tokenStr = token
	}

	require.NoError(t, f.service.ConfirmPasswordReset(context.Background(), tokenStr, "newpassword"))

	_, _, err := f.service.LoginUser(context.Background(), "dana@example.com", "newpassword")
	assert.NoError(t, err)

	// A consumed token cannot be replayed.
	err = f.service.ConfirmPasswordReset(context.Background(), tokenStr, "anotherpass")
	assert.Error(t, err)
}

func TestPasswordResetUnknownEmailSilent(t *testing.T) {
	f := newAuthFixture(t)

	err := f.service.RequestPasswordReset(context.Background(), "ghost@example.com")
	assert.NoError(t, err)
	assert.Empty(t, f.sender.sent)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "dana@example.com", "password1")

	err := f.service.ChangePassword(context.Background(), "u-1", "wrong", "newpassword")
	assert.Error(t, err)

	require.NoError(t, f.service.ChangePassword(context.Background(), "u-1", "password1", "newpassword"))

	_, _, err = f.service.LoginUser(context.Background(), "dana@example.com", "newpassword")
	assert.NoError(t, err)
}
