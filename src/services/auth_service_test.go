package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptotracker/src/models"
	"cryptotracker/src/repositories"
	"cryptotracker/src/schemas"
	"cryptotracker/src/services"
)

type captureEmailSender struct {
	to       string
	resetURL string
}

func (s *captureEmailSender) SendPasswordReset(_ context.Context, to, resetURL string) error {
	s.to = to
	s.resetURL = resetURL
	return nil
}

// racingUserRepo simulates losing an insert race: the existence check sees
// nothing, then the unique constraint fires on create.
type racingUserRepo struct {
	*repositories.MemoryUserRepository
}

func (r *racingUserRepo) ExistsByUsernameOrEmail(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func (r *racingUserRepo) Create(_ context.Context, _, _, _ string) (*models.User, error) {
	return nil, &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
}

func newAuthService(t *testing.T) (*services.AuthService, *repositories.MemoryUserRepository, *captureEmailSender) {
	t.Helper()
	users := repositories.NewMemoryUserRepository()
	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)
	email := &captureEmailSender{}
	return services.NewAuthService(users, tokenAuth, time.Hour, email, "http://localhost:3000"), users, email
}

func TestAuthServiceRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and returns token", func(t *testing.T) {
		auth, _, _ := newAuthService(t)
		res, err := auth.Register(ctx, &schemas.RegisterRequest{
			Username: "satoshi",
			Email:    "satoshi@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.Equal(t, "User created successfully", res.Message)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, "satoshi@example.com", res.User.Email)
		assert.Equal(t, "satoshi", res.User.Name)
	})

	t.Run("display name derives from email local part", func(t *testing.T) {
		auth, _, _ := newAuthService(t)
		res, err := auth.Register(ctx, &schemas.RegisterRequest{
			Username: "some_handle",
			Email:    "alice.b@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice.b", res.User.Name)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		auth, _, _ := newAuthService(t)
		_, err := auth.Register(ctx, &schemas.RegisterRequest{Username: "x"})
		assert.EqualError(t, err, "All fields are required")
	})

	t.Run("rejects short password", func(t *testing.T) {
		auth, _, _ := newAuthService(t)
		_, err := auth.Register(ctx, &schemas.RegisterRequest{
			Username: "x", Email: "x@example.com", Password: "12345",
		})
		assert.EqualError(t, err, "Password must be at least 6 characters")
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		auth, _, _ := newAuthService(t)
		_, err := auth.Register(ctx, &schemas.RegisterRequest{
			Username: "x", Email: "not-an-email", Password: "password123",
		})
		assert.EqualError(t, err, "Please enter a valid email address")
	})

	t.Run("maps a lost insert race to the duplicate error", func(t *testing.T) {
		users := &racingUserRepo{MemoryUserRepository: repositories.NewMemoryUserRepository()}
		tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)
		auth := services.NewAuthService(users, tokenAuth, time.Hour, &captureEmailSender{}, "http://localhost:3000")

		_, err := auth.Register(ctx, &schemas.RegisterRequest{
			Username: "racer", Email: "racer@example.com", Password: "password123",
		})
		assert.EqualError(t, err, "Username or email already exists")
	})

	t.Run("rejects duplicate username or email", func(t *testing.T) {
		auth, _, _ := newAuthService(t)
		_, err := auth.Register(ctx, &schemas.RegisterRequest{
			Username: "dup", Email: "dup@example.com", Password: "password123",
		})
		require.NoError(t, err)

		_, err = auth.Register(ctx, &schemas.RegisterRequest{
			Username: "dup", Email: "other@example.com", Password: "password123",
		})
		assert.EqualError(t, err, "Username or email already exists")

		_, err = auth.Register(ctx, &schemas.RegisterRequest{
			Username: "other", Email: "dup@example.com", Password: "password123",
		})
		assert.EqualError(t, err, "Username or email already exists")
	})
}

func TestAuthServiceLogin(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newAuthService(t)

	_, err := auth.Register(ctx, &schemas.RegisterRequest{
		Username: "bob", Email: "bob@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	t.Run("by username", func(t *testing.T) {
		res, err := auth.Login(ctx, &schemas.LoginRequest{Username: "bob", Password: "hunter22"})
		require.NoError(t, err)
		assert.Equal(t, "Login successful", res.Message)
		assert.NotEmpty(t, res.Token)
	})

	t.Run("by email", func(t *testing.T) {
		res, err := auth.Login(ctx, &schemas.LoginRequest{Email: "bob@example.com", Password: "hunter22"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := auth.Login(ctx, &schemas.LoginRequest{Username: "bob", Password: "wrong"})
		assert.EqualError(t, err, "Invalid credentials")
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := auth.Login(ctx, &schemas.LoginRequest{Username: "nobody", Password: "hunter22"})
		assert.EqualError(t, err, "Invalid credentials")
	})

	t.Run("missing identifier", func(t *testing.T) {
		_, err := auth.Login(ctx, &schemas.LoginRequest{Password: "hunter22"})
		assert.EqualError(t, err, "Username or email is required")
	})
}

func TestAuthServicePasswordReset(t *testing.T) {
	ctx := context.Background()
	auth, users, email := newAuthService(t)

	_, err := auth.Register(ctx, &schemas.RegisterRequest{
		Username: "carol", Email: "carol@example.com", Password: "original1",
	})
	require.NoError(t, err)

	t.Run("unknown email", func(t *testing.T) {
		err := auth.ForgotPassword(ctx, "nobody@example.com")
		assert.EqualError(t, err, "Email not found in our system")
	})

	t.Run("full reset flow", func(t *testing.T) {
		require.NoError(t, auth.ForgotPassword(ctx, "carol@example.com"))
		assert.Equal(t, "carol@example.com", email.to)
		assert.Contains(t, email.resetURL, "http://localhost:3000/reset-password?token=")

		user, err := users.GetByEmail(ctx, "carol@example.com")
		require.NoError(t, err)
		require.NotNil(t, user.ResetToken)

		require.NoError(t, auth.ResetPassword(ctx, *user.ResetToken, "brandnew1"))

		// Old password stops working, new one logs in, token is single-use.
		_, err = auth.Login(ctx, &schemas.LoginRequest{Username: "carol", Password: "original1"})
		assert.Error(t, err)

		_, err = auth.Login(ctx, &schemas.LoginRequest{Username: "carol", Password: "brandnew1"})
		assert.NoError(t, err)

		err = auth.ResetPassword(ctx, *user.ResetToken, "another99")
		assert.EqualError(t, err, "Invalid or expired reset token")
	})

	t.Run("bad token", func(t *testing.T) {
		err := auth.ResetPassword(ctx, "does-not-exist", "whatever1")
		assert.EqualError(t, err, "Invalid or expired reset token")
	})

	t.Run("short replacement password", func(t *testing.T) {
		err := auth.ResetPassword(ctx, "sometoken", "abc")
		assert.EqualError(t, err, "Password must be at least 6 characters")
	})
}
