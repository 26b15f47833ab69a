package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"cryptotracker/src/models"
	"cryptotracker/src/repositories"
	"cryptotracker/src/schemas"
	"cryptotracker/src/utils"
)

const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type AuthServiceI interface {
	Register(ctx context.Context, req *schemas.RegisterRequest) (*schemas.TokenResponse, error)
	Login(ctx context.Context, req *schemas.LoginRequest) (*schemas.TokenResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// AuthService owns registration, login and the password-reset flow. Tokens
// are HS256 JWTs issued and verified through the one shared JWTAuth instance;
// there is no alternate token format.
type AuthService struct {
	users     repositories.UserRepository
	tokenAuth *jwtauth.JWTAuth
	tokenTTL  time.Duration
	email     EmailSender
	clientURL string
}

func NewAuthService(users repositories.UserRepository, tokenAuth *jwtauth.JWTAuth, tokenTTL time.Duration, email EmailSender, clientURL string) *AuthService {
	return &AuthService{
		users:     users,
		tokenAuth: tokenAuth,
		tokenTTL:  tokenTTL,
		email:     email,
		clientURL: clientURL,
	}
}

func (s *AuthService) Register(ctx context.Context, req *schemas.RegisterRequest) (*schemas.TokenResponse, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, utils.BadRequest("All fields are required")
	}
	if len(req.Password) < 6 {
		return nil, utils.BadRequest("Password must be at least 6 characters")
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, utils.BadRequest("Please enter a valid email address")
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, utils.BadRequest("Username or email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, req.Username, req.Email, string(hash))
	if err != nil {
		// Two concurrent registrations can both pass the existence check;
		// the unique constraint catches the loser.
		if isUniqueViolation(err) {
			return nil, utils.BadRequest("Username or email already exists")
		}
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &schemas.TokenResponse{
		Message: "User created successfully",
		Token:   token,
		User:    userResponse(user),
	}, nil
}

func (s *AuthService) Login(ctx context.Context, req *schemas.LoginRequest) (*schemas.TokenResponse, error) {
	if req.Password == "" {
		return nil, utils.BadRequest("Password is required")
	}
	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" {
		return nil, utils.BadRequest("Username or email is required")
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.Unauthorized("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, utils.Unauthorized("Invalid credentials")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &schemas.TokenResponse{
		Message: "Login successful",
		Token:   token,
		User:    userResponse(user),
	}, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return utils.BadRequest("Email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return utils.NotFound("Email not found in our system")
	}

	resetToken := uuid.NewString()
	expires := time.Now().Add(time.Hour)
	if err := s.users.SetResetToken(ctx, email, resetToken, expires); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.clientURL, resetToken)
	if err := s.email.SendPasswordReset(ctx, email, resetURL); err != nil {
		return utils.InternalServerError("Error sending reset email")
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" || password == "" {
		return utils.BadRequest("Token and password are required")
	}
	if len(password) < 6 {
		return utils.BadRequest("Password must be at least 6 characters")
	}

	user, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		return err
	}
	if user == nil {
		return utils.BadRequest("Invalid or expired reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, string(hash))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	// 23505 is Postgres' unique_violation.
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	claims := map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, s.tokenTTL)

	_, token, err := s.tokenAuth.Encode(claims)
	return token, err
}

func userResponse(user *models.User) schemas.UserResponse {
	name := user.DisplayName()
	return schemas.UserResponse{
		ID:       user.ID,
		Username: name,
		Email:    user.Email,
		Name:     name,
	}
}

// UserResponse builds the wire shape of a user; the display name always
// derives from the email local part so stale usernames never surface.
func UserResponse(user *models.User) schemas.UserResponse {
	return userResponse(user)
}
