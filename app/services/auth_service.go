package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type RegisterInput struct {
	Email           string `json:"email" validate:"required,email,max=254"`
	Username        string `json:"username" validate:"required,min=3,max=150"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name" validate:"max=150"`
	LastName        string `json:"last_name" validate:"max=150"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileInput leaves nil fields untouched. Email cannot be changed.
type UpdateProfileInput struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=150"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
}

type TokenPair struct {
	Access           string
	AccessExpiresAt  time.Time
	Refresh          string
	RefreshExpiresAt time.Time
}

type AuthResult struct {
	User   *models.User
	Tokens TokenPair
}

type AuthService struct {
	users    repositories.UserRepositoryImpl
	hasher   PasswordHasher
	tokens   TokenProvider
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(users repositories.UserRepositoryImpl, hasher PasswordHasher, tokens TokenProvider, validate *validator.Validate, log *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		validate: validate,
		log:      log,
		now:      time.Now,
	}
}

var userConflictFields = map[string]string{"email": "email", "username": "username"}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	conflicts := map[string]string{}
	emailTaken, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if emailTaken {
		conflicts["email"] = "A user with this email already exists."
	}
	usernameTaken, err := s.users.ExistsByUsername(ctx, in.Username, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if usernameTaken {
		conflicts["username"] = "A user with this username already exists."
	}
	if len(conflicts) > 0 {
		return nil, &ConflictError{Fields: conflicts}
	}

	user, err := s.createUser(ctx, in, false)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.Uint64("user_id", user.ID))
	return &AuthResult{User: user, Tokens: *tokens}, nil
}

// CreateAdmin registers an active staff account.
func (s *AuthService) CreateAdmin(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if in.PasswordConfirm == "" {
		in.PasswordConfirm = in.Password
	}
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	return s.createUser(ctx, in, true)
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput, staff bool) (*models.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:     in.Email,
		Username:  in.Username,
		Password:  hash,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		IsStaff:   staff,
		IsActive:  true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if conflict, ok := conflictFromDuplicate(err, userConflictFields); ok {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !s.hasher.Compare(user.Password, in.Password) {
		return nil, ErrInvalidLogin
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("failed to record last login", zap.Uint64("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}

	tokens, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: *tokens}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", time.Time{}, NewValidationError("refresh", "This field is required.")
	}

	claims, err := s.tokens.Parse(ctx, refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", time.Time{}, ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !user.IsActive {
		return "", time.Time{}, ErrUnauthorized
	}

	access, exp, err := s.tokens.SignAccess(ctx, user)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return access, exp, nil
}

// Authenticate resolves an access token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.tokens.Parse(ctx, accessToken, TokenTypeAccess)
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrUnauthorized
	}
	return user, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, notFound("user")
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uint64, in UpdateProfileInput) (*models.User, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		taken, err := s.users.ExistsByUsername(ctx, username, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return nil, NewConflictError("username", "A user with this username already exists.")
		}
		user.Username = username
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}

	if err := s.users.Update(ctx, user); err != nil {
		if conflict, ok := conflictFromDuplicate(err, userConflictFields); ok {
			return nil, conflict
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, accessExp, err := s.tokens.SignAccess(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, refreshExp, err := s.tokens.SignRefresh(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return &TokenPair{
		Access:           access,
		AccessExpiresAt:  accessExp,
		Refresh:          refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}
