package services

import (
	"errors"
	"fmt"

	"github.com/Wahidu1/projects-tech-foring/internal/models"
	"github.com/Wahidu1/projects-tech-foring/internal/policy"
	"github.com/Wahidu1/projects-tech-foring/internal/token"
)

// AuthService handles registration, login and bearer token resolution.
type AuthService struct {
	users  *UserService
	tokens *token.Manager
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *UserService, tokens *token.Manager) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
	Password2 string
}

// Register creates a new regular user after checking the password
// confirmation.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	if input.Password != input.Password2 {
		return nil, invalidField("password", "Password and Confirm Password do not match")
	}

	return s.users.CreateUser(CreateUserInput{
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Password:  input.Password,
	})
}

// LoginResult is a successful login.
type LoginResult struct {
	User   *models.User
	Tokens token.Pair
}

// Login verifies credentials and issues an access/refresh token pair.
// Unknown users, wrong passwords and inactive accounts all fail with
// ErrInvalidCredentials.
func (s *AuthService) Login(username, password string) (*LoginResult, error) {
	errs := fieldErrors{}
	if username == "" {
		errs.add("username", "Please enter username")
	}
	if password == "" {
		errs.add("password", "Please enter password")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.users.VerifyPassword(user, password) || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	return &LoginResult{User: user, Tokens: pair}, nil
}

// Refresh exchanges a refresh token for a new access token. The refresh
// token itself stays valid until it expires.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	claims, err := s.tokens.Parse(refreshToken, token.TypeRefresh)
	if err != nil {
		if errors.Is(err, token.ErrExpiredToken) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := s.users.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if !user.IsActive {
		return "", ErrInvalidToken
	}

	access, err := s.tokens.Issue(user.ID, token.TypeAccess)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}
	return access, nil
}

// Authenticate resolves an access token to the identity of a live, active
// user. The user is reloaded on every call.
func (s *AuthService) Authenticate(accessToken string) (policy.Identity, *models.User, error) {
	claims, err := s.tokens.Parse(accessToken, token.TypeAccess)
	if err != nil {
		return policy.Identity{}, nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	user, err := s.users.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return policy.Identity{}, nil, ErrUnauthenticated
		}
		return policy.Identity{}, nil, err
	}
	if !user.IsActive {
		return policy.Identity{}, nil, ErrUnauthenticated
	}

	return policy.IdentityOf(user), user, nil
}
