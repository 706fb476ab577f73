package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Wahidu1/projects-tech-foring/internal/constants"
	"github.com/Wahidu1/projects-tech-foring/internal/models"
	"github.com/Wahidu1/projects-tech-foring/internal/policy"
	"github.com/Wahidu1/projects-tech-foring/internal/repository"
	"gorm.io/gorm"
)

// UserService owns user records and their credentials.
type UserService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, hasher PasswordHasher) *UserService {
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// CreateUserInput holds the fields of a new user.
type CreateUserInput struct {
	Username    string
	Email       string
	FirstName   string
	LastName    string
	Password    string
	IsStaff     bool
	IsSuperuser bool
}

// UserPatch lists the client settable user fields. Nil fields are left
// untouched.
type UserPatch struct {
	Username    *string
	Email       *string
	FirstName   *string
	LastName    *string
	Password    *string
	IsActive    *bool
	IsStaff     *bool
	IsSuperuser *bool
}

func (p UserPatch) changesFlags() bool {
	return p.IsActive != nil || p.IsStaff != nil || p.IsSuperuser != nil
}

// CreateUser validates and stores a new user with a hashed password.
func (s *UserService) CreateUser(input CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := NormalizeEmail(input.Email)

	errs := fieldErrors{}
	validateUsername(errs, username)
	validateEmail(errs, email)
	validatePassword(errs, input.Password)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if err := s.ensureIdentityAvailable(username, email, 0); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      input.IsStaff || input.IsSuperuser,
		IsSuperuser:  input.IsSuperuser,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// FindByUsername looks a user up by exact username.
func (s *UserService) FindByUsername(username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindByID looks a user up by ID.
func (s *UserService) FindByID(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// VerifyPassword reports whether password matches the stored hash.
func (s *UserService) VerifyPassword(user *models.User, password string) bool {
	if user == nil || user.PasswordHash == "" {
		return false
	}
	return s.hasher.Compare(user.PasswordHash, password)
}

// GetUser returns the user with id if actor may read it.
func (s *UserService) GetUser(actor policy.Identity, id uint64) (*models.User, error) {
	user, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}

	if err := policy.Authorize(actor, policy.ActionRead, policy.UserResource{UserID: user.ID}); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUser applies patch to the user with id. When full is set every
// profile field must be present.
func (s *UserService) UpdateUser(actor policy.Identity, id uint64, patch UserPatch, full bool) (*models.User, error) {
	user, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}

	target := policy.UserResource{UserID: user.ID}
	if err := policy.Authorize(actor, policy.ActionUpdate, target); err != nil {
		return nil, err
	}
	if patch.changesFlags() {
		if err := policy.Authorize(actor, policy.ActionChangeFlags, target); err != nil {
			return nil, err
		}
	}

	errs := fieldErrors{}
	if full {
		requireField(errs, "username", patch.Username)
		requireField(errs, "email", patch.Email)
		requireField(errs, "first_name", patch.FirstName)
		requireField(errs, "last_name", patch.LastName)
	}

	username := user.Username
	if patch.Username != nil {
		username = strings.TrimSpace(*patch.Username)
		validateUsername(errs, username)
	}
	email := user.Email
	if patch.Email != nil {
		email = NormalizeEmail(*patch.Email)
		validateEmail(errs, email)
	}
	if patch.Password != nil {
		validatePassword(errs, *patch.Password)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if username != user.Username || email != user.Email {
		if err := s.ensureIdentityAvailable(username, email, user.ID); err != nil {
			return nil, err
		}
	}

	user.Username = username
	user.Email = email
	if patch.FirstName != nil {
		user.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		user.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Password != nil {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	if patch.IsStaff != nil {
		user.IsStaff = *patch.IsStaff
	}
	if patch.IsSuperuser != nil {
		user.IsSuperuser = *patch.IsSuperuser
	}

	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return s.FindByID(user.ID)
}

// DeleteUser removes the user with id together with the data they own.
func (s *UserService) DeleteUser(actor policy.Identity, id uint64) error {
	user, err := s.FindByID(id)
	if err != nil {
		return err
	}

	if err := policy.Authorize(actor, policy.ActionDelete, policy.UserResource{UserID: user.ID}); err != nil {
		return err
	}

	if err := s.userRepo.Delete(user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

// ensureIdentityAvailable fails with ErrDuplicateIdentity when another user
// already holds username or email. exceptID is ignored in the comparison.
func (s *UserService) ensureIdentityAvailable(username, email string, exceptID uint64) error {
	if existing, err := s.userRepo.FindByUsername(username); err == nil {
		if existing.ID != exceptID {
			return ErrDuplicateIdentity
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}

	if existing, err := s.userRepo.FindByEmail(email); err == nil {
		if existing.ID != exceptID {
			return ErrDuplicateIdentity
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	return nil
}

// NormalizeEmail trims the address and lowercases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

func validateUsername(errs fieldErrors, username string) {
	switch {
	case username == "":
		errs.add("username", "this field is required")
	case utf8.RuneCountInString(username) > constants.MaxUsernameLength:
		errs.add("username", fmt.Sprintf("must be at most %d characters", constants.MaxUsernameLength))
	}
}

func validateEmail(errs fieldErrors, email string) {
	at := strings.LastIndex(email, "@")
	switch {
	case email == "":
		errs.add("email", "this field is required")
	case at <= 0 || at == len(email)-1:
		errs.add("email", "enter a valid email address")
	case utf8.RuneCountInString(email) > constants.MaxNameLength:
		errs.add("email", fmt.Sprintf("must be at most %d characters", constants.MaxNameLength))
	}
}

func validatePassword(errs fieldErrors, password string) {
	switch {
	case password == "":
		errs.add("password", "this field is required")
	case len(password) > constants.MaxPasswordLength:
		errs.add("password", fmt.Sprintf("must be at most %d bytes", constants.MaxPasswordLength))
	}
}

func requireField(errs fieldErrors, field string, value *string) {
	if value == nil {
		errs.add(field, "this field is required")
	}
}
