package services

import (
	"errors"
	"fmt"

	"github.com/Wahidu1/projects-tech-foring/internal/models"
)

// EnsureSuperuser creates the configured superuser unless a user with the
// same username already exists. The bool result reports whether a user was
// created.
func (s *UserService) EnsureSuperuser(input CreateUserInput) (*models.User, bool, error) {
	existing, err := s.FindByUsername(input.Username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	input.IsSuperuser = true
	user, err := s.CreateUser(input)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create superuser: %w", err)
	}
	return user, true, nil
}
