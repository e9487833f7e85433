package user

import (
	"fmt"

	"github.com/frahmantamala/clinic-access/internal/permission"
)

type Repository interface {
	GetByID(userID int64) (*User, error)
	GetPosition(userID int64) (permission.Position, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) GetByID(userID int64) (*User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	// deactivated accounts are invisible to profile lookups
	if !u.IsActiveUser() {
		return nil, ErrNotFound
	}
	return u, nil
}

// GetPosition satisfies the directory dependency of the permission service.
func (s *Service) GetPosition(userID int64) (permission.Position, error) {
	return s.repo.GetPosition(userID)
}
