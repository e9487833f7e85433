package user

import (
	"errors"
	"time"

	"github.com/frahmantamala/clinic-access/internal/permission"
)

type User struct {
	ID           int64               `json:"id"`
	Email        string              `json:"email"`
	Name         string              `json:"name"`
	PasswordHash string              `json:"-"`
	Position     permission.Position `json:"position"`
	IsActive     bool                `json:"is_active"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func (u *User) IsActiveUser() bool {
	return u.IsActive
}

var ErrNotFound = errors.New("user not found")
