package postgres

import (
	"database/sql"
	"fmt"

	"github.com/frahmantamala/clinic-access/internal/permission"
	"github.com/frahmantamala/clinic-access/internal/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetByID(userID int64) (*user.User, error) {
	var u user.User
	var rawPosition string

	query := `SELECT id, email, name, position, is_active, created_at, updated_at FROM users WHERE id = ?`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &rawPosition, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrNotFound
		}
		return nil, err
	}

	position, err := permission.ParsePosition(rawPosition)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", userID, err)
	}
	u.Position = position

	return &u, nil
}

func (r *Repository) GetPosition(userID int64) (permission.Position, error) {
	var rawPosition string

	query := `SELECT position FROM users WHERE id = ? AND is_active = true`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&rawPosition); err != nil {
		if err == sql.ErrNoRows {
			return "", user.ErrNotFound
		}
		return "", err
	}

	position, err := permission.ParsePosition(rawPosition)
	if err != nil {
		return "", fmt.Errorf("user %d: %w", userID, err)
	}
	return position, nil
}
