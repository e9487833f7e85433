package postgres

import (
	"database/sql"
	"fmt"

	"github.com/frahmantamala/clinic-access/internal/auth"
	"github.com/frahmantamala/clinic-access/internal/permission"
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

func (r *Repository) GetPasswordForEmail(email string) (string, string, bool, error) {
	var passwordHash string
	var userID string
	var isActive bool
	query := `SELECT id, password_hash, is_active FROM users WHERE email = ?`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&userID, &passwordHash, &isActive); err != nil {
		if err == sql.ErrNoRows {
			return "", "", false, fmt.Errorf("user not found")
		}
		return "", "", false, err
	}
	return passwordHash, userID, isActive, nil
}

func (r *Repository) GetUserByID(userID int64) (*auth.User, error) {
	var user auth.User
	var rawPosition string

	query := `SELECT id, email, name, position FROM users WHERE id = ? AND is_active = true`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &rawPosition); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}

	position, err := permission.ParsePosition(rawPosition)
	if err != nil {
		// a row with a position outside the enumeration is a data error,
		// not something to echo through as a raw string
		return nil, fmt.Errorf("user %d: %w", userID, err)
	}
	user.Position = position

	return &user, nil
}
