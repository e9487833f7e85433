package postgres

import (
	"github.com/frahmantamala/clinic-access/internal/permission"
	"gorm.io/gorm"
)

// GrantRepository implements the permission.Repository interface using GORM
type GrantRepository struct {
	db *gorm.DB
}

// NewGrantRepository creates a new grant repository
func NewGrantRepository(db *gorm.DB) permission.Repository {
	return &GrantRepository{db: db}
}

// CreateGrant appends a new grant row. Existing rows are never updated;
// resolution picks the latest row per (user, permission).
func (r *GrantRepository) CreateGrant(grant *permission.Grant) error {
	return r.db.Create(grant).Error
}

// GetGrantsForUser retrieves every grant row for a user, expired ones
// included, ordered the way resolution consumes them.
func (r *GrantRepository) GetGrantsForUser(userID int64) ([]permission.Grant, error) {
	var grants []permission.Grant
	err := r.db.Where("user_id = ?", userID).
		Order("granted_at ASC, id ASC").
		Find(&grants).Error
	return grants, err
}
