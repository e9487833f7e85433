package postgres

import (
	"time"

	"github.com/frahmantamala/clinic-access/internal/accessrequest"
	"gorm.io/gorm"
)

// RequestRepository implements the accessrequest.Repository interface using GORM
type RequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *gorm.DB) accessrequest.Repository {
	return &RequestRepository{db: db}
}

// Create saves a new permission request
func (r *RequestRepository) Create(req *accessrequest.Request) error {
	return r.db.Create(req).Error
}

// GetByID retrieves a request by its ID
func (r *RequestRepository) GetByID(id int64) (*accessrequest.Request, error) {
	var req accessrequest.Request
	err := r.db.Where("id = ?", id).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// List retrieves requests with optional status filter and pagination,
// newest first.
func (r *RequestRepository) List(status *accessrequest.Status, limit, offset int) ([]*accessrequest.Request, error) {
	var requests []*accessrequest.Request

	query := r.db.Order("created_at DESC").Limit(limit).Offset(offset)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	err := query.Find(&requests).Error
	return requests, err
}

// ReviewPending performs the PENDING→terminal transition as a conditional
// update. The WHERE clause on the current status makes concurrent reviews
// race on a single row version: exactly one update matches, the other sees
// zero rows affected.
func (r *RequestRepository) ReviewPending(id int64, reviewerID int64, status accessrequest.Status, note *string, reviewedAt time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":      status,
		"reviewer_id": reviewerID,
		"reviewed_at": reviewedAt,
		"updated_at":  time.Now(),
	}
	if note != nil {
		updates["review_note"] = *note
	}

	result := r.db.Model(&accessrequest.Request{}).
		Where("id = ? AND status = ?", id, accessrequest.StatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}
