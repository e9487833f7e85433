package accessrequest

import (
	"time"

	"github.com/frahmantamala/clinic-access/internal/permission"
)

// Status is the workflow state of a permission request. PENDING is the only
// non-terminal state; APPROVED and REJECTED admit no further transitions.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus rejects unknown status filters.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(raw), nil
	}
	return "", &permission.UnknownVariantError{Kind: "request status", Value: raw}
}

// Request is a user-initiated ask for a permission, terminated exactly once
// by a reviewer. ReviewerID and ReviewedAt are set iff the status is
// terminal.
type Request struct {
	ID          int64                 `json:"id" gorm:"primaryKey"`
	RequesterID int64                 `json:"requester_id" gorm:"column:requester_id;not null"`
	Permission  permission.Permission `json:"permission" gorm:"column:permission;not null"`
	Reason      string                `json:"reason" gorm:"column:reason;not null"`
	Status      Status                `json:"status" gorm:"column:status;default:pending"`
	ReviewerID  *int64                `json:"reviewer_id,omitempty" gorm:"column:reviewer_id"`
	ReviewedAt  *time.Time            `json:"reviewed_at,omitempty" gorm:"column:reviewed_at"`
	ReviewNote  *string               `json:"review_note,omitempty" gorm:"column:review_note"`
	CreatedAt   time.Time             `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time             `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

// TableName returns the table name for GORM
func (Request) TableName() string {
	return "permission_requests"
}

func (r *Request) IsTerminal() bool {
	return r.Status == StatusApproved || r.Status == StatusRejected
}

func (r *Request) CanBeReviewed() bool {
	return r.Status == StatusPending
}
