package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRequestReviewed   = "permission_request.reviewed"
	EventTypeGrantCreated      = "permission_grant.created"
	EventTypeRequesterNotified = "permission_request.requester_notification"

	// AuditActionRequestReviewed is the action string audit consumers record.
	AuditActionRequestReviewed = "PERMISSION_REQUEST_REVIEWED"
)

type RequestReviewedEvent struct {
	BaseEvent
	RequestID   int64  `json:"request_id"`
	RequesterID int64  `json:"requester_id"`
	ReviewerID  int64  `json:"reviewer_id"`
	Permission  string `json:"permission"`
	Approved    bool   `json:"approved"`
}

func NewRequestReviewedEvent(requestID, requesterID, reviewerID int64, permission string, approved bool) *RequestReviewedEvent {
	return &RequestReviewedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequestReviewed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"action":       AuditActionRequestReviewed,
				"target_id":    requestID,
				"requester_id": requesterID,
				"reviewer_id":  reviewerID,
				"permission":   permission,
				"approved":     approved,
			},
		},
		RequestID:   requestID,
		RequesterID: requesterID,
		ReviewerID:  reviewerID,
		Permission:  permission,
		Approved:    approved,
	}
}

type GrantCreatedEvent struct {
	BaseEvent
	GrantID    int64  `json:"grant_id"`
	UserID     int64  `json:"user_id"`
	Permission string `json:"permission"`
	Granted    bool   `json:"granted"`
	GrantedBy  int64  `json:"granted_by"`
}

func NewGrantCreatedEvent(grantID, userID int64, permission string, granted bool, grantedBy int64) *GrantCreatedEvent {
	return &GrantCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeGrantCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"grant_id":   grantID,
				"user_id":    userID,
				"permission": permission,
				"granted":    granted,
				"granted_by": grantedBy,
			},
		},
		GrantID:    grantID,
		UserID:     userID,
		Permission: permission,
		Granted:    granted,
		GrantedBy:  grantedBy,
	}
}

// RequesterNotifiedEvent tells the notification side channel that a
// requester should hear about the outcome of their request.
type RequesterNotifiedEvent struct {
	BaseEvent
	RequestID   int64  `json:"request_id"`
	RequesterID int64  `json:"requester_id"`
	Permission  string `json:"permission"`
	Approved    bool   `json:"approved"`
}

func NewRequesterNotifiedEvent(requestID, requesterID int64, permission string, approved bool) *RequesterNotifiedEvent {
	return &RequesterNotifiedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequesterNotified,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":   requestID,
				"requester_id": requesterID,
				"permission":   permission,
				"approved":     approved,
			},
		},
		RequestID:   requestID,
		RequesterID: requesterID,
		Permission:  permission,
		Approved:    approved,
	}
}
