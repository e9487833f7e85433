package accessrequest

import (
	"strings"

	"github.com/frahmantamala/clinic-access/internal"
	"github.com/frahmantamala/clinic-access/internal/permission"
)

// CreateRequestDTO is the payload for asking for a permission.
type CreateRequestDTO struct {
	Permission string `json:"permission" validate:"required"`
	Reason     string `json:"reason" validate:"required"`
}

// Validate rejects malformed payloads before any mutation.
func (dto CreateRequestDTO) Validate() error {
	if strings.TrimSpace(dto.Reason) == "" {
		return internal.NewValidationFieldError("reason", "reason is required", internal.ErrCodeEmptyReason)
	}
	if _, err := permission.ParsePermission(dto.Permission); err != nil {
		return internal.NewValidationFieldError("permission", err.Error(), internal.ErrCodeUnknownPermission)
	}
	return nil
}

// ReviewRequestDTO is the payload for deciding a pending request.
type ReviewRequestDTO struct {
	Approved   *bool   `json:"approved"`
	ReviewNote *string `json:"review_note,omitempty"`
}

// Validate requires an explicit approve/reject decision.
func (dto ReviewRequestDTO) Validate() error {
	if dto.Approved == nil {
		return internal.NewValidationFieldError("approved", "approved is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
