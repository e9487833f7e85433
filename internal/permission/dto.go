package permission

import (
	"time"

	"github.com/frahmantamala/clinic-access/internal"
)

// CreateGrantDTO is the request payload for recording a direct grant or
// revocation against a user.
type CreateGrantDTO struct {
	UserID     int64      `json:"user_id" validate:"required"`
	Permission string     `json:"permission" validate:"required"`
	Granted    bool       `json:"granted"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Reason     *string    `json:"reason,omitempty"`
}

// Validate checks the payload before any mutation happens.
func (dto CreateGrantDTO) Validate() error {
	if dto.UserID <= 0 {
		return internal.NewValidationFieldError("user_id", "user_id is required", internal.ErrCodeValidationFailed)
	}
	if _, err := ParsePermission(dto.Permission); err != nil {
		return internal.NewValidationFieldError("permission", err.Error(), internal.ErrCodeUnknownPermission)
	}
	if dto.ExpiresAt != nil && !dto.ExpiresAt.After(time.Now()) {
		return internal.NewValidationFieldError("expires_at", "expires_at must be in the future", internal.ErrCodeInvalidExpiry)
	}
	return nil
}

// CustomPermissionView is one grant row in the effective-permission payload.
type CustomPermissionView struct {
	Permission Permission `json:"permission"`
	Granted    bool       `json:"granted"`
	GrantedAt  time.Time  `json:"granted_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Reason     *string    `json:"reason,omitempty"`
}

// EffectivePermissionsView is the API shape for querying a user's resolved
// permissions: position, baseline, overrides, and the final merged set.
type EffectivePermissionsView struct {
	Position             Position               `json:"position"`
	DefaultPermissions   []Permission           `json:"default_permissions"`
	CustomPermissions    []CustomPermissionView `json:"custom_permissions"`
	EffectivePermissions []Permission           `json:"effective_permissions"`
}

// CatalogView lists the known enumerators for UI pickers.
type CatalogView struct {
	Positions   []Position   `json:"positions"`
	Permissions []Permission `json:"permissions"`
}
