package user

import "github.com/frahmantamala/clinic-access/internal/permission"

// ProfileView is the payload for GET /users/me. Permissions reflect the
// session's effective set, not a raw table read.
type ProfileView struct {
	ID          int64                   `json:"id"`
	Email       string                  `json:"email"`
	Name        string                  `json:"name"`
	Position    permission.Position     `json:"position"`
	Permissions []permission.Permission `json:"permissions"`
}
