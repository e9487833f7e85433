package permission

import (
	"fmt"
	"time"
)

// Position is a user's fixed job role, assigned externally and used as the
// key into the default policy.
type Position string

const (
	PositionDoctor       Position = "DOCTOR"
	PositionNurse        Position = "NURSE"
	PositionReceptionist Position = "RECEPTIONIST"
	PositionManager      Position = "MANAGER"
	PositionAdmin        Position = "ADMIN"
)

// Positions lists every known position enumerator.
var Positions = []Position{
	PositionDoctor,
	PositionNurse,
	PositionReceptionist,
	PositionManager,
	PositionAdmin,
}

// Permission is an atomic capability token, namespaced by domain and action.
type Permission string

const (
	HandoverView      Permission = "HANDOVER_VIEW"
	HandoverManage    Permission = "HANDOVER_MANAGE"
	InventoryView     Permission = "INVENTORY_VIEW"
	InventoryManage   Permission = "INVENTORY_MANAGE"
	ScheduleView      Permission = "SCHEDULE_VIEW"
	ScheduleManage    Permission = "SCHEDULE_MANAGE"
	HRView            Permission = "HR_VIEW"
	HRManage          Permission = "HR_MANAGE"
	ProcurementView   Permission = "PROCUREMENT_VIEW"
	ProcurementManage Permission = "PROCUREMENT_MANAGE"
	QualityView       Permission = "QUALITY_VIEW"
	QualityManage     Permission = "QUALITY_MANAGE"
	ReportsView       Permission = "REPORTS_VIEW"
	UsersManage       Permission = "USERS_MANAGE"
)

// Permissions lists every known permission enumerator.
var Permissions = []Permission{
	HandoverView,
	HandoverManage,
	InventoryView,
	InventoryManage,
	ScheduleView,
	ScheduleManage,
	HRView,
	HRManage,
	ProcurementView,
	ProcurementManage,
	QualityView,
	QualityManage,
	ReportsView,
	UsersManage,
}

// UnknownVariantError reports a raw string that does not match any known
// enumerator. Unknown values are rejected instead of echoed back.
type UnknownVariantError struct {
	Kind  string
	Value string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown %s: %q", e.Kind, e.Value)
}

var knownPermissions = func() map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(Permissions))
	for _, p := range Permissions {
		m[p] = struct{}{}
	}
	return m
}()

var knownPositions = func() map[Position]struct{} {
	m := make(map[Position]struct{}, len(Positions))
	for _, p := range Positions {
		m[p] = struct{}{}
	}
	return m
}()

// ParsePermission converts a raw string into a Permission, rejecting unknown
// enumerators.
func ParsePermission(raw string) (Permission, error) {
	p := Permission(raw)
	if _, ok := knownPermissions[p]; !ok {
		return "", &UnknownVariantError{Kind: "permission", Value: raw}
	}
	return p, nil
}

// ParsePosition converts a raw string into a Position, rejecting unknown
// enumerators.
func ParsePosition(raw string) (Position, error) {
	p := Position(raw)
	if _, ok := knownPositions[p]; !ok {
		return "", &UnknownVariantError{Kind: "position", Value: raw}
	}
	return p, nil
}

// Grant is a per-user override of a permission relative to policy defaults.
// Granted=true adds the permission beyond policy; Granted=false revokes a
// permission the policy would otherwise give. Grants are never edited in
// place: corrections are expressed as new rows, and expiry makes a row inert
// without deleting it.
type Grant struct {
	ID         int64      `json:"id" gorm:"primaryKey"`
	UserID     int64      `json:"user_id" gorm:"column:user_id;not null"`
	Permission Permission `json:"permission" gorm:"column:permission;not null"`
	Granted    bool       `json:"granted" gorm:"column:granted;not null"`
	GrantedBy  int64      `json:"granted_by" gorm:"column:granted_by"`
	GrantedAt  time.Time  `json:"granted_at" gorm:"column:granted_at;default:now()"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty" gorm:"column:expires_at"`
	Reason     *string    `json:"reason,omitempty" gorm:"column:reason"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
}

// TableName returns the table name for GORM
func (Grant) TableName() string {
	return "permission_grants"
}

// IsActive reports whether the grant still applies at the given instant.
// A grant with no expiry never goes inert.
func (g *Grant) IsActive(now time.Time) bool {
	return g.ExpiresAt == nil || g.ExpiresAt.After(now)
}
