package permission

import (
	"errors"
	"fmt"
	"strings"
)

// PolicyTable maps each Position to its baseline permission set. It is
// immutable after construction and safe for concurrent reads; construct it
// once at startup and inject it wherever defaults are needed.
type PolicyTable struct {
	defaults map[Position]Set
}

// NewPolicyTable validates and freezes a position→permissions mapping.
// Validation flags authoring errors: positions outside the enumeration,
// unknown permissions, duplicate permissions within an entry, and known
// positions with no entry at all.
func NewPolicyTable(entries map[Position][]Permission) (*PolicyTable, error) {
	var errs []string

	for pos, perms := range entries {
		if _, ok := knownPositions[pos]; !ok {
			errs = append(errs, fmt.Sprintf("entry for unknown position %q", pos))
			continue
		}
		seen := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			if _, ok := knownPermissions[p]; !ok {
				errs = append(errs, fmt.Sprintf("position %s: unknown permission %q", pos, p))
			}
			if _, dup := seen[p]; dup {
				errs = append(errs, fmt.Sprintf("position %s: duplicate permission %q", pos, p))
			}
			seen[p] = struct{}{}
		}
	}

	for _, pos := range Positions {
		if _, ok := entries[pos]; !ok {
			errs = append(errs, fmt.Sprintf("position %s has no policy entry", pos))
		}
	}

	if len(errs) > 0 {
		return nil, errors.New("invalid policy table: " + strings.Join(errs, "; "))
	}

	defaults := make(map[Position]Set, len(entries))
	for pos, perms := range entries {
		defaults[pos] = NewSet(perms...)
	}

	return &PolicyTable{defaults: defaults}, nil
}

// DefaultsFor returns a copy of the baseline permission set for a position.
// Total over the Position domain: positions without an entry get an empty
// set rather than an error.
func (t *PolicyTable) DefaultsFor(position Position) Set {
	if defaults, ok := t.defaults[position]; ok {
		return defaults.Clone()
	}
	return NewSet()
}

// DefaultPolicy is the deploy-time policy table for the clinic dashboard.
func DefaultPolicy() *PolicyTable {
	table, err := NewPolicyTable(map[Position][]Permission{
		PositionDoctor: {
			HandoverView, HandoverManage,
			InventoryView,
			ScheduleView,
			QualityView,
		},
		PositionNurse: {
			HandoverView, HandoverManage,
			InventoryView,
			ScheduleView,
		},
		PositionReceptionist: {
			HandoverView,
			ScheduleView, ScheduleManage,
		},
		PositionManager: {
			HandoverView, HandoverManage,
			InventoryView, InventoryManage,
			ScheduleView, ScheduleManage,
			HRView, HRManage,
			ProcurementView, ProcurementManage,
			QualityView, QualityManage,
			ReportsView,
		},
		PositionAdmin: {
			HandoverView, HandoverManage,
			InventoryView, InventoryManage,
			ScheduleView, ScheduleManage,
			HRView, HRManage,
			ProcurementView, ProcurementManage,
			QualityView, QualityManage,
			ReportsView,
			UsersManage,
		},
	})
	if err != nil {
		// the built-in table is validated by tests; a failure here is a
		// programming error, not a runtime condition
		panic(err)
	}
	return table
}
