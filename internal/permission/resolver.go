package permission

import "time"

// Resolver computes a user's effective permission set from position defaults
// and per-user grants. It is pure: the result is fully determined by
// (position, grants, now), it holds no mutable state, and it is safe under
// unlimited concurrent use.
type Resolver struct {
	policy *PolicyTable
}

func NewResolver(policy *PolicyTable) *Resolver {
	return &Resolver{policy: policy}
}

// Resolve merges policy defaults with grant overrides:
//
//  1. start from the position's policy defaults
//  2. drop grants whose expiry has passed
//  3. for each permission keep only the most recent active grant by
//     GrantedAt; equal timestamps are broken by the higher grant ID
//     (monotonic insert order)
//  4. the surviving grant adds the permission if Granted, removes it if not
//
// Permissions without any applicable grant keep their policy-default
// membership.
func (r *Resolver) Resolve(position Position, grants []Grant, now time.Time) Set {
	result := r.policy.DefaultsFor(position)

	applicable := make(map[Permission]*Grant, len(grants))
	for i := range grants {
		g := &grants[i]
		if !g.IsActive(now) {
			continue
		}
		current, ok := applicable[g.Permission]
		if !ok || g.supersedes(current) {
			applicable[g.Permission] = g
		}
	}

	for perm, g := range applicable {
		if g.Granted {
			result.Add(perm)
		} else {
			result.Remove(perm)
		}
	}

	return result
}

// supersedes reports whether g shadows other for the same permission.
func (g *Grant) supersedes(other *Grant) bool {
	if g.GrantedAt.Equal(other.GrantedAt) {
		return g.ID > other.ID
	}
	return g.GrantedAt.After(other.GrantedAt)
}
