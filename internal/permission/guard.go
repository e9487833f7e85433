package permission

import "sort"

// Set is a resolved effective permission set. It is a plain value with pure
// membership predicates; callers own resolving it first.
type Set map[Permission]struct{}

func NewSet(perms ...Permission) Set {
	s := make(Set, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

func (s Set) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// HasAny reports whether at least one of the given permissions is a member.
func (s Set) HasAny(perms ...Permission) bool {
	for _, p := range perms {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// HasAll reports whether every given permission is a member. An empty
// argument list is vacuously true.
func (s Set) HasAll(perms ...Permission) bool {
	for _, p := range perms {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

func (s Set) Add(p Permission) {
	s[p] = struct{}{}
}

func (s Set) Remove(p Permission) {
	delete(s, p)
}

func (s Set) Clone() Set {
	c := make(Set, len(s))
	for p := range s {
		c[p] = struct{}{}
	}
	return c
}

// Values returns the members sorted lexically, for stable JSON payloads and
// log lines. Set semantics themselves carry no ordering guarantee.
func (s Set) Values() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
