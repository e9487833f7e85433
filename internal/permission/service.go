package permission

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/clinic-access/internal"
	"github.com/frahmantamala/clinic-access/internal/core/events"
)

// Repository defines the data access methods for permission grants. Grants
// are append-only: replacement rows supersede older ones and expiry makes a
// row inert, so no update or delete methods exist.
type Repository interface {
	CreateGrant(grant *Grant) error
	GetGrantsForUser(userID int64) ([]Grant, error)
}

// UserDirectory resolves a user's position, owned by the identity
// collaborator.
type UserDirectory interface {
	GetPosition(userID int64) (Position, error)
}

// Invalidator drops cached effective sets after a grant mutation.
type Invalidator interface {
	InvalidateUser(userID int64)
}

// Publisher emits grant audit events to the side channels.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service owns grant mutations and effective-permission queries.
type Service struct {
	repo      Repository
	directory UserDirectory
	resolver  *Resolver
	policy    *PolicyTable
	cache     Invalidator
	bus       Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, directory UserDirectory, policy *PolicyTable, cache Invalidator, bus Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		resolver:  NewResolver(policy),
		policy:    policy,
		cache:     cache,
		bus:       bus,
		logger:    logger,
	}
}

// AttachCache wires the session cache in after construction. The cache's
// set resolver is this service, so the two are built in sequence during
// startup wiring.
func (s *Service) AttachCache(cache Invalidator) {
	s.cache = cache
}

// CreateGrant records a new grant or revocation. The new row shadows any
// earlier grant for the same (user, permission) during resolution.
func (s *Service) CreateGrant(dto CreateGrantDTO, grantedBy int64) (*Grant, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("grant validation failed", "error", err, "user_id", dto.UserID)
		return nil, err
	}

	perm, err := ParsePermission(dto.Permission)
	if err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeUnknownPermission)
	}

	grant := &Grant{
		UserID:     dto.UserID,
		Permission: perm,
		Granted:    dto.Granted,
		GrantedBy:  grantedBy,
		GrantedAt:  time.Now(),
		ExpiresAt:  dto.ExpiresAt,
		Reason:     dto.Reason,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.CreateGrant(grant); err != nil {
		s.logger.Error("failed to create grant", "error", err, "user_id", dto.UserID, "permission", perm)
		return nil, internal.NewInternalError("failed to create permission grant", err)
	}

	if s.cache != nil {
		s.cache.InvalidateUser(grant.UserID)
	}

	if s.bus != nil {
		ev := events.NewGrantCreatedEvent(grant.ID, grant.UserID, string(grant.Permission), grant.Granted, grantedBy)
		if err := s.bus.Publish(context.Background(), ev); err != nil {
			s.logger.Error("failed to publish grant audit event", "error", err, "grant_id", grant.ID)
		}
	}

	s.logger.Info("permission grant recorded",
		"grant_id", grant.ID,
		"user_id", grant.UserID,
		"permission", grant.Permission,
		"granted", grant.Granted,
		"granted_by", grantedBy)

	return grant, nil
}

// GrantsFor lists every grant row for a user, including inert expired ones.
func (s *Service) GrantsFor(userID int64) ([]Grant, error) {
	grants, err := s.repo.GetGrantsForUser(userID)
	if err != nil {
		s.logger.Error("failed to load grants", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to load permission grants", err)
	}
	return grants, nil
}

// EffectivePermissions resolves a user's full permission view: position
// defaults, custom grants, and the merged effective set.
func (s *Service) EffectivePermissions(userID int64) (*EffectivePermissionsView, error) {
	position, err := s.directory.GetPosition(userID)
	if err != nil {
		s.logger.Error("failed to resolve position", "error", err, "user_id", userID)
		return nil, internal.NewNotFoundError("user not found", internal.ErrCodeGrantNotFound).WithCause(err)
	}

	grants, err := s.repo.GetGrantsForUser(userID)
	if err != nil {
		s.logger.Error("failed to load grants for resolution", "error", err, "user_id", userID)
		return nil, internal.NewExternalError("permission resolution unavailable", err)
	}

	now := time.Now()
	effective := s.resolver.Resolve(position, grants, now)

	customs := make([]CustomPermissionView, 0, len(grants))
	for _, g := range grants {
		customs = append(customs, CustomPermissionView{
			Permission: g.Permission,
			Granted:    g.Granted,
			GrantedAt:  g.GrantedAt,
			ExpiresAt:  g.ExpiresAt,
			Reason:     g.Reason,
		})
	}

	return &EffectivePermissionsView{
		Position:             position,
		DefaultPermissions:   s.policy.DefaultsFor(position).Values(),
		CustomPermissions:    customs,
		EffectivePermissions: effective.Values(),
	}, nil
}

// ResolveSet is the narrow variant used by the session cache: just the
// effective set for a user at now.
func (s *Service) ResolveSet(userID int64) (Set, error) {
	position, err := s.directory.GetPosition(userID)
	if err != nil {
		return nil, err
	}
	grants, err := s.repo.GetGrantsForUser(userID)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(position, grants, time.Now()), nil
}
