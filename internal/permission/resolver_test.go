package permission_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/clinic-access/internal/permission"
)

func TestPermission(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Permission Module Suite")
}

var _ = Describe("Resolver", func() {
	var (
		resolver *permission.Resolver
		policy   *permission.PolicyTable
		now      time.Time
	)

	BeforeEach(func() {
		policy = permission.DefaultPolicy()
		resolver = permission.NewResolver(policy)
		now = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	})

	grantAt := func(id int64, perm permission.Permission, granted bool, at time.Time, expires *time.Time) permission.Grant {
		return permission.Grant{
			ID:         id,
			UserID:     1,
			Permission: perm,
			Granted:    granted,
			GrantedBy:  99,
			GrantedAt:  at,
			ExpiresAt:  expires,
		}
	}

	Describe("Resolve", func() {
		Context("with no grants", func() {
			It("should return exactly the policy defaults for every position", func() {
				for _, pos := range permission.Positions {
					result := resolver.Resolve(pos, nil, now)
					Expect(result).To(Equal(policy.DefaultsFor(pos)), "position %s", pos)
				}
			})
		})

		Context("when a grant adds a permission beyond the defaults", func() {
			It("should include the granted permission for a receptionist", func() {
				// Given
				grants := []permission.Grant{
					grantAt(1, permission.InventoryManage, true, now.Add(-time.Hour), nil),
				}

				// When
				result := resolver.Resolve(permission.PositionReceptionist, grants, now)

				// Then
				Expect(policy.DefaultsFor(permission.PositionReceptionist).Has(permission.InventoryManage)).To(BeFalse())
				Expect(result.Has(permission.InventoryManage)).To(BeTrue())
			})
		})

		Context("when a revocation removes a default permission", func() {
			It("should exclude the revoked permission for an admin", func() {
				// Given
				grants := []permission.Grant{
					grantAt(1, permission.UsersManage, false, now.Add(-time.Hour), nil),
				}

				// When
				result := resolver.Resolve(permission.PositionAdmin, grants, now)

				// Then
				Expect(policy.DefaultsFor(permission.PositionAdmin).Has(permission.UsersManage)).To(BeTrue())
				Expect(result.Has(permission.UsersManage)).To(BeFalse())
			})
		})

		Context("when a grant has expired", func() {
			It("should ignore an expired additive grant and fall back to the defaults", func() {
				// Given
				yesterday := now.Add(-24 * time.Hour)
				grants := []permission.Grant{
					grantAt(1, permission.HRView, true, now.Add(-48*time.Hour), &yesterday),
				}

				// When
				result := resolver.Resolve(permission.PositionNurse, grants, now)

				// Then
				Expect(result).To(Equal(policy.DefaultsFor(permission.PositionNurse)))
			})

			It("should reinstate a default permission when its revocation expires", func() {
				// Given
				yesterday := now.Add(-24 * time.Hour)
				grants := []permission.Grant{
					grantAt(1, permission.ScheduleView, false, now.Add(-48*time.Hour), &yesterday),
				}

				// When
				result := resolver.Resolve(permission.PositionDoctor, grants, now)

				// Then
				Expect(result.Has(permission.ScheduleView)).To(BeTrue())
			})

			It("should treat a grant expiring exactly now as expired", func() {
				// Given
				grants := []permission.Grant{
					grantAt(1, permission.InventoryManage, true, now.Add(-time.Hour), &now),
				}

				// When
				result := resolver.Resolve(permission.PositionReceptionist, grants, now)

				// Then
				Expect(result.Has(permission.InventoryManage)).To(BeFalse())
			})
		})

		Context("when several grants target the same permission", func() {
			It("should apply only the most recent grant by granted_at", func() {
				// Given: granted, then revoked later
				grants := []permission.Grant{
					grantAt(1, permission.ReportsView, true, now.Add(-3*time.Hour), nil),
					grantAt(2, permission.ReportsView, false, now.Add(-time.Hour), nil),
				}

				// When
				result := resolver.Resolve(permission.PositionNurse, grants, now)

				// Then
				Expect(result.Has(permission.ReportsView)).To(BeFalse())
			})

			It("should apply the latest grant regardless of slice order", func() {
				// Given: newest row listed first
				grants := []permission.Grant{
					grantAt(2, permission.ReportsView, true, now.Add(-time.Hour), nil),
					grantAt(1, permission.ReportsView, false, now.Add(-3*time.Hour), nil),
				}

				// When
				result := resolver.Resolve(permission.PositionNurse, grants, now)

				// Then
				Expect(result.Has(permission.ReportsView)).To(BeTrue())
			})

			It("should ignore a newer but expired grant in favor of an older active one", func() {
				// Given
				yesterday := now.Add(-24 * time.Hour)
				grants := []permission.Grant{
					grantAt(1, permission.ReportsView, true, now.Add(-72*time.Hour), nil),
					grantAt(2, permission.ReportsView, false, now.Add(-48*time.Hour), &yesterday),
				}

				// When
				result := resolver.Resolve(permission.PositionNurse, grants, now)

				// Then
				Expect(result.Has(permission.ReportsView)).To(BeTrue())
			})

			It("should break identical granted_at timestamps by the higher grant ID", func() {
				// Given: same instant, the later insert revokes
				at := now.Add(-time.Hour)
				grants := []permission.Grant{
					grantAt(10, permission.HandoverView, true, at, nil),
					grantAt(11, permission.HandoverView, false, at, nil),
				}

				// When
				result := resolver.Resolve(permission.PositionReceptionist, grants, now)

				// Then
				Expect(result.Has(permission.HandoverView)).To(BeFalse())
			})
		})

		Context("when every default permission is revoked", func() {
			It("should return an empty set", func() {
				// Given
				defaults := policy.DefaultsFor(permission.PositionReceptionist).Values()
				grants := make([]permission.Grant, 0, len(defaults))
				for i, perm := range defaults {
					grants = append(grants, grantAt(int64(i+1), perm, false, now.Add(-time.Hour), nil))
				}

				// When
				result := resolver.Resolve(permission.PositionReceptionist, grants, now)

				// Then
				Expect(result.Values()).To(BeEmpty())
			})
		})

		Context("determinism", func() {
			It("should return the same result for repeated calls with the same inputs", func() {
				grants := []permission.Grant{
					grantAt(1, permission.InventoryManage, true, now.Add(-time.Hour), nil),
					grantAt(2, permission.ScheduleManage, false, now.Add(-2*time.Hour), nil),
				}

				first := resolver.Resolve(permission.PositionNurse, grants, now)
				second := resolver.Resolve(permission.PositionNurse, grants, now)

				Expect(first).To(Equal(second))
			})

			It("should not mutate the policy defaults", func() {
				grants := []permission.Grant{
					grantAt(1, permission.UsersManage, true, now.Add(-time.Hour), nil),
				}

				resolver.Resolve(permission.PositionNurse, grants, now)

				Expect(policy.DefaultsFor(permission.PositionNurse).Has(permission.UsersManage)).To(BeFalse())
			})
		})
	})
})
