package permission_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/clinic-access/internal/permission"
)

var _ = Describe("PolicyTable", func() {
	Describe("NewPolicyTable", func() {
		Context("with a complete valid mapping", func() {
			It("should build the table", func() {
				entries := map[permission.Position][]permission.Permission{
					permission.PositionDoctor:       {permission.HandoverView},
					permission.PositionNurse:        {permission.HandoverView},
					permission.PositionReceptionist: {permission.ScheduleView},
					permission.PositionManager:      {permission.HRManage},
					permission.PositionAdmin:        {permission.UsersManage},
				}

				table, err := permission.NewPolicyTable(entries)

				Expect(err).ToNot(HaveOccurred())
				Expect(table.DefaultsFor(permission.PositionAdmin).Has(permission.UsersManage)).To(BeTrue())
			})
		})

		Context("with a missing position entry", func() {
			It("should report the position without an entry", func() {
				entries := map[permission.Position][]permission.Permission{
					permission.PositionDoctor:       {permission.HandoverView},
					permission.PositionNurse:        {permission.HandoverView},
					permission.PositionReceptionist: {permission.ScheduleView},
					permission.PositionManager:      {permission.HRManage},
					// ADMIN missing
				}

				_, err := permission.NewPolicyTable(entries)

				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("ADMIN has no policy entry"))
			})
		})

		Context("with an unknown position key", func() {
			It("should reject the entry", func() {
				entries := map[permission.Position][]permission.Permission{
					permission.PositionDoctor:       {permission.HandoverView},
					permission.PositionNurse:        {permission.HandoverView},
					permission.PositionReceptionist: {permission.ScheduleView},
					permission.PositionManager:      {permission.HRManage},
					permission.PositionAdmin:        {permission.UsersManage},
					permission.Position("JANITOR"):  {permission.HandoverView},
				}

				_, err := permission.NewPolicyTable(entries)

				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("unknown position"))
			})
		})

		Context("with an unknown permission in an entry", func() {
			It("should reject the permission", func() {
				entries := map[permission.Position][]permission.Permission{
					permission.PositionDoctor:       {permission.Permission("TELEPORT")},
					permission.PositionNurse:        {permission.HandoverView},
					permission.PositionReceptionist: {permission.ScheduleView},
					permission.PositionManager:      {permission.HRManage},
					permission.PositionAdmin:        {permission.UsersManage},
				}

				_, err := permission.NewPolicyTable(entries)

				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("unknown permission"))
			})
		})

		Context("with a duplicated permission in an entry", func() {
			It("should flag the authoring error", func() {
				entries := map[permission.Position][]permission.Permission{
					permission.PositionDoctor:       {permission.HandoverView, permission.HandoverView},
					permission.PositionNurse:        {permission.HandoverView},
					permission.PositionReceptionist: {permission.ScheduleView},
					permission.PositionManager:      {permission.HRManage},
					permission.PositionAdmin:        {permission.UsersManage},
				}

				_, err := permission.NewPolicyTable(entries)

				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("duplicate permission"))
			})
		})
	})

	Describe("DefaultsFor", func() {
		It("should return an empty set rather than failing for an unmapped position", func() {
			table := permission.DefaultPolicy()

			result := table.DefaultsFor(permission.Position("UNKNOWN"))

			Expect(result.Values()).To(BeEmpty())
		})

		It("should return an independent copy on every call", func() {
			table := permission.DefaultPolicy()

			first := table.DefaultsFor(permission.PositionNurse)
			first.Add(permission.UsersManage)

			second := table.DefaultsFor(permission.PositionNurse)
			Expect(second.Has(permission.UsersManage)).To(BeFalse())
		})
	})

	Describe("DefaultPolicy", func() {
		It("should construct without panicking", func() {
			Expect(func() { permission.DefaultPolicy() }).ToNot(Panic())
		})

		It("should give USERS_MANAGE to admins only", func() {
			table := permission.DefaultPolicy()

			for _, pos := range permission.Positions {
				has := table.DefaultsFor(pos).Has(permission.UsersManage)
				Expect(has).To(Equal(pos == permission.PositionAdmin), "position %s", pos)
			}
		})

		It("should not give INVENTORY_MANAGE to receptionists", func() {
			table := permission.DefaultPolicy()

			Expect(table.DefaultsFor(permission.PositionReceptionist).Has(permission.InventoryManage)).To(BeFalse())
		})
	})
})
