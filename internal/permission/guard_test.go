package permission_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/clinic-access/internal/permission"
)

var _ = Describe("Set", func() {
	Describe("Has", func() {
		It("should report membership", func() {
			set := permission.NewSet(permission.HandoverView, permission.ScheduleView)

			Expect(set.Has(permission.HandoverView)).To(BeTrue())
			Expect(set.Has(permission.UsersManage)).To(BeFalse())
		})

		It("should return false for anything on an empty set", func() {
			set := permission.NewSet()

			Expect(set.Has(permission.HandoverView)).To(BeFalse())
		})
	})

	Describe("HasAny", func() {
		It("should pass when at least one permission is held", func() {
			set := permission.NewSet(permission.ScheduleView)

			Expect(set.HasAny(permission.UsersManage, permission.ScheduleView)).To(BeTrue())
		})

		It("should fail when none are held", func() {
			set := permission.NewSet(permission.ScheduleView)

			Expect(set.HasAny(permission.UsersManage, permission.HRManage)).To(BeFalse())
		})

		It("should fail for an empty query", func() {
			set := permission.NewSet(permission.ScheduleView)

			Expect(set.HasAny()).To(BeFalse())
		})
	})

	Describe("HasAll", func() {
		It("should pass only when every permission is held", func() {
			set := permission.NewSet(permission.ScheduleView, permission.ScheduleManage)

			Expect(set.HasAll(permission.ScheduleView, permission.ScheduleManage)).To(BeTrue())
			Expect(set.HasAll(permission.ScheduleView, permission.UsersManage)).To(BeFalse())
		})
	})

	Describe("Values", func() {
		It("should return a sorted slice without duplicates", func() {
			set := permission.NewSet(permission.ScheduleView, permission.HandoverView, permission.ScheduleView)

			Expect(set.Values()).To(Equal([]permission.Permission{
				permission.HandoverView,
				permission.ScheduleView,
			}))
		})
	})

	Describe("Clone", func() {
		It("should not share storage with the original", func() {
			original := permission.NewSet(permission.ScheduleView)
			clone := original.Clone()
			clone.Add(permission.UsersManage)
			clone.Remove(permission.ScheduleView)

			Expect(original.Has(permission.ScheduleView)).To(BeTrue())
			Expect(original.Has(permission.UsersManage)).To(BeFalse())
		})
	})
})
