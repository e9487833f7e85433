package internal_test

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/clinic-access/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestInternal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal Suite")
}

var _ = Describe("request context helpers", func() {
	Describe("UserIDFromContext", func() {
		It("returns the stamped user ID", func() {
			ctx := internal.ContextWithUserID(context.Background(), int64(42))

			Expect(internal.UserIDFromContext(ctx)).To(Equal(int64(42)))
		})

		It("returns zero when no identity was stamped", func() {
			Expect(internal.UserIDFromContext(context.Background())).To(Equal(int64(0)))
		})

		It("returns zero for a nil context", func() {
			Expect(internal.UserIDFromContext(nil)).To(Equal(int64(0)))
		})
	})

	Describe("WithTimeout", func() {
		It("applies the requested timeout", func() {
			ctx, cancel := internal.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			deadline, ok := ctx.Deadline()
			Expect(ok).To(BeTrue())
			Expect(deadline).To(BeTemporally("~", time.Now().Add(2*time.Second), 500*time.Millisecond))
		})

		It("falls back to five seconds for a non-positive duration", func() {
			ctx, cancel := internal.WithTimeout(context.Background(), 0)
			defer cancel()

			deadline, ok := ctx.Deadline()
			Expect(ok).To(BeTrue())
			Expect(deadline).To(BeTemporally("~", time.Now().Add(5*time.Second), 500*time.Millisecond))
		})
	})
})
