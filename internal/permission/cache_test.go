package permission_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/clinic-access/internal/permission"
)

type mockIdentitySource struct {
	identities map[string]permission.Identity
	err        error
	calls      int32
}

func (m *mockIdentitySource) IdentityForToken(ctx context.Context, token string) (permission.Identity, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.err != nil {
		return permission.Identity{}, m.err
	}
	identity, ok := m.identities[token]
	if !ok {
		return permission.Identity{}, errors.New("unknown token")
	}
	return identity, nil
}

type mockSetResolver struct {
	mu      sync.Mutex
	sets    map[int64]permission.Set
	err     error
	calls   int32
	release chan struct{} // when non-nil, ResolveSet blocks until closed
}

func (m *mockSetResolver) ResolveSet(userID int64) (permission.Set, error) {
	atomic.AddInt32(&m.calls, 1)
	m.mu.Lock()
	release := m.release
	m.mu.Unlock()
	if release != nil {
		<-release
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.sets[userID], nil
}

func (m *mockSetResolver) callCount() int32 {
	return atomic.LoadInt32(&m.calls)
}

var _ = Describe("Cache", func() {
	var (
		cache    *permission.Cache
		identity *mockIdentitySource
		resolver *mockSetResolver
		policy   *permission.PolicyTable
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		policy = permission.DefaultPolicy()
		identity = &mockIdentitySource{
			identities: map[string]permission.Identity{
				"token-nurse": {UserID: 7, Position: permission.PositionNurse},
				"token-admin": {UserID: 8, Position: permission.PositionAdmin},
			},
		}
		resolver = &mockSetResolver{
			sets: map[int64]permission.Set{
				7: permission.NewSet(permission.HandoverView, permission.InventoryManage),
				8: permission.NewSet(permission.UsersManage),
			},
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		cache = permission.NewCache(identity, resolver, policy, logger)
	})

	Describe("Fetch", func() {
		It("should resolve once and serve subsequent calls from the cache", func() {
			first, err := cache.Fetch(ctx, "token-nurse")
			Expect(err).ToNot(HaveOccurred())

			second, err := cache.Fetch(ctx, "token-nurse")
			Expect(err).ToNot(HaveOccurred())

			Expect(second).To(Equal(first))
			Expect(resolver.callCount()).To(Equal(int32(1)))
		})

		It("should resolve separately for different tokens", func() {
			nurseSet, err := cache.Fetch(ctx, "token-nurse")
			Expect(err).ToNot(HaveOccurred())

			adminSet, err := cache.Fetch(ctx, "token-admin")
			Expect(err).ToNot(HaveOccurred())

			Expect(nurseSet.Has(permission.InventoryManage)).To(BeTrue())
			Expect(adminSet.Has(permission.UsersManage)).To(BeTrue())
			Expect(resolver.callCount()).To(Equal(int32(2)))
		})

		It("should return a hard error when the token maps to no identity", func() {
			_, err := cache.Fetch(ctx, "token-stranger")

			Expect(err).To(HaveOccurred())
		})

		Context("when two fetches for the same token race", func() {
			It("should issue exactly one resolution shared by both callers", func() {
				release := make(chan struct{})
				resolver.release = release

				type outcome struct {
					set permission.Set
					err error
				}
				results := make(chan outcome, 2)

				for i := 0; i < 2; i++ {
					go func() {
						set, err := cache.Fetch(ctx, "token-nurse")
						results <- outcome{set: set, err: err}
					}()
				}

				// wait until the first resolution is in flight, then let
				// both callers through
				Eventually(resolver.callCount).Should(Equal(int32(1)))
				close(release)

				first := <-results
				second := <-results

				Expect(first.err).ToNot(HaveOccurred())
				Expect(second.err).ToNot(HaveOccurred())
				Expect(first.set).To(Equal(second.set))
				Expect(resolver.callCount()).To(Equal(int32(1)))
			})
		})

		Context("when resolution fails", func() {
			BeforeEach(func() {
				resolver.err = errors.New("grant store unreachable")
			})

			It("should fall back to the position's policy defaults", func() {
				set, err := cache.Fetch(ctx, "token-nurse")

				Expect(err).ToNot(HaveOccurred())
				Expect(set).To(Equal(policy.DefaultsFor(permission.PositionNurse)))
			})

			It("should record the failure for observability", func() {
				_, err := cache.Fetch(ctx, "token-nurse")
				Expect(err).ToNot(HaveOccurred())

				degraded, lastErr := cache.Degraded("token-nurse")
				Expect(degraded).To(BeTrue())
				Expect(lastErr).To(MatchError("grant store unreachable"))
			})

			It("should serve the real set again after recovery and invalidation", func() {
				_, err := cache.Fetch(ctx, "token-nurse")
				Expect(err).ToNot(HaveOccurred())

				resolver.err = nil
				cache.Invalidate("token-nurse")

				set, err := cache.Fetch(ctx, "token-nurse")
				Expect(err).ToNot(HaveOccurred())
				Expect(set.Has(permission.InventoryManage)).To(BeTrue())

				degraded, _ := cache.Degraded("token-nurse")
				Expect(degraded).To(BeFalse())
			})
		})
	})

	Describe("Invalidate", func() {
		It("should force the next fetch to recompute", func() {
			_, err := cache.Fetch(ctx, "token-nurse")
			Expect(err).ToNot(HaveOccurred())

			cache.Invalidate("token-nurse")

			_, err = cache.Fetch(ctx, "token-nurse")
			Expect(err).ToNot(HaveOccurred())
			Expect(resolver.callCount()).To(Equal(int32(2)))
		})
	})

	Describe("InvalidateUser", func() {
		It("should drop every session for the user but leave others cached", func() {
			_, err := cache.Fetch(ctx, "token-nurse")
			Expect(err).ToNot(HaveOccurred())
			_, err = cache.Fetch(ctx, "token-admin")
			Expect(err).ToNot(HaveOccurred())

			cache.InvalidateUser(7)

			_, err = cache.Fetch(ctx, "token-nurse")
			Expect(err).ToNot(HaveOccurred())
			_, err = cache.Fetch(ctx, "token-admin")
			Expect(err).ToNot(HaveOccurred())

			// nurse recomputed, admin still cached
			Expect(resolver.callCount()).To(Equal(int32(3)))
		})
	})
})
