package permission_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/clinic-access/internal"
	"github.com/frahmantamala/clinic-access/internal/core/events"
	"github.com/frahmantamala/clinic-access/internal/permission"
)

type mockGrantRepository struct {
	grants      map[int64][]permission.Grant
	createError error
	getError    error
	nextID      int64
}

func newMockGrantRepository() *mockGrantRepository {
	return &mockGrantRepository{
		grants: make(map[int64][]permission.Grant),
		nextID: 1,
	}
}

func (m *mockGrantRepository) CreateGrant(grant *permission.Grant) error {
	if m.createError != nil {
		return m.createError
	}
	grant.ID = m.nextID
	m.nextID++
	m.grants[grant.UserID] = append(m.grants[grant.UserID], *grant)
	return nil
}

func (m *mockGrantRepository) GetGrantsForUser(userID int64) ([]permission.Grant, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.grants[userID], nil
}

type mockUserDirectory struct {
	positions map[int64]permission.Position
	err       error
}

func (m *mockUserDirectory) GetPosition(userID int64) (permission.Position, error) {
	if m.err != nil {
		return "", m.err
	}
	position, ok := m.positions[userID]
	if !ok {
		return "", errors.New("user not found")
	}
	return position, nil
}

type mockInvalidator struct {
	invalidated []int64
}

func (m *mockInvalidator) InvalidateUser(userID int64) {
	m.invalidated = append(m.invalidated, userID)
}

type mockEventPublisher struct {
	published []events.Event
	err       error
}

func (m *mockEventPublisher) Publish(ctx context.Context, event events.Event) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, event)
	return nil
}

var _ = Describe("PermissionService", func() {
	var (
		service     *permission.Service
		mockRepo    *mockGrantRepository
		directory   *mockUserDirectory
		invalidator *mockInvalidator
		publisher   *mockEventPublisher
	)

	BeforeEach(func() {
		mockRepo = newMockGrantRepository()
		directory = &mockUserDirectory{
			positions: map[int64]permission.Position{
				10: permission.PositionReceptionist,
				11: permission.PositionAdmin,
			},
		}
		invalidator = &mockInvalidator{}
		publisher = &mockEventPublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = permission.NewService(mockRepo, directory, permission.DefaultPolicy(), invalidator, publisher, logger)
	})

	Describe("CreateGrant", func() {
		Context("with a valid payload", func() {
			It("should record the grant with the granting admin stamped", func() {
				// Given
				dto := permission.CreateGrantDTO{
					UserID:     10,
					Permission: string(permission.InventoryManage),
					Granted:    true,
				}

				// When
				grant, err := service.CreateGrant(dto, 99)

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(grant.ID).To(BeNumerically(">", 0))
				Expect(grant.UserID).To(Equal(int64(10)))
				Expect(grant.Permission).To(Equal(permission.InventoryManage))
				Expect(grant.Granted).To(BeTrue())
				Expect(grant.GrantedBy).To(Equal(int64(99)))
				Expect(grant.GrantedAt).ToNot(BeZero())
			})

			It("should invalidate the user's cached sessions", func() {
				dto := permission.CreateGrantDTO{
					UserID:     10,
					Permission: string(permission.InventoryManage),
					Granted:    true,
				}

				_, err := service.CreateGrant(dto, 99)

				Expect(err).ToNot(HaveOccurred())
				Expect(invalidator.invalidated).To(Equal([]int64{10}))
			})

			It("should publish a grant audit event", func() {
				dto := permission.CreateGrantDTO{
					UserID:     10,
					Permission: string(permission.InventoryManage),
					Granted:    true,
				}

				_, err := service.CreateGrant(dto, 99)

				Expect(err).ToNot(HaveOccurred())
				Expect(publisher.published).To(HaveLen(1))
				Expect(publisher.published[0].EventType()).To(Equal(events.EventTypeGrantCreated))
			})

			It("should accept a revocation row", func() {
				dto := permission.CreateGrantDTO{
					UserID:     11,
					Permission: string(permission.UsersManage),
					Granted:    false,
				}

				grant, err := service.CreateGrant(dto, 99)

				Expect(err).ToNot(HaveOccurred())
				Expect(grant.Granted).To(BeFalse())
			})
		})

		Context("with an invalid payload", func() {
			It("should reject an unknown permission", func() {
				dto := permission.CreateGrantDTO{
					UserID:     10,
					Permission: "FLY_HELICOPTER",
					Granted:    true,
				}

				grant, err := service.CreateGrant(dto, 99)

				Expect(err).To(HaveOccurred())
				Expect(grant).To(BeNil())
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
				Expect(err.Error()).To(ContainSubstring("unknown permission"))
			})

			It("should reject a missing user id", func() {
				dto := permission.CreateGrantDTO{
					Permission: string(permission.InventoryManage),
					Granted:    true,
				}

				_, err := service.CreateGrant(dto, 99)

				Expect(err).To(HaveOccurred())
			})

			It("should reject an expiry in the past", func() {
				yesterday := time.Now().Add(-24 * time.Hour)
				dto := permission.CreateGrantDTO{
					UserID:     10,
					Permission: string(permission.InventoryManage),
					Granted:    true,
					ExpiresAt:  &yesterday,
				}

				_, err := service.CreateGrant(dto, 99)

				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("expires_at must be in the future"))
			})

			It("should not touch the cache or the bus on validation failure", func() {
				dto := permission.CreateGrantDTO{
					UserID:     10,
					Permission: "FLY_HELICOPTER",
					Granted:    true,
				}

				_, err := service.CreateGrant(dto, 99)

				Expect(err).To(HaveOccurred())
				Expect(invalidator.invalidated).To(BeEmpty())
				Expect(publisher.published).To(BeEmpty())
			})
		})

		Context("when the repository fails", func() {
			It("should surface an internal error", func() {
				mockRepo.createError = errors.New("connection refused")
				dto := permission.CreateGrantDTO{
					UserID:     10,
					Permission: string(permission.InventoryManage),
					Granted:    true,
				}

				_, err := service.CreateGrant(dto, 99)

				Expect(err).To(HaveOccurred())
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
			})
		})
	})

	Describe("EffectivePermissions", func() {
		It("should merge defaults with grants into the effective set", func() {
			// Given: a receptionist with an extra inventory grant
			_, err := service.CreateGrant(permission.CreateGrantDTO{
				UserID:     10,
				Permission: string(permission.InventoryManage),
				Granted:    true,
			}, 99)
			Expect(err).ToNot(HaveOccurred())

			// When
			view, err := service.EffectivePermissions(10)

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(view.Position).To(Equal(permission.PositionReceptionist))
			Expect(view.DefaultPermissions).ToNot(ContainElement(permission.InventoryManage))
			Expect(view.CustomPermissions).To(HaveLen(1))
			Expect(view.EffectivePermissions).To(ContainElement(permission.InventoryManage))
		})

		It("should return a not-found error for an unknown user", func() {
			_, err := service.EffectivePermissions(404)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(404))
		})

		It("should report resolution unavailability when the grant store fails", func() {
			mockRepo.getError = errors.New("connection refused")

			_, err := service.EffectivePermissions(10)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeExternal))
		})
	})

	Describe("ResolveSet", func() {
		It("should reflect revocations against the defaults", func() {
			_, err := service.CreateGrant(permission.CreateGrantDTO{
				UserID:     11,
				Permission: string(permission.UsersManage),
				Granted:    false,
			}, 99)
			Expect(err).ToNot(HaveOccurred())

			set, err := service.ResolveSet(11)

			Expect(err).ToNot(HaveOccurred())
			Expect(set.Has(permission.UsersManage)).To(BeFalse())
			Expect(set.Has(permission.HandoverView)).To(BeTrue())
		})
	})
})
