package accessrequest

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/clinic-access/internal"
	"github.com/frahmantamala/clinic-access/internal/core/events"
	"github.com/frahmantamala/clinic-access/internal/permission"
)

// Repository defines the data access methods for permission requests.
type Repository interface {
	Create(req *Request) error
	GetByID(id int64) (*Request, error)
	List(status *Status, limit, offset int) ([]*Request, error)
	// ReviewPending atomically moves a PENDING request to a terminal status
	// and stamps the reviewer. Returns false when the request was not
	// pending anymore (or never existed), without writing anything.
	ReviewPending(id int64, reviewerID int64, status Status, note *string, reviewedAt time.Time) (bool, error)
}

// GrantCreator records the companion grant on approval. Implemented by the
// permission service so grant validation and cache invalidation apply.
type GrantCreator interface {
	CreateGrant(dto permission.CreateGrantDTO, grantedBy int64) (*permission.Grant, error)
}

// Publisher emits audit/notification events to the external side channels.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service handles the permission request workflow
type Service struct {
	repo   Repository
	grants GrantCreator
	bus    Publisher
	logger *slog.Logger
}

// NewService creates a new access request service
func NewService(repo Repository, grants GrantCreator, bus Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		grants: grants,
		bus:    bus,
		logger: logger,
	}
}

// Create files a new PENDING request for the requester.
func (s *Service) Create(requesterID int64, dto CreateRequestDTO) (*Request, error) {
	if requesterID <= 0 {
		return nil, internal.ErrIdentityRequired
	}

	if err := dto.Validate(); err != nil {
		s.logger.Error("request validation failed", "error", err, "requester_id", requesterID)
		return nil, err
	}

	perm, err := permission.ParsePermission(dto.Permission)
	if err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeUnknownPermission)
	}

	req := &Request{
		RequesterID: requesterID,
		Permission:  perm,
		Reason:      dto.Reason,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.repo.Create(req); err != nil {
		s.logger.Error("failed to create permission request", "error", err, "requester_id", requesterID)
		return nil, internal.NewInternalError("failed to create permission request", err)
	}

	s.logger.Info("permission request created",
		"request_id", req.ID,
		"requester_id", requesterID,
		"permission", perm)

	return req, nil
}

// Review terminates a PENDING request exactly once. The PENDING→terminal
// transition is a compare-and-set at the storage layer: of two concurrent
// reviews one wins and the loser gets a conflict, never a silent overwrite.
//
// On approval the companion grant is created after the status flip. If grant
// creation then fails, the request deliberately stays APPROVED: the error is
// surfaced loudly for operator remediation (re-issuing the grant) instead of
// re-opening a review the reviewer already made.
func (s *Service) Review(ctx context.Context, requestID, reviewerID int64, dto ReviewRequestDTO) (*Request, error) {
	if reviewerID <= 0 {
		s.logger.Warn("review rejected: no reviewer identity", "request_id", requestID)
		return nil, internal.ErrReviewerRequired
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(requestID)
	if err != nil {
		s.logger.Error("request not found for review", "error", err, "request_id", requestID)
		return nil, internal.ErrRequestNotFound
	}

	if !req.CanBeReviewed() {
		s.logger.Warn("cannot review request in current status",
			"request_id", requestID,
			"current_status", req.Status)
		return nil, internal.ErrRequestAlreadyFinal
	}

	approved := *dto.Approved
	status := StatusRejected
	if approved {
		status = StatusApproved
	}
	reviewedAt := time.Now()

	ok, err := s.repo.ReviewPending(requestID, reviewerID, status, dto.ReviewNote, reviewedAt)
	if err != nil {
		s.logger.Error("failed to update request status", "error", err, "request_id", requestID)
		return nil, internal.NewInternalError("failed to review permission request", err)
	}
	if !ok {
		// lost the race: someone else reviewed between the read and the CAS
		current, gerr := s.repo.GetByID(requestID)
		if gerr != nil || current == nil {
			return nil, internal.ErrRequestNotFound
		}
		s.logger.Warn("concurrent review detected",
			"request_id", requestID,
			"reviewer_id", reviewerID,
			"winning_status", current.Status)
		return nil, internal.ErrRequestAlreadyFinal
	}

	req.Status = status
	req.ReviewerID = &reviewerID
	req.ReviewedAt = &reviewedAt
	req.ReviewNote = dto.ReviewNote
	req.UpdatedAt = reviewedAt

	if approved {
		grantDTO := permission.CreateGrantDTO{
			UserID:     req.RequesterID,
			Permission: string(req.Permission),
			Granted:    true,
			Reason:     dto.ReviewNote,
		}
		if _, err := s.grants.CreateGrant(grantDTO, reviewerID); err != nil {
			// the request stays approved; an approved request without its
			// grant is a fatal inconsistency the operator must remediate
			s.logger.Error("approved request is missing its companion grant",
				"request_id", requestID,
				"requester_id", req.RequesterID,
				"permission", req.Permission,
				"reviewer_id", reviewerID,
				"error", err)
			appErr := internal.NewInternalError(
				"request approved but grant creation failed; manual remediation required", err)
			appErr.Code = internal.ErrCodeGrantNotRecorded
			return nil, appErr
		}
	}

	s.publishReviewOutcome(ctx, req, reviewerID, approved)

	s.logger.Info("permission request reviewed",
		"request_id", requestID,
		"reviewer_id", reviewerID,
		"approved", approved)

	return req, nil
}

// List is a pure read over stored requests, optionally filtered by status.
func (s *Service) List(status *Status, limit, offset int) ([]*Request, error) {
	requests, err := s.repo.List(status, limit, offset)
	if err != nil {
		s.logger.Error("failed to list permission requests", "error", err)
		return nil, internal.NewInternalError("failed to list permission requests", err)
	}
	return requests, nil
}

// GetByID retrieves a single request.
func (s *Service) GetByID(id int64) (*Request, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrRequestNotFound
	}
	return req, nil
}

func (s *Service) publishReviewOutcome(ctx context.Context, req *Request, reviewerID int64, approved bool) {
	if s.bus == nil {
		return
	}

	reviewed := events.NewRequestReviewedEvent(req.ID, req.RequesterID, reviewerID, string(req.Permission), approved)
	if err := s.bus.Publish(ctx, reviewed); err != nil {
		s.logger.Error("failed to publish review audit event", "error", err, "request_id", req.ID)
	}

	if approved {
		notify := events.NewRequesterNotifiedEvent(req.ID, req.RequesterID, string(req.Permission), approved)
		if err := s.bus.Publish(ctx, notify); err != nil {
			s.logger.Error("failed to publish requester notification", "error", err, "request_id", req.ID)
		}
	}
}
