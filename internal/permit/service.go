package permit

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/core/events"
)

// Repository interface defines the data access methods for permit requests.
// Lookups return (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, p *PermitRequest) error
	GetByID(ctx context.Context, id int64) (*PermitRequest, error)
	List(ctx context.Context, filter Filter) ([]*PermitRequest, error)
	ListByDepartureRange(ctx context.Context, start, end Date) ([]*PermitRequest, error)
	// Decide sets the outcome only while the row is still Pending and
	// reports whether it did.
	Decide(ctx context.Context, id int64, outcome Status, date Date, clock string) (bool, error)
}

// SubmissionPolicy gates who may file a permit for which NIK.
type SubmissionPolicy interface {
	CanSubmitFor(principal *errors.Principal, requesterNIK string) error
}

// Service runs the permit state machine: Pending to Disetujui or Ditolak, once.
type Service struct {
	repo      Repository
	policy    SubmissionPolicy
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, policy SubmissionPolicy, publisher events.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		policy:    policy,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for default approval stamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit validates and stores a new request in state Pending.
func (s *Service) Submit(ctx context.Context, principal *errors.Principal, dto CreatePermitDTO) (*PermitRequest, error) {
	if appErr := dto.Validate(); appErr != nil {
		s.logger.WarnContext(ctx, "permit validation failed", "error", appErr.GetDetailedMessage())
		return nil, appErr
	}

	p, err := dto.ToPermit()
	if err != nil {
		return nil, err
	}

	if s.policy != nil {
		if err := s.policy.CanSubmitFor(principal, p.NIK); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, errors.NewInternalError("Failed to create permit request", err)
	}

	s.logger.InfoContext(ctx, "permit submitted",
		"permit_id", p.ID,
		"nik", p.NIK,
		"departure_date", p.DepartureDate.String())

	s.publish(ctx, events.NewPermitCreatedEvent(p.ID, p.NIK, p.RequesterName, p.DepartureDate.String()))

	return p, nil
}

// Decide applies an HR/Admin outcome to a pending request. The check and the
// write happen in one conditional update so concurrent deciders cannot both win.
func (s *Service) Decide(ctx context.Context, principal *errors.Principal, id int64, dto DecideDTO) (*PermitRequest, error) {
	if principal == nil {
		return nil, errors.ErrTokenInvalidOrExpired
	}
	if !principal.Role.CanDecide() {
		s.logger.WarnContext(ctx, "decide denied: insufficient permissions",
			"permit_id", id,
			"user_id", principal.UserID,
			"role", principal.Role)
		return nil, errors.ErrInsufficientPermissions
	}

	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	outcome, date, clock := dto.Resolve(s.now())

	applied, err := s.repo.Decide(ctx, id, outcome, date, clock)
	if err != nil {
		return nil, errors.NewInternalError("Failed to update permit status", err)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load permit request", err)
	}
	if current == nil {
		return nil, errors.ErrPermitNotFound
	}
	if !applied {
		s.logger.WarnContext(ctx, "decide rejected: permit no longer pending",
			"permit_id", id,
			"current_status", current.Status)
		return nil, errors.ErrPermitNotPending
	}

	s.logger.InfoContext(ctx, "permit decided",
		"permit_id", id,
		"status", outcome,
		"decided_by", principal.UserID)

	s.publish(ctx, events.NewPermitDecidedEvent(current.ID, current.NIK, string(outcome), principal.UserID, date.String(), clock))

	return current, nil
}

// publish never fails the caller; delivery is best effort.
func (s *Service) publish(ctx context.Context, evt events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "event_type", evt.EventType(), "error", err)
	}
}
