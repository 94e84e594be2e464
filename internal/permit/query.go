package permit

import (
	"context"
	"math"
	"time"

	errors "github.com/frahmantamala/vehicle-permit/internal"
)

// StatusCounts is the per-status tally over a departure range.
type StatusCounts struct {
	Pending  int `json:"pending" db:"pending"`
	Approved int `json:"approved" db:"approved"`
	Rejected int `json:"rejected" db:"rejected"`
}

func (c StatusCounts) Total() int {
	return c.Pending + c.Approved + c.Rejected
}

// ReportRepository aggregates permit rows for reporting.
type ReportRepository interface {
	CountByStatus(ctx context.Context, start, end Date) (StatusCounts, error)
}

type Summary struct {
	Start        Date `json:"start"`
	End          Date `json:"end"`
	Total        int  `json:"total"`
	Pending      int  `json:"pending"`
	Approved     int  `json:"approved"`
	Rejected     int  `json:"rejected"`
	ApprovalRate int  `json:"approval_rate"`
}

// QueryService is the read side. It is role-agnostic; callers decide who may ask.
type QueryService struct {
	repo    Repository
	reports ReportRepository
	now     func() time.Time
}

func NewQueryService(repo Repository, reports ReportRepository) *QueryService {
	return &QueryService{
		repo:    repo,
		reports: reports,
		now:     time.Now,
	}
}

func (q *QueryService) WithClock(now func() time.Time) *QueryService {
	q.now = now
	return q
}

// Now is the clock range presets are resolved against.
func (q *QueryService) Now() time.Time {
	return q.now()
}

// ListAll returns every request, newest first.
func (q *QueryService) ListAll(ctx context.Context) ([]*PermitRequest, error) {
	return q.ListByFilter(ctx, Filter{})
}

func (q *QueryService) ListByFilter(ctx context.Context, filter Filter) ([]*PermitRequest, error) {
	permits, err := q.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list permit requests", err)
	}
	return permits, nil
}

// ListByDateRange filters on departure date, inclusive on both ends.
func (q *QueryService) ListByDateRange(ctx context.Context, start, end Date) ([]*PermitRequest, error) {
	if end.Before(start.Time) {
		return nil, ErrRangeReversed
	}
	permits, err := q.repo.ListByDepartureRange(ctx, start, end)
	if err != nil {
		return nil, errors.NewInternalError("Failed to list permit requests", err)
	}
	return permits, nil
}

func (q *QueryService) GetByID(ctx context.Context, id int64) (*PermitRequest, error) {
	p, err := q.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load permit request", err)
	}
	if p == nil {
		return nil, errors.ErrPermitNotFound
	}
	return p, nil
}

// Summarize counts requests per status for the range. ApprovalRate is the
// rounded share of approved requests among all of them.
func (q *QueryService) Summarize(ctx context.Context, start, end Date) (*Summary, error) {
	if end.Before(start.Time) {
		return nil, ErrRangeReversed
	}
	counts, err := q.reports.CountByStatus(ctx, start, end)
	if err != nil {
		return nil, errors.NewInternalError("Failed to build summary", err)
	}

	s := &Summary{
		Start:    start,
		End:      end,
		Total:    counts.Total(),
		Pending:  counts.Pending,
		Approved: counts.Approved,
		Rejected: counts.Rejected,
	}
	if s.Total > 0 {
		s.ApprovalRate = int(math.Round(float64(s.Approved) / float64(s.Total) * 100))
	}
	return s, nil
}
