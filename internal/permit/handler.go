package permit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	errors "github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/transport"
	"github.com/frahmantamala/vehicle-permit/pkg/logger"
)

type WorkflowAPI interface {
	Submit(ctx context.Context, principal *errors.Principal, dto CreatePermitDTO) (*PermitRequest, error)
	Decide(ctx context.Context, principal *errors.Principal, id int64, dto DecideDTO) (*PermitRequest, error)
}

type QueryAPI interface {
	ListAll(ctx context.Context) ([]*PermitRequest, error)
	ListByFilter(ctx context.Context, filter Filter) ([]*PermitRequest, error)
	ListByDateRange(ctx context.Context, start, end Date) ([]*PermitRequest, error)
	GetByID(ctx context.Context, id int64) (*PermitRequest, error)
	Summarize(ctx context.Context, start, end Date) (*Summary, error)
	Now() time.Time
}

type Handler struct {
	*transport.BaseHandler
	Workflow WorkflowAPI
	Query    QueryAPI
}

func NewHandler(workflow WorkflowAPI, query QueryAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Workflow:    workflow,
		Query:       query,
	}
}

type listResponse struct {
	Permits []*PermitRequest `json:"permits"`
	Total   int              `json:"total"`
}

func (h *Handler) writeList(w http.ResponseWriter, permits []*PermitRequest) {
	if permits == nil {
		permits = []*PermitRequest{}
	}
	h.WriteJSON(w, http.StatusOK, listResponse{Permits: permits, Total: len(permits)})
}

// CreatePermit handles POST /permits
func (h *Handler) CreatePermit(w http.ResponseWriter, r *http.Request) {
	principal, ok := errors.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, r, errors.ErrTokenInvalidOrExpired)
		return
	}

	var dto CreatePermitDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	p, err := h.Workflow.Submit(r.Context(), principal, dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, p)
}

// ListPermits handles GET /permits
func (h *Handler) ListPermits(w http.ResponseWriter, r *http.Request) {
	permits, err := h.Query.ListAll(r.Context())
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.writeList(w, permits)
}

// SearchPermits handles GET /permits/search?status=&nik=
func (h *Handler) SearchPermits(w http.ResponseWriter, r *http.Request) {
	filter, appErr := FilterFromQuery(r.URL.Query())
	if appErr != nil {
		h.WriteAppError(w, r, appErr)
		return
	}

	permits, err := h.Query.ListByFilter(r.Context(), filter)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.writeList(w, permits)
}

// ListPermitsByRange handles GET /permits/range?start=&end=&filter_type=
func (h *Handler) ListPermitsByRange(w http.ResponseWriter, r *http.Request) {
	start, end, appErr := DateRangeFromQuery(r.URL.Query()).Resolve(h.Query.Now())
	if appErr != nil {
		h.WriteAppError(w, r, appErr)
		return
	}

	permits, err := h.Query.ListByDateRange(r.Context(), start, end)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.writeList(w, permits)
}

// GetPermit handles GET /permits/{id}
func (h *Handler) GetPermit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.permitID(w, r)
	if !ok {
		return
	}

	p, err := h.Query.GetByID(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

// DecidePermit handles PATCH /permits/{id}/status. The decider is always the token holder.
func (h *Handler) DecidePermit(w http.ResponseWriter, r *http.Request) {
	principal, ok := errors.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, r, errors.ErrTokenInvalidOrExpired)
		return
	}

	id, ok := h.permitID(w, r)
	if !ok {
		return
	}

	var dto DecideDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	p, err := h.Workflow.Decide(r.Context(), principal, id, dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

// Summary handles GET /reports/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	start, end, appErr := DateRangeFromQuery(r.URL.Query()).Resolve(h.Query.Now())
	if appErr != nil {
		h.WriteAppError(w, r, appErr)
		return
	}

	summary, err := h.Query.Summarize(r.Context(), start, end)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) permitID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.WriteAppError(w, r, errors.NewValidationFieldError("id", "id must be a positive integer", errors.ErrCodeValidationFailed))
		return 0, false
	}
	return id, true
}
