package export

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	errors "github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/permit"
	"github.com/frahmantamala/vehicle-permit/internal/transport"
	"github.com/frahmantamala/vehicle-permit/pkg/logger"
)

type ServiceAPI interface {
	ExportRange(ctx context.Context, start, end permit.Date, format string) (*Result, error)
	Now() time.Time
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// RequestDTO selects the departure range to export. FilterType defaults to
// custom, which needs both dates.
type RequestDTO struct {
	FilterType string `json:"filter_type"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Format     string `json:"format"`
}

func (dto RequestDTO) Range(now time.Time) (permit.Date, permit.Date, *errors.AppError) {
	filterType := dto.FilterType
	if filterType == "" {
		filterType = permit.RangeCustom
	}
	return permit.DateRangeDTO{
		FilterType: filterType,
		Start:      dto.Start,
		End:        dto.End,
	}.Resolve(now)
}

// Export handles POST /admin/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var dto RequestDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	start, end, appErr := dto.Range(h.Service.Now())
	if appErr != nil {
		h.WriteAppError(w, r, appErr)
		return
	}

	result, err := h.Service.ExportRange(r.Context(), start, end, dto.Format)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
