package notification

import (
	"context"
	"log/slog"
	"net/http"

	errors "github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/core/common/validation"
	"github.com/frahmantamala/vehicle-permit/internal/transport"
	"github.com/frahmantamala/vehicle-permit/pkg/logger"
)

type ServiceAPI interface {
	Notify(ctx context.Context, userID int64, title, body string, data map[string]string) Result
	RegisterDeviceToken(ctx context.Context, userID int64, token string) (bool, error)
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

type SendDTO struct {
	UserID int64             `json:"user_id"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

func (dto SendDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("user_id", dto.UserID).Required()
	v.Field("title", dto.Title).Required().MaxLength(200)
	v.Field("body", dto.Body).Required().MaxLength(1000)
	return v.Validate()
}

// TokenDTO carries the caller's device token. The field must be present but may be empty.
type TokenDTO struct {
	FCMToken *string `json:"fcm_token"`
}

func (dto TokenDTO) Validate() *errors.AppError {
	if dto.FCMToken == nil {
		return errors.NewValidationFieldError("fcm_token", "fcm_token is required", errors.ErrCodeValidationFailed)
	}
	return nil
}

// Send handles POST /notifications/send
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var dto SendDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if appErr := dto.Validate(); appErr != nil {
		h.WriteAppError(w, r, appErr)
		return
	}

	result := h.Service.Notify(r.Context(), dto.UserID, dto.Title, dto.Body, dto.Data)
	h.WriteJSON(w, http.StatusOK, result)
}

// UpdateToken handles PUT /notifications/token
func (h *Handler) UpdateToken(w http.ResponseWriter, r *http.Request) {
	principal, ok := errors.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, r, errors.ErrTokenInvalidOrExpired)
		return
	}

	var dto TokenDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if appErr := dto.Validate(); appErr != nil {
		h.WriteAppError(w, r, appErr)
		return
	}

	updated, err := h.Service.RegisterDeviceToken(r.Context(), principal.UserID, *dto.FCMToken)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]bool{"success": updated})
}
