package notification

import (
	"context"
	stderrors "errors"
	"log/slog"

	errors "github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/pushgateway"
	"github.com/frahmantamala/vehicle-permit/internal/user"
)

// UserDirectory resolves push targets. Misses are reported as errors.ErrUserNotFound.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByNIK(ctx context.Context, nik string) (*user.User, error)
	UpdateDeviceToken(ctx context.Context, id int64, token string) error
}

// Result reports whether a push left the process. It is never an error.
type Result struct {
	Delivered bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
}

type Service struct {
	users  UserDirectory
	sender pushgateway.Sender
	logger *slog.Logger
}

func NewService(users UserDirectory, sender pushgateway.Sender, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:  users,
		sender: sender,
		logger: logger,
	}
}

// Notify sends one push to userID's registered device. Unknown users, users
// without a token and delivery failures all come back as Delivered=false.
func (s *Service) Notify(ctx context.Context, userID int64, title, body string, data map[string]string) Result {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			s.logger.Warn("push skipped: user not found", "user_id", userID)
		} else {
			s.logger.Error("push skipped: user lookup failed", "user_id", userID, "error", err)
		}
		return Result{}
	}

	if !u.HasDeviceToken() {
		s.logger.Info("push skipped: no device token", "user_id", userID)
		return Result{}
	}

	messageID, err := s.sender.Send(ctx, pushgateway.Message{
		UserID: u.ID,
		Token:  *u.DeviceToken,
		Title:  title,
		Body:   body,
		Data:   data,
	})
	if err != nil {
		s.logger.Warn("push delivery failed",
			"user_id", userID,
			"adapter", s.sender.Name(),
			"error", err)
		return Result{}
	}

	s.logger.Info("push delivered",
		"user_id", userID,
		"adapter", s.sender.Name(),
		"message_id", messageID)

	return Result{Delivered: true, MessageID: messageID}
}

// RegisterDeviceToken replaces the caller's push token. An empty token is stored as is.
// A user that no longer exists reports false without an error.
func (s *Service) RegisterDeviceToken(ctx context.Context, userID int64, token string) (bool, error) {
	if err := s.users.UpdateDeviceToken(ctx, userID, token); err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			s.logger.Warn("device token not updated: user not found", "user_id", userID)
			return false, nil
		}
		return false, errors.NewInternalError("Failed to update device token", err)
	}
	s.logger.Info("device token updated", "user_id", userID)
	return true, nil
}

// Deliver adapts Notify to the worker pool.
func (s *Service) Deliver(ctx context.Context, job pushgateway.Job) {
	s.Notify(ctx, job.UserID, job.Title, job.Body, job.Data)
}
