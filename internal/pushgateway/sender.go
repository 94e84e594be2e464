package pushgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Message is one push addressed to a device token.
type Message struct {
	UserID int64
	Token  string
	Title  string
	Body   string
	Data   map[string]string
}

// Sender delivers a message and returns the provider's message id.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) (string, error)
}

type FCMConfig struct {
	PushURL   string
	ServerKey string
	Timeout   time.Duration
}

// FCMSender posts messages to an FCM-compatible HTTP endpoint.
type FCMSender struct {
	pushURL   string
	serverKey string
	client    *http.Client
	logger    *slog.Logger
}

func NewFCMSender(config FCMConfig, logger *slog.Logger) *FCMSender {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FCMSender{
		pushURL:   config.PushURL,
		serverKey: config.ServerKey,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

func (s *FCMSender) Name() string { return "fcm" }

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmRequest struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmResponse struct {
	MessageID string `json:"message_id"`
	Name      string `json:"name"`
	Failure   int    `json:"failure"`
	Results   []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

func (s *FCMSender) Send(ctx context.Context, msg Message) (string, error) {
	payload, err := json.Marshal(fcmRequest{
		To:           msg.Token,
		Notification: fcmNotification{Title: msg.Title, Body: msg.Body},
		Data:         msg.Data,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.pushURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.serverKey != "" {
		req.Header.Set("Authorization", "key="+s.serverKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}

	var out fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode push response: %w", err)
	}

	switch {
	case len(out.Results) > 0 && out.Results[0].Error != "":
		return "", fmt.Errorf("push rejected: %s", out.Results[0].Error)
	case len(out.Results) > 0 && out.Results[0].MessageID != "":
		return out.Results[0].MessageID, nil
	case out.MessageID != "":
		return out.MessageID, nil
	case out.Name != "":
		return out.Name, nil
	}
	return "", fmt.Errorf("push response carried no message id")
}

// LogSender only logs the message. Used when no push endpoint is configured.
type LogSender struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger, now: time.Now}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(ctx context.Context, msg Message) (string, error) {
	s.logger.InfoContext(ctx, "push notification (simulated)",
		"user_id", msg.UserID,
		"title", msg.Title,
		"body", msg.Body,
		"data", msg.Data)
	return fmt.Sprintf("fcm_%d_%d", s.now().UnixMilli(), msg.UserID), nil
}

// NewSender picks the adapter by name; anything but "fcm" falls back to log.
func NewSender(adapter string, config FCMConfig, logger *slog.Logger) Sender {
	if adapter == "fcm" {
		return NewFCMSender(config, logger)
	}
	return NewLogSender(logger)
}
