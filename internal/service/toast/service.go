package toast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"internship-portal/internal/domain"
)

// Toaster surfaces short-lived feedback to the acting user.
type Toaster interface {
	Toast(ctx context.Context, actor domain.Recipient, message string, severity domain.Severity) error
}

type Payload struct {
	Message   string          `json:"message"`
	Severity  domain.Severity `json:"severity"`
	CreatedAt time.Time       `json:"created_at"`
}

type logToaster struct {
	log *logrus.Logger
}

func NewLogToaster(log *logrus.Logger) Toaster {
	return &logToaster{log: log}
}

func (t *logToaster) Toast(ctx context.Context, actor domain.Recipient, message string, severity domain.Severity) error {
	entry := t.log.WithFields(logrus.Fields{
		"actor_id":   actor.ID,
		"actor_type": actor.Type,
		"severity":   severity,
	})

	switch severity {
	case domain.SeverityError:
		entry.Error(message)
	case domain.SeverityWarning:
		entry.Warn(message)
	default:
		entry.Info(message)
	}
	return nil
}

type redisToaster struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisToaster publishes toasts on <prefix>:<actor type>:<actor id> so the
// UI can subscribe per session.
func NewRedisToaster(client *redis.Client, prefix string, timeout time.Duration) Toaster {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &redisToaster{client: client, prefix: prefix, timeout: timeout}
}

func Channel(prefix string, actor domain.Recipient) string {
	return fmt.Sprintf("%s:%s:%s", prefix, actor.Type, actor.ID)
}

func (t *redisToaster) Toast(ctx context.Context, actor domain.Recipient, message string, severity domain.Severity) error {
	payload, err := json.Marshal(Payload{
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if err := t.client.Publish(ctx, Channel(t.prefix, actor), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish toast: %w", err)
	}
	return nil
}
