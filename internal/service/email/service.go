package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/resend/resend-go/v3"
	"github.com/sirupsen/logrus"

	"internship-portal/internal/config"
	"internship-portal/internal/domain"
)

// Sender delivers a composed message. Implementations are the host's
// outbound collaborator; the lifecycle core never retries them.
type Sender interface {
	Send(ctx context.Context, msg domain.Message) error
}

// SenderFunc adapts a plain function to Sender.
type SenderFunc func(ctx context.Context, msg domain.Message) error

func (f SenderFunc) Send(ctx context.Context, msg domain.Message) error {
	return f(ctx, msg)
}

// NewSender picks the backend named by EMAIL_BACKEND.
func NewSender(cfg *config.Config, log *logrus.Logger) Sender {
	if cfg.EmailBackend == "resend" && cfg.ResendAPIKey != "" {
		return NewResendSender(cfg)
	}
	return NewLogSender(log)
}

type logSender struct {
	log *logrus.Logger
}

// NewLogSender writes messages to the log instead of delivering them.
func NewLogSender(log *logrus.Logger) Sender {
	return &logSender{log: log}
}

func (s *logSender) Send(ctx context.Context, msg domain.Message) error {
	s.log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("email sent")
	s.log.Debug(msg.Body)
	return nil
}

var layout = template.Must(template.ParseFS(templateFS, "templates/layout.html"))

type resendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(cfg *config.Config) Sender {
	return &resendSender{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail),
	}
}

func (s *resendSender) Send(ctx context.Context, msg domain.Message) error {
	if msg.To == "" {
		return fmt.Errorf("message has no recipient address")
	}

	html, err := RenderHTML(msg)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    html,
		Text:    msg.Body,
	}

	if _, err := s.client.Emails.Send(params); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

// RenderHTML wraps the plain-text body in the HTML layout, one paragraph per
// non-empty line.
func RenderHTML(msg domain.Message) (string, error) {
	var lines []string
	for _, line := range strings.Split(msg.Body, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	data := struct {
		Subject string
		Lines   []string
	}{
		Subject: msg.Subject,
		Lines:   lines,
	}

	var body bytes.Buffer
	if err := layout.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to execute email layout: %w", err)
	}
	return body.String(), nil
}
