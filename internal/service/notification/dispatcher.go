package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"internship-portal/internal/domain"
	"internship-portal/internal/metrics"
	"internship-portal/internal/pkg/i18n"
	"internship-portal/internal/repository"
	"internship-portal/internal/service/email"
	"internship-portal/internal/service/toast"
)

type DispatcherConfig struct {
	NotifRepo repository.NotificationRepository
	Catalog   *i18n.Catalog
	Locale    string
	Composer  *email.Composer
	Sender    email.Sender
	Toaster   toast.Toaster
	Metrics   *metrics.Metrics
	Logger    *logrus.Logger
	// Async sends messages in the background; failures then only reach the
	// log, the metrics and the toaster.
	Async bool
}

// Result reports what a dispatch produced. Warning holds a *domain.SendFailure
// when the message could not be sent synchronously.
type Result struct {
	Notification *domain.Notification `json:"notification,omitempty"`
	Message      *domain.Message      `json:"message,omitempty"`
	Warning      error                `json:"-"`
}

type Dispatcher struct {
	notifRepo repository.NotificationRepository
	catalog   *i18n.Catalog
	locale    string
	composer  *email.Composer
	sender    email.Sender
	toaster   toast.Toaster
	metrics   *metrics.Metrics
	log       *logrus.Logger
	async     bool
	wg        sync.WaitGroup
	now       func() time.Time
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	locale := cfg.Locale
	if locale == "" {
		locale = i18n.DefaultLocale
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.New()
	}

	return &Dispatcher{
		notifRepo: cfg.NotifRepo,
		catalog:   cfg.Catalog,
		locale:    locale,
		composer:  cfg.Composer,
		sender:    cfg.Sender,
		toaster:   cfg.Toaster,
		metrics:   cfg.Metrics,
		log:       log,
		async:     cfg.Async,
		now:       time.Now,
	}
}

// Dispatch turns an applied transition into its notification and message.
// Unmapped edges return an empty Result.
func (d *Dispatcher) Dispatch(ctx context.Context, entity *domain.Entity, from domain.Status, actor domain.Recipient, reason *string) (Result, error) {
	rule, ok := RuleFor(entity.Kind, from, entity.Status)
	if !ok {
		return Result{}, nil
	}

	vars := map[string]string{}
	if reason != nil {
		vars["reason"] = strings.TrimSpace(*reason)
	}

	return d.Notify(ctx, entity, rule, domain.Transition{From: from, To: entity.Status}, actor, vars)
}

// Notify stores the rule's notification and, when the rule asks for it, sends
// the composed message. The two steps fail independently.
func (d *Dispatcher) Notify(ctx context.Context, entity *domain.Entity, rule Rule, t domain.Transition, actor domain.Recipient, vars map[string]string) (Result, error) {
	recipient, contact := resolveRecipient(rule.Recipient, entity)
	rendered := d.vars(entity, t, actor, vars)

	entityID := entity.ID
	notif := &domain.Notification{
		RecipientID:     recipient.ID,
		RecipientType:   recipient.Type,
		Type:            rule.Type,
		Title:           i18n.Render(d.translate(rule.Key+".title"), rendered),
		Message:         i18n.Render(d.translate(rule.Key+".message"), rendered),
		RelatedEntityID: &entityID,
		CreatedAt:       d.now(),
	}

	if err := d.notifRepo.Create(ctx, notif); err != nil {
		return Result{}, fmt.Errorf("failed to create notification: %w", err)
	}
	d.metrics.RecordNotification(string(notif.Type))

	d.log.WithFields(logrus.Fields{
		"entity_id":    entity.ID,
		"kind":         entity.Kind,
		"type":         notif.Type,
		"recipient_id": recipient.ID,
	}).Debug("notification created")

	result := Result{Notification: notif}

	if !rule.SendMessage || d.composer == nil {
		return result, nil
	}

	composed, err := d.composer.Compose(entity.Kind, t, entity, rendered)
	if err != nil {
		d.log.WithError(err).WithField("entity_id", entity.ID).Warn("message not composed")
		return result, nil
	}

	to := contact
	if to == "" {
		to = recipient.ID
	}

	msg := domain.Message{
		To:        to,
		Subject:   composed.Subject,
		Body:      composed.Body,
		CreatedAt: d.now(),
	}
	result.Message = &msg

	if d.sender == nil {
		return result, nil
	}

	if d.async {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			_ = d.send(context.Background(), entity.ID, msg, actor)
		}()
		return result, nil
	}

	if failure := d.send(ctx, entity.ID, msg, actor); failure != nil {
		result.Warning = failure
	}
	return result, nil
}

// Wait blocks until background sends finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) send(ctx context.Context, entityID uuid.UUID, msg domain.Message, actor domain.Recipient) *domain.SendFailure {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("sender panicked: %v", r)
			}
		}()
		err = d.sender.Send(ctx, msg)
	}()

	d.metrics.RecordMessage(err == nil)
	if err == nil {
		return nil
	}

	d.log.WithError(err).WithFields(logrus.Fields{
		"entity_id": entityID,
		"to":        msg.To,
		"subject":   msg.Subject,
	}).Warn("message send failed")

	if d.toaster != nil {
		text := fmt.Sprintf("Saved, but the email to %s could not be sent", msg.To)
		if terr := d.toaster.Toast(ctx, actor, text, domain.SeverityWarning); terr != nil {
			d.log.WithError(terr).Debug("toast failed")
		}
	}

	return &domain.SendFailure{EntityID: entityID, To: msg.To, Err: err}
}

func (d *Dispatcher) translate(key string) string {
	if d.catalog == nil {
		return key
	}
	return d.catalog.Translate(d.locale, key)
}

func (d *Dispatcher) vars(entity *domain.Entity, t domain.Transition, actor domain.Recipient, extra map[string]string) map[string]string {
	out := make(map[string]string, len(entity.Attributes)+len(extra)+4)
	for k, v := range entity.Attributes {
		out[k] = v
	}
	out["name"] = email.DisplayName(entity)
	out["status"] = strings.ToLower(string(t.To))
	out["actor_id"] = actor.ID
	for k, v := range extra {
		out[k] = v
	}
	return out
}
