package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"internship-portal/internal/domain"
	"internship-portal/internal/metrics"
	"internship-portal/internal/repository"
	"internship-portal/internal/service/notification"
	"internship-portal/internal/service/toast"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, entity *domain.Entity, from domain.Status, actor domain.Recipient, reason *string) (notification.Result, error)
	Notify(ctx context.Context, entity *domain.Entity, rule notification.Rule, t domain.Transition, actor domain.Recipient, vars map[string]string) (notification.Result, error)
}

// Result is what a create or transition call hands back to the UI. Warnings
// are non-fatal: the entity change has already been applied.
type Result struct {
	Entity       *domain.Entity       `json:"entity"`
	From         domain.Status        `json:"from"`
	Notification *domain.Notification `json:"notification,omitempty"`
	Message      *domain.Message      `json:"message,omitempty"`
	Warnings     []error              `json:"-"`
}

type Service interface {
	CreateEntity(ctx context.Context, actor domain.Recipient, input domain.CreateEntityInput) (*Result, error)
	GetEntity(ctx context.Context, id uuid.UUID) (*domain.Entity, error)
	ListEntities(ctx context.Context, filter domain.EntityFilter) ([]domain.Entity, error)
	ApplyTransition(ctx context.Context, id uuid.UUID, actor domain.Recipient, input domain.TransitionInput) (*Result, error)
	AllowedTransitions(ctx context.Context, id uuid.UUID) ([]domain.Status, error)
	UpdateContent(ctx context.Context, id uuid.UUID, actor domain.Recipient, input domain.UpdateContentInput) (*domain.Entity, error)
	DeleteEntity(ctx context.Context, id uuid.UUID, actor domain.Recipient) error
	RemindDrafts(ctx context.Context, actor domain.Recipient, due string) ([]domain.Notification, error)
	SetStatsCache(cache StatsCache)
}

// StatsCache holds per-actor aggregates that go stale when an entity changes.
type StatsCache interface {
	Invalidate(ctx context.Context, actors ...domain.Recipient) error
}

type Options struct {
	SCADOfficeID      string
	SCADOfficeContact string
}

type service struct {
	entityRepo repository.EntityRepository
	dispatcher Dispatcher
	toaster    toast.Toaster
	metrics    *metrics.Metrics
	log        *logrus.Logger
	opts       Options
	stats      StatsCache
}

func NewService(
	entityRepo repository.EntityRepository,
	dispatcher Dispatcher,
	toaster toast.Toaster,
	m *metrics.Metrics,
	log *logrus.Logger,
	opts Options,
) Service {
	if log == nil {
		log = logrus.New()
	}
	return &service{
		entityRepo: entityRepo,
		dispatcher: dispatcher,
		toaster:    toaster,
		metrics:    m,
		log:        log,
		opts:       opts,
	}
}

func (s *service) SetStatsCache(cache StatsCache) {
	s.stats = cache
}

func (s *service) CreateEntity(ctx context.Context, actor domain.Recipient, input domain.CreateEntityInput) (*Result, error) {
	input.Kind = domain.EntityKind(strings.ToUpper(strings.TrimSpace(string(input.Kind))))
	s.applyDefaults(&input)

	entity, err := s.entityRepo.Create(ctx, input, actor.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(string(entity.Kind), string(domain.StatusNone), string(entity.Status))
	s.log.WithFields(logrus.Fields{
		"entity_id": entity.ID,
		"kind":      entity.Kind,
		"owner_id":  entity.OwnerID,
		"actor_id":  actor.ID,
	}).Info("entity created")

	result := &Result{Entity: entity, From: domain.StatusNone}
	s.dispatch(ctx, result, actor, nil)
	s.invalidate(ctx, entity)
	s.toast(ctx, actor, fmt.Sprintf("%s submitted", humanKind(entity.Kind)), domain.SeveritySuccess)

	return result, nil
}

// applyDefaults routes registrations and reports without an explicit
// reviewer to the SCAD office.
func (s *service) applyDefaults(input *domain.CreateEntityInput) {
	if input.Kind != domain.KindCompanyRegistration && input.Kind != domain.KindReport {
		return
	}
	if strings.TrimSpace(input.CounterpartyID) != "" || s.opts.SCADOfficeID == "" {
		return
	}

	input.CounterpartyID = s.opts.SCADOfficeID
	input.CounterpartyType = domain.ActorSCAD
	if input.CounterpartyContact == "" {
		input.CounterpartyContact = s.opts.SCADOfficeContact
	}
}

func (s *service) GetEntity(ctx context.Context, id uuid.UUID) (*domain.Entity, error) {
	return s.entityRepo.GetByID(ctx, id)
}

func (s *service) ListEntities(ctx context.Context, filter domain.EntityFilter) ([]domain.Entity, error) {
	filter.Kind = domain.EntityKind(strings.ToUpper(string(filter.Kind)))
	filter.Status = normalizeStatus(filter.Status)
	if filter.Kind != "" && filter.Status != domain.StatusNone && !domain.IsLegalStatus(filter.Kind, filter.Status) {
		return nil, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("%s is not a %s status", filter.Status, filter.Kind)}
	}
	return s.entityRepo.List(ctx, filter)
}

func (s *service) ApplyTransition(ctx context.Context, id uuid.UUID, actor domain.Recipient, input domain.TransitionInput) (*Result, error) {
	to := normalizeStatus(input.Status)
	if to == domain.StatusNone {
		return nil, &domain.ValidationError{Field: "status", Message: "status is required"}
	}

	entity, from, err := s.entityRepo.ApplyTransition(ctx, id, to, actor.ID, input.Reason)
	if err != nil {
		s.recordRefusal(id, err)
		return nil, err
	}

	s.metrics.RecordTransition(string(entity.Kind), string(from), string(to))
	s.log.WithFields(logrus.Fields{
		"entity_id": entity.ID,
		"kind":      entity.Kind,
		"from":      from,
		"to":        to,
		"actor_id":  actor.ID,
	}).Info("status changed")

	result := &Result{Entity: entity, From: from}
	s.dispatch(ctx, result, actor, input.Reason)
	s.invalidate(ctx, entity)
	s.toast(ctx, actor, fmt.Sprintf("%s is now %s", humanKind(entity.Kind), strings.ToLower(string(to))), domain.SeveritySuccess)

	return result, nil
}

func (s *service) AllowedTransitions(ctx context.Context, id uuid.UUID) ([]domain.Status, error) {
	entity, err := s.entityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.AllowedTransitions(entity.Kind, entity.Status), nil
}

func (s *service) UpdateContent(ctx context.Context, id uuid.UUID, actor domain.Recipient, input domain.UpdateContentInput) (*domain.Entity, error) {
	entity, err := s.entityRepo.UpdateContent(ctx, id, input.Attributes)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"entity_id": entity.ID,
		"actor_id":  actor.ID,
	}).Info("entity content updated")

	return entity, nil
}

func (s *service) DeleteEntity(ctx context.Context, id uuid.UUID, actor domain.Recipient) error {
	entity, err := s.entityRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.entityRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, entity)

	s.log.WithFields(logrus.Fields{
		"entity_id": id,
		"actor_id":  actor.ID,
	}).Info("draft deleted")
	s.toast(ctx, actor, "Draft deleted", domain.SeverityInfo)

	return nil
}

// RemindDrafts sends a deadline notification to the owner of every report
// still in draft.
func (s *service) RemindDrafts(ctx context.Context, actor domain.Recipient, due string) ([]domain.Notification, error) {
	if strings.TrimSpace(due) == "" {
		return nil, &domain.ValidationError{Field: "due", Message: "due is required"}
	}

	drafts, err := s.entityRepo.List(ctx, domain.EntityFilter{Kind: domain.KindReport, Status: domain.StatusDraft})
	if err != nil {
		return nil, err
	}

	sent := make([]domain.Notification, 0, len(drafts))
	for i := range drafts {
		draft := &drafts[i]
		t := domain.Transition{From: draft.Status, To: draft.Status}

		res, err := s.dispatcher.Notify(ctx, draft, notification.DeadlineRule, t, actor, map[string]string{"due": due})
		if err != nil {
			s.log.WithError(err).WithField("entity_id", draft.ID).Warn("deadline reminder not stored")
			continue
		}
		if res.Notification != nil {
			sent = append(sent, *res.Notification)
			s.invalidate(ctx, draft)
		}
	}

	s.log.WithField("count", len(sent)).Info("draft reminders sent")
	return sent, nil
}

func (s *service) dispatch(ctx context.Context, result *Result, actor domain.Recipient, reason *string) {
	if s.dispatcher == nil {
		return
	}

	res, err := s.dispatcher.Dispatch(ctx, result.Entity, result.From, actor, reason)
	if err != nil {
		s.log.WithError(err).WithField("entity_id", result.Entity.ID).Warn("notification dispatch failed")
		result.Warnings = append(result.Warnings, err)
		return
	}

	result.Notification = res.Notification
	result.Message = res.Message
	if res.Warning != nil {
		result.Warnings = append(result.Warnings, res.Warning)
	}
}

func (s *service) invalidate(ctx context.Context, entity *domain.Entity) {
	if s.stats == nil {
		return
	}
	err := s.stats.Invalidate(ctx,
		domain.Recipient{ID: entity.OwnerID, Type: entity.OwnerType},
		domain.Recipient{ID: entity.CounterpartyID, Type: entity.CounterpartyType},
	)
	if err != nil {
		s.log.WithError(err).WithField("entity_id", entity.ID).Debug("stats cache invalidation failed")
	}
}

func (s *service) toast(ctx context.Context, actor domain.Recipient, message string, severity domain.Severity) {
	if s.toaster == nil || actor.ID == "" {
		return
	}
	if err := s.toaster.Toast(ctx, actor, message, severity); err != nil {
		s.log.WithError(err).Debug("toast failed")
	}
}

func (s *service) recordRefusal(id uuid.UUID, err error) {
	kind, class := "unknown", "error"

	var invalid *domain.InvalidTransitionError
	var missing *domain.MissingReasonError
	var notFound *domain.NotFoundError

	switch {
	case errors.As(err, &invalid):
		kind, class = string(invalid.Kind), "invalid_transition"
	case errors.As(err, &missing):
		kind, class = string(missing.Kind), "missing_reason"
	case errors.As(err, &notFound):
		class = "not_found"
	}

	s.metrics.RecordTransitionError(kind, class)
	s.log.WithError(err).WithField("entity_id", id).Info("transition refused")
}

func normalizeStatus(status domain.Status) domain.Status {
	return domain.Status(strings.ToUpper(strings.TrimSpace(string(status))))
}

func humanKind(kind domain.EntityKind) string {
	switch kind {
	case domain.KindApplication:
		return "Application"
	case domain.KindReport:
		return "Report"
	case domain.KindCompanyRegistration:
		return "Company registration"
	}
	return string(kind)
}
