package lifecycle_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"internship-portal/internal/domain"
	"internship-portal/internal/metrics"
	"internship-portal/internal/mocks"
	"internship-portal/internal/pkg/i18n"
	"internship-portal/internal/pkg/logger"
	"internship-portal/internal/repository"
	"internship-portal/internal/service/email"
	"internship-portal/internal/service/lifecycle"
	"internship-portal/internal/service/notification"
)

var (
	student = domain.Recipient{ID: "student-1", Type: domain.ActorStudent}
	company = domain.Recipient{ID: "company-1", Type: domain.ActorCompany}
	faculty = domain.Recipient{ID: "faculty-1", Type: domain.ActorFaculty}
	office  = domain.Recipient{ID: "scad-office", Type: domain.ActorSCAD}
)

type stack struct {
	svc     lifecycle.Service
	repos   *repository.Repositories
	sender  *mocks.Sender
	toaster *mocks.Toaster
	metrics *metrics.Metrics
}

func newStack(t *testing.T) *stack {
	t.Helper()

	catalog, err := i18n.Default()
	require.NoError(t, err)

	s := &stack{
		repos:   repository.NewRepositories(),
		sender:  new(mocks.Sender),
		toaster: new(mocks.Toaster),
		metrics: metrics.New(),
	}
	s.toaster.On("Toast", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	log := logger.Discard()
	dispatcher := notification.NewDispatcher(notification.DispatcherConfig{
		NotifRepo: s.repos.Notification,
		Catalog:   catalog,
		Composer:  email.NewComposer(catalog, "en"),
		Sender:    s.sender,
		Toaster:   s.toaster,
		Metrics:   s.metrics,
		Logger:    log,
	})
	s.svc = lifecycle.NewService(s.repos.Entity, dispatcher, s.toaster, s.metrics, log, lifecycle.Options{
		SCADOfficeID:      office.ID,
		SCADOfficeContact: "scad@example.com",
	})
	return s
}

func (s *stack) sendOK() {
	s.sender.On("Send", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (s *stack) mailbox(t *testing.T, r domain.Recipient) []domain.Notification {
	t.Helper()
	list, err := s.repos.Notification.ListByRecipient(context.Background(), r)
	require.NoError(t, err)
	return list
}

func strPtr(s string) *string { return &s }

func TestScenario_RegistrationApproved(t *testing.T) {
	s := newStack(t)
	s.sendOK()
	ctx := context.Background()

	created, err := s.svc.CreateEntity(ctx, company, domain.CreateEntityInput{
		Kind:         domain.KindCompanyRegistration,
		OwnerID:      company.ID,
		OwnerType:    domain.ActorCompany,
		OwnerContact: "hr@acme.test",
		Attributes:   map[string]string{domain.AttrCompanyName: "Acme"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, created.Entity.Status)

	result, err := s.svc.ApplyTransition(ctx, created.Entity.ID, office, domain.TransitionInput{Status: "Active"})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, result.Entity.Status)
	assert.Equal(t, domain.StatusPending, result.From)
	assert.Empty(t, result.Warnings)

	inbox := s.mailbox(t, company)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.NotifApproval, inbox[0].Type)

	require.NotNil(t, result.Message)
	assert.Contains(t, result.Message.Subject, "Approved")
	assert.Equal(t, "hr@acme.test", result.Message.To)

	s.sender.AssertNumberOfCalls(t, "Send", 2)
}

func TestScenario_ApplicationRejectedWithoutReason(t *testing.T) {
	s := newStack(t)
	s.sendOK()
	ctx := context.Background()

	created, err := s.svc.CreateEntity(ctx, student, domain.CreateEntityInput{
		Kind:             domain.KindApplication,
		OwnerID:          student.ID,
		OwnerType:        domain.ActorStudent,
		CounterpartyID:   company.ID,
		CounterpartyType: domain.ActorCompany,
		Attributes: map[string]string{
			domain.AttrPositionTitle: "Data Intern",
			domain.AttrCompanyName:   "Acme",
			domain.AttrStudentName:   "Sam",
		},
	})
	require.NoError(t, err)

	for _, reason := range []*string{nil, strPtr(""), strPtr("   ")} {
		_, err := s.svc.ApplyTransition(ctx, created.Entity.ID, company, domain.TransitionInput{Status: domain.StatusRejected, Reason: reason})

		var missing *domain.MissingReasonError
		assert.True(t, errors.As(err, &missing))
	}

	stored, err := s.svc.GetEntity(ctx, created.Entity.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Len(t, stored.History, 1)

	assert.Empty(t, s.mailbox(t, student))
	count, _ := testutil.GatherAndCount(s.metrics.Registry, "internship_portal_lifecycle_transition_errors_total")
	assert.Equal(t, 1, count)
}

func TestScenario_ReportFlaggedAfterSubmit(t *testing.T) {
	s := newStack(t)
	s.sendOK()
	ctx := context.Background()

	created, err := s.svc.CreateEntity(ctx, student, domain.CreateEntityInput{
		Kind:             domain.KindReport,
		OwnerID:          student.ID,
		OwnerType:        domain.ActorStudent,
		CounterpartyID:   faculty.ID,
		CounterpartyType: domain.ActorFaculty,
		Attributes:       map[string]string{domain.AttrTitle: "Week 1"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, created.Entity.Status)
	assert.Nil(t, created.Notification)

	id := created.Entity.ID

	submitted, err := s.svc.ApplyTransition(ctx, id, student, domain.TransitionInput{Status: domain.StatusPending})
	require.NoError(t, err)
	require.NotNil(t, submitted.Notification)
	assert.Equal(t, faculty.ID, submitted.Notification.RecipientID)

	_, err = s.svc.UpdateContent(ctx, id, student, domain.UpdateContentInput{
		Attributes: map[string]string{domain.AttrContent: "late edit"},
	})
	var immutable *domain.ImmutableAfterSubmitError
	require.True(t, errors.As(err, &immutable))

	flagged, err := s.svc.ApplyTransition(ctx, id, faculty, domain.TransitionInput{Status: domain.StatusFlagged, Reason: strPtr("incomplete")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFlagged, flagged.Entity.Status)

	inbox := s.mailbox(t, student)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.NotifStatus, inbox[0].Type)
	assert.Contains(t, inbox[0].Message, "incomplete")

	last := flagged.Entity.LastHistory()
	assert.Equal(t, domain.StatusFlagged, last.Status)
	require.NotNil(t, last.Reason)
	assert.Equal(t, "incomplete", *last.Reason)
}

func TestScenario_MailboxOrder(t *testing.T) {
	s := newStack(t)
	s.sendOK()
	ctx := context.Background()

	first, err := s.svc.CreateEntity(ctx, student, domain.CreateEntityInput{
		Kind: domain.KindApplication, OwnerID: student.ID, OwnerType: domain.ActorStudent,
		CounterpartyID: company.ID, CounterpartyType: domain.ActorCompany,
		Attributes: map[string]string{domain.AttrPositionTitle: "A", domain.AttrCompanyName: "Acme"},
	})
	require.NoError(t, err)
	second, err := s.svc.CreateEntity(ctx, student, domain.CreateEntityInput{
		Kind: domain.KindApplication, OwnerID: student.ID, OwnerType: domain.ActorStudent,
		CounterpartyID: company.ID, CounterpartyType: domain.ActorCompany,
		Attributes: map[string]string{domain.AttrPositionTitle: "B", domain.AttrCompanyName: "Acme"},
	})
	require.NoError(t, err)

	inbox := s.mailbox(t, company)
	require.Len(t, inbox, 2)
	assert.Equal(t, second.Notification.ID, inbox[0].ID)
	assert.Equal(t, first.Notification.ID, inbox[1].ID)
}

func TestService_CreateEntity_DefaultsToOffice(t *testing.T) {
	s := newStack(t)
	s.sendOK()
	ctx := context.Background()

	result, err := s.svc.CreateEntity(ctx, company, domain.CreateEntityInput{
		Kind:       "company_registration",
		OwnerID:    company.ID,
		OwnerType:  domain.ActorCompany,
		Attributes: map[string]string{domain.AttrCompanyName: "Acme"},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.KindCompanyRegistration, result.Entity.Kind)
	assert.Equal(t, office.ID, result.Entity.CounterpartyID)
	assert.Equal(t, domain.ActorSCAD, result.Entity.CounterpartyType)

	require.NotNil(t, result.Message)
	assert.Equal(t, "scad@example.com", result.Message.To)
	assert.Equal(t, "New Company Registration: Acme", result.Message.Subject)

	inbox := s.mailbox(t, office)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.NotifRegistration, inbox[0].Type)
}

func TestService_CreateEntity_Validation(t *testing.T) {
	s := newStack(t)

	_, err := s.svc.CreateEntity(context.Background(), student, domain.CreateEntityInput{
		Kind:      domain.KindApplication,
		OwnerID:   student.ID,
		OwnerType: domain.ActorStudent,
	})

	var validation *domain.ValidationError
	assert.True(t, errors.As(err, &validation))
	s.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestService_ApplyTransition(t *testing.T) {
	ctx := context.Background()

	newApplication := func(t *testing.T, s *stack) uuid.UUID {
		created, err := s.svc.CreateEntity(ctx, student, domain.CreateEntityInput{
			Kind: domain.KindApplication, OwnerID: student.ID, OwnerType: domain.ActorStudent,
			CounterpartyID: company.ID, CounterpartyType: domain.ActorCompany,
			Attributes: map[string]string{domain.AttrPositionTitle: "Data Intern", domain.AttrCompanyName: "Acme"},
		})
		require.NoError(t, err)
		return created.Entity.ID
	}

	t.Run("Empty status", func(t *testing.T) {
		s := newStack(t)
		s.sendOK()
		id := newApplication(t, s)

		_, err := s.svc.ApplyTransition(ctx, id, company, domain.TransitionInput{Status: "  "})

		var validation *domain.ValidationError
		require.True(t, errors.As(err, &validation))
		assert.Equal(t, "status", validation.Field)
	})

	t.Run("Illegal edge", func(t *testing.T) {
		s := newStack(t)
		s.sendOK()
		id := newApplication(t, s)

		_, err := s.svc.ApplyTransition(ctx, id, company, domain.TransitionInput{Status: domain.StatusFinalized})

		var invalid *domain.InvalidTransitionError
		assert.True(t, errors.As(err, &invalid))
	})

	t.Run("Unknown entity", func(t *testing.T) {
		s := newStack(t)

		_, err := s.svc.ApplyTransition(ctx, uuid.New(), company, domain.TransitionInput{Status: domain.StatusAccepted})

		var notFound *domain.NotFoundError
		assert.True(t, errors.As(err, &notFound))
	})

	t.Run("Send failure is a warning", func(t *testing.T) {
		s := newStack(t)
		s.sender.On("Send", mock.Anything, mock.MatchedBy(func(m domain.Message) bool {
			return strings.HasPrefix(m.Subject, "New Application")
		})).Return(nil).Once()
		s.sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()
		id := newApplication(t, s)

		result, err := s.svc.ApplyTransition(ctx, id, company, domain.TransitionInput{Status: domain.StatusAccepted})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusAccepted, result.Entity.Status)
		require.Len(t, result.Warnings, 1)
		var failure *domain.SendFailure
		assert.True(t, errors.As(result.Warnings[0], &failure))

		require.Len(t, s.mailbox(t, student), 1)
		s.toaster.AssertCalled(t, "Toast", mock.Anything, company, mock.AnythingOfType("string"), domain.SeverityWarning)
	})

	t.Run("Finalize notifies without message", func(t *testing.T) {
		s := newStack(t)
		s.sendOK()
		id := newApplication(t, s)

		_, err := s.svc.ApplyTransition(ctx, id, company, domain.TransitionInput{Status: domain.StatusAccepted})
		require.NoError(t, err)
		result, err := s.svc.ApplyTransition(ctx, id, office, domain.TransitionInput{Status: domain.StatusFinalized})

		require.NoError(t, err)
		require.NotNil(t, result.Notification)
		assert.Equal(t, "Internship Finalized", result.Notification.Title)
		assert.Nil(t, result.Message)
		assert.Empty(t, domain.AllowedTransitions(result.Entity.Kind, result.Entity.Status))
	})
}

func TestService_AllowedTransitions(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	created, err := s.svc.CreateEntity(ctx, student, domain.CreateEntityInput{
		Kind: domain.KindReport, OwnerID: student.ID, OwnerType: domain.ActorStudent,
		Attributes: map[string]string{domain.AttrTitle: "Week 1"},
	})
	require.NoError(t, err)

	allowed, err := s.svc.AllowedTransitions(ctx, created.Entity.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{domain.StatusPending}, allowed)
}

func TestService_DraftEditing(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	created, err := s.svc.CreateEntity(ctx, student, domain.CreateEntityInput{
		Kind: domain.KindReport, OwnerID: student.ID, OwnerType: domain.ActorStudent,
		Attributes: map[string]string{domain.AttrTitle: "Week 1"},
	})
	require.NoError(t, err)
	id := created.Entity.ID

	updated, err := s.svc.UpdateContent(ctx, id, student, domain.UpdateContentInput{
		Attributes: map[string]string{domain.AttrContent: "Did things"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Did things", updated.Attr(domain.AttrContent))
	assert.Equal(t, domain.StatusDraft, updated.Status)

	require.NoError(t, s.svc.DeleteEntity(ctx, id, student))
	_, err = s.svc.GetEntity(ctx, id)
	var notFound *domain.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestService_RemindDrafts(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	newReport := func(owner string, title string) uuid.UUID {
		created, err := s.svc.CreateEntity(ctx, student, domain.CreateEntityInput{
			Kind: domain.KindReport, OwnerID: owner, OwnerType: domain.ActorStudent,
			Attributes: map[string]string{domain.AttrTitle: title},
		})
		require.NoError(t, err)
		return created.Entity.ID
	}

	newReport("student-1", "Week 1")
	submitted := newReport("student-2", "Week 2")
	_, err := s.svc.ApplyTransition(ctx, submitted, domain.Recipient{ID: "student-2", Type: domain.ActorStudent}, domain.TransitionInput{Status: domain.StatusPending})
	require.NoError(t, err)

	t.Run("Due required", func(t *testing.T) {
		_, err := s.svc.RemindDrafts(ctx, office, " ")

		var validation *domain.ValidationError
		assert.True(t, errors.As(err, &validation))
	})

	t.Run("Only drafts are reminded", func(t *testing.T) {
		sent, err := s.svc.RemindDrafts(ctx, office, "2026-06-01")

		require.NoError(t, err)
		require.Len(t, sent, 1)
		assert.Equal(t, "student-1", sent[0].RecipientID)
		assert.Equal(t, domain.NotifDeadline, sent[0].Type)
		assert.Contains(t, sent[0].Message, "2026-06-01")

		assert.Empty(t, s.mailbox(t, domain.Recipient{ID: "student-2", Type: domain.ActorStudent}))
	})
}

func TestService_ListEntities(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.svc.CreateEntity(ctx, student, domain.CreateEntityInput{
		Kind: domain.KindReport, OwnerID: student.ID, OwnerType: domain.ActorStudent,
		Attributes: map[string]string{domain.AttrTitle: "Week 1"},
	})
	require.NoError(t, err)

	list, err := s.svc.ListEntities(ctx, domain.EntityFilter{Kind: "report", Status: "draft"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.svc.ListEntities(ctx, domain.EntityFilter{Kind: "report", Status: "active"})
	var validation *domain.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "status", validation.Field)

	list, err = s.svc.ListEntities(ctx, domain.EntityFilter{Status: "draft"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestService_StatsCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	s.sendOK()
	cache := new(mocks.StatsCache)
	s.svc.SetStatsCache(cache)

	parties := []domain.Recipient{student, faculty}
	cache.On("Invalidate", mock.Anything, parties).Return(nil).Times(3)

	created, err := s.svc.CreateEntity(ctx, student, domain.CreateEntityInput{
		Kind: domain.KindReport, OwnerID: student.ID, OwnerType: domain.ActorStudent,
		CounterpartyID: faculty.ID, CounterpartyType: domain.ActorFaculty,
		Attributes: map[string]string{domain.AttrTitle: "Week 1"},
	})
	require.NoError(t, err)

	_, err = s.svc.RemindDrafts(ctx, office, "Friday")
	require.NoError(t, err)

	require.NoError(t, s.svc.DeleteEntity(ctx, created.Entity.ID, student))
	cache.AssertExpectations(t)

	t.Run("Failure does not fail the change", func(t *testing.T) {
		s := newStack(t)
		s.sendOK()
		cache := new(mocks.StatsCache)
		s.svc.SetStatsCache(cache)
		cache.On("Invalidate", mock.Anything, mock.Anything).Return(errors.New("redis down"))

		created, err := s.svc.CreateEntity(ctx, student, domain.CreateEntityInput{
			Kind: domain.KindReport, OwnerID: student.ID, OwnerType: domain.ActorStudent,
			CounterpartyID: faculty.ID, CounterpartyType: domain.ActorFaculty,
			Attributes: map[string]string{domain.AttrTitle: "Week 1"},
		})
		require.NoError(t, err)

		result, err := s.svc.ApplyTransition(ctx, created.Entity.ID, student, domain.TransitionInput{Status: domain.StatusPending})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, result.Entity.Status)
		cache.AssertNumberOfCalls(t, "Invalidate", 2)
	})

	t.Run("Refused delete leaves cache alone", func(t *testing.T) {
		s := newStack(t)
		cache := new(mocks.StatsCache)
		s.svc.SetStatsCache(cache)

		err := s.svc.DeleteEntity(ctx, uuid.New(), student)

		var notFound *domain.NotFoundError
		assert.True(t, errors.As(err, &notFound))
		cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	})
}
