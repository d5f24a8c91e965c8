package notification

import (
	"context"

	"github.com/google/uuid"

	"internship-portal/internal/domain"
	"internship-portal/internal/repository"
)

type Service interface {
	GetByID(ctx context.Context, recipient domain.Recipient, id uuid.UUID) (*domain.Notification, error)
	ListAll(ctx context.Context, recipient domain.Recipient) ([]domain.Notification, error)
	List(ctx context.Context, recipient domain.Recipient, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error)
	MarkAsRead(ctx context.Context, recipient domain.Recipient, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, recipient domain.Recipient) error
	GetUnreadCount(ctx context.Context, recipient domain.Recipient) (int64, error)
	SetStatsCache(cache StatsCache)
}

// StatsCache holds per-actor aggregates that include the unread count.
type StatsCache interface {
	Invalidate(ctx context.Context, actors ...domain.Recipient) error
}

type service struct {
	notifRepo repository.NotificationRepository
	stats     StatsCache
}

func NewService(notifRepo repository.NotificationRepository) Service {
	return &service{notifRepo: notifRepo}
}

func (s *service) SetStatsCache(cache StatsCache) {
	s.stats = cache
}

// GetByID only returns notifications addressed to recipient; anything else
// reads as not found.
func (s *service) GetByID(ctx context.Context, recipient domain.Recipient, id uuid.UUID) (*domain.Notification, error) {
	n, err := s.notifRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Recipient() != recipient {
		return nil, &domain.NotFoundError{Resource: "notification", ID: id.String()}
	}
	return n, nil
}

// ListAll returns the whole mailbox, newest first.
func (s *service) ListAll(ctx context.Context, recipient domain.Recipient) ([]domain.Notification, error) {
	return s.notifRepo.ListByRecipient(ctx, recipient)
}

func (s *service) List(ctx context.Context, recipient domain.Recipient, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	params.Validate()

	notifications, total, err := s.notifRepo.ListPage(ctx, recipient, unreadOnly, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Notification]{}, err
	}

	return domain.NewPaginatedResponse(notifications, params.Page, params.PageSize, total), nil
}

func (s *service) MarkAsRead(ctx context.Context, recipient domain.Recipient, id uuid.UUID) error {
	if err := s.notifRepo.MarkAsRead(ctx, recipient, id); err != nil {
		return err
	}
	s.invalidate(ctx, recipient)
	return nil
}

func (s *service) MarkAllAsRead(ctx context.Context, recipient domain.Recipient) error {
	if err := s.notifRepo.MarkAllAsRead(ctx, recipient); err != nil {
		return err
	}
	s.invalidate(ctx, recipient)
	return nil
}

func (s *service) GetUnreadCount(ctx context.Context, recipient domain.Recipient) (int64, error) {
	return s.notifRepo.CountUnread(ctx, recipient)
}

// A failed invalidation only delays fresh stats until the cache TTL expires.
func (s *service) invalidate(ctx context.Context, recipient domain.Recipient) {
	if s.stats != nil {
		_ = s.stats.Invalidate(ctx, recipient)
	}
}
