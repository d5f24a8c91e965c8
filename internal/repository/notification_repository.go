package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"internship-portal/internal/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, notif *domain.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	ListByRecipient(ctx context.Context, recipient domain.Recipient) ([]domain.Notification, error)
	ListPage(ctx context.Context, recipient domain.Recipient, unreadOnly bool, params domain.PaginationParams) ([]domain.Notification, int64, error)
	MarkAsRead(ctx context.Context, recipient domain.Recipient, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, recipient domain.Recipient) error
	CountUnread(ctx context.Context, recipient domain.Recipient) (int64, error)
}

// notificationRepository holds one mailbox per recipient, newest first.
type notificationRepository struct {
	mu        sync.RWMutex
	mailboxes map[domain.Recipient][]*domain.Notification
	byID      map[uuid.UUID]*domain.Notification
	now       func() time.Time
}

func NewNotificationRepository() NotificationRepository {
	return &notificationRepository{
		mailboxes: make(map[domain.Recipient][]*domain.Notification),
		byID:      make(map[uuid.UUID]*domain.Notification),
		now:       time.Now,
	}
}

func (r *notificationRepository) Create(ctx context.Context, notif *domain.Notification) error {
	if notif.RecipientID == "" {
		return &domain.ValidationError{Field: "recipient_id", Message: "recipient_id is required"}
	}

	if notif.ID == uuid.Nil {
		notif.ID = uuid.New()
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = r.now()
	}

	stored := *notif
	stored.IsRead = false
	stored.ReadAt = nil

	r.mu.Lock()
	defer r.mu.Unlock()

	key := stored.Recipient()
	r.mailboxes[key] = append([]*domain.Notification{&stored}, r.mailboxes[key]...)
	r.byID[stored.ID] = &stored

	*notif = stored
	return nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notif, ok := r.byID[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "notification", ID: id.String()}
	}
	out := *notif
	return &out, nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipient domain.Recipient) ([]domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mailbox := r.mailboxes[recipient]
	notifications := make([]domain.Notification, 0, len(mailbox))
	for _, n := range mailbox {
		notifications = append(notifications, *n)
	}
	return notifications, nil
}

func (r *notificationRepository) ListPage(ctx context.Context, recipient domain.Recipient, unreadOnly bool, params domain.PaginationParams) ([]domain.Notification, int64, error) {
	params.Validate()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.Notification
	for _, n := range r.mailboxes[recipient] {
		if unreadOnly && n.IsRead {
			continue
		}
		matched = append(matched, n)
	}

	start, end := params.Bounds(len(matched))
	notifications := make([]domain.Notification, 0, end-start)
	for _, n := range matched[start:end] {
		notifications = append(notifications, *n)
	}
	return notifications, int64(len(matched)), nil
}

// MarkAsRead is forgiving: unknown ids, other recipients' notifications and
// already read ones are all left alone without error.
func (r *notificationRepository) MarkAsRead(ctx context.Context, recipient domain.Recipient, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notif, ok := r.byID[id]
	if !ok || notif.Recipient() != recipient || notif.IsRead {
		return nil
	}

	now := r.now()
	notif.IsRead = true
	notif.ReadAt = &now
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipient domain.Recipient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, n := range r.mailboxes[recipient] {
		if n.IsRead {
			continue
		}
		readAt := now
		n.IsRead = true
		n.ReadAt = &readAt
	}
	return nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipient domain.Recipient) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, n := range r.mailboxes[recipient] {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}
