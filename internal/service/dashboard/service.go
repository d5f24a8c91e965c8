package dashboard

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"internship-portal/internal/domain"
	"internship-portal/internal/repository"
	"internship-portal/internal/service/email"
)

// Stats summarizes what an actor owns and what is waiting on them.
type Stats struct {
	Owned               map[domain.EntityKind]map[domain.Status]int64 `json:"owned"`
	AwaitingReview      int64                                         `json:"awaiting_review"`
	UnreadNotifications int64                                         `json:"unread_notifications"`
	LastActivityAt      *time.Time                                    `json:"last_activity_at"`
}

// Activity is one history entry flattened for the activity feed.
type Activity struct {
	EntityID  uuid.UUID         `json:"entity_id"`
	Kind      domain.EntityKind `json:"kind"`
	Name      string            `json:"name"`
	Status    domain.Status     `json:"status"`
	ActorID   string            `json:"actor_id"`
	Reason    *string           `json:"reason,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

type Service interface {
	GetStats(ctx context.Context, actor domain.Recipient) (*Stats, error)
	RecentActivity(ctx context.Context, limit int) ([]Activity, error)
	Invalidate(ctx context.Context, actors ...domain.Recipient) error
}

type service struct {
	entityRepo repository.EntityRepository
	notifRepo  repository.NotificationRepository
	redis      *redis.Client
	ttl        time.Duration
}

// NewService builds the dashboard. redis may be nil, in which case stats are
// computed on every call.
func NewService(entityRepo repository.EntityRepository, notifRepo repository.NotificationRepository, redis *redis.Client, ttl time.Duration) Service {
	return &service{
		entityRepo: entityRepo,
		notifRepo:  notifRepo,
		redis:      redis,
		ttl:        ttl,
	}
}

func cacheKey(actor domain.Recipient) string {
	return "dashboard:stats:" + string(actor.Type) + ":" + actor.ID
}

func (s *service) GetStats(ctx context.Context, actor domain.Recipient) (*Stats, error) {
	key := cacheKey(actor)

	if s.redis != nil && s.ttl > 0 {
		if cached, err := s.redis.Get(ctx, key).Result(); err == nil {
			var stats Stats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	entities, err := s.entityRepo.List(ctx, domain.EntityFilter{})
	if err != nil {
		return nil, err
	}

	stats := &Stats{Owned: make(map[domain.EntityKind]map[domain.Status]int64)}

	for i := range entities {
		e := &entities[i]
		owner := e.OwnerID == actor.ID && e.OwnerType == actor.Type
		reviewer := e.CounterpartyID == actor.ID && e.CounterpartyType == actor.Type
		if !owner && !reviewer {
			continue
		}

		if owner {
			if stats.Owned[e.Kind] == nil {
				stats.Owned[e.Kind] = make(map[domain.Status]int64)
			}
			stats.Owned[e.Kind][e.Status]++
		}
		if reviewer && e.Status == domain.StatusPending {
			stats.AwaitingReview++
		}

		if last := e.LastHistory().Timestamp; !last.IsZero() {
			if stats.LastActivityAt == nil || last.After(*stats.LastActivityAt) {
				t := last
				stats.LastActivityAt = &t
			}
		}
	}

	unread, err := s.notifRepo.CountUnread(ctx, actor)
	if err != nil {
		return nil, err
	}
	stats.UnreadNotifications = unread

	if s.redis != nil && s.ttl > 0 {
		if statsJSON, err := json.Marshal(stats); err == nil {
			_ = s.redis.Set(ctx, key, statsJSON, s.ttl).Err()
		}
	}

	return stats, nil
}

// Invalidate drops cached stats so the next GetStats recomputes them.
func (s *service) Invalidate(ctx context.Context, actors ...domain.Recipient) error {
	if s.redis == nil || len(actors) == 0 {
		return nil
	}

	keys := make([]string, 0, len(actors))
	for _, actor := range actors {
		if actor.ID == "" {
			continue
		}
		keys = append(keys, cacheKey(actor))
	}
	if len(keys) == 0 {
		return nil
	}
	return s.redis.Del(ctx, keys...).Err()
}

func (s *service) RecentActivity(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 10
	}

	entities, err := s.entityRepo.List(ctx, domain.EntityFilter{})
	if err != nil {
		return nil, err
	}

	var feed []Activity
	for i := range entities {
		e := &entities[i]
		name := email.DisplayName(e)
		for _, h := range e.History {
			feed = append(feed, Activity{
				EntityID:  e.ID,
				Kind:      e.Kind,
				Name:      name,
				Status:    h.Status,
				ActorID:   h.ActorID,
				Reason:    h.Reason,
				Timestamp: h.Timestamp,
			})
		}
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Timestamp.After(feed[j].Timestamp)
	})

	if len(feed) > limit {
		feed = feed[:limit]
	}
	return feed, nil
}
