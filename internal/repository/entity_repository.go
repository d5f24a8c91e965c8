package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"internship-portal/internal/domain"
)

type EntityRepository interface {
	Create(ctx context.Context, input domain.CreateEntityInput, actorID string) (*domain.Entity, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Entity, error)
	List(ctx context.Context, filter domain.EntityFilter) ([]domain.Entity, error)
	ApplyTransition(ctx context.Context, id uuid.UUID, to domain.Status, actorID string, reason *string) (*domain.Entity, domain.Status, error)
	UpdateContent(ctx context.Context, id uuid.UUID, attrs map[string]string) (*domain.Entity, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// entityRepository keeps entities in creation order. Every read returns a
// copy; ApplyTransition is the only path that changes Status.
type entityRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*domain.Entity
	order []uuid.UUID
	now   func() time.Time
}

func NewEntityRepository() EntityRepository {
	return &entityRepository{
		byID: make(map[uuid.UUID]*domain.Entity),
		now:  time.Now,
	}
}

func (r *entityRepository) Create(ctx context.Context, input domain.CreateEntityInput, actorID string) (*domain.Entity, error) {
	if err := domain.ValidateCreate(input); err != nil {
		return nil, err
	}

	initial, _ := domain.InitialStatus(input.Kind)
	now := r.now()

	attrs := make(map[string]string, len(input.Attributes))
	for k, v := range input.Attributes {
		attrs[k] = v
	}

	if actorID == "" {
		actorID = input.OwnerID
	}

	entity := &domain.Entity{
		ID:                  uuid.New(),
		Kind:                input.Kind,
		Status:              initial,
		OwnerID:             input.OwnerID,
		OwnerType:           input.OwnerType,
		OwnerContact:        input.OwnerContact,
		CounterpartyID:      input.CounterpartyID,
		CounterpartyType:    input.CounterpartyType,
		CounterpartyContact: input.CounterpartyContact,
		Attributes:          attrs,
		History: []domain.HistoryEntry{
			{Status: initial, Timestamp: now, ActorID: actorID},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.byID[entity.ID] = entity
	r.order = append(r.order, entity.ID)
	r.mu.Unlock()

	return entity.Clone(), nil
}

func (r *entityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entity, ok := r.byID[id]
	if !ok {
		return nil, notFound(id)
	}
	return entity.Clone(), nil
}

func (r *entityRepository) List(ctx context.Context, filter domain.EntityFilter) ([]domain.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entities := make([]domain.Entity, 0)
	for _, id := range r.order {
		entity := r.byID[id]
		if filter.Match(entity) {
			entities = append(entities, *entity.Clone())
		}
	}
	return entities, nil
}

// ApplyTransition validates and applies the edge under the write lock and
// returns the updated entity together with the status it left.
func (r *entityRepository) ApplyTransition(ctx context.Context, id uuid.UUID, to domain.Status, actorID string, reason *string) (*domain.Entity, domain.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entity, ok := r.byID[id]
	if !ok {
		return nil, domain.StatusNone, notFound(id)
	}

	from := entity.Status
	if err := domain.ValidateTransition(entity.Kind, from, to, reason); err != nil {
		return nil, from, err
	}

	now := r.now()
	entry := domain.HistoryEntry{Status: to, Timestamp: now, ActorID: actorID}
	if !domain.IsBlank(reason) {
		text := *reason
		entry.Reason = &text
	}

	entity.Status = to
	entity.History = append(entity.History, entry)
	entity.UpdatedAt = now

	return entity.Clone(), from, nil
}

func (r *entityRepository) UpdateContent(ctx context.Context, id uuid.UUID, attrs map[string]string) (*domain.Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entity, ok := r.byID[id]
	if !ok {
		return nil, notFound(id)
	}

	if !domain.CanEditContent(entity.Kind, entity.Status) {
		return nil, &domain.ImmutableAfterSubmitError{ID: id, Status: entity.Status}
	}

	merged := make(map[string]string, len(entity.Attributes)+len(attrs))
	for k, v := range entity.Attributes {
		merged[k] = v
	}
	for k, v := range attrs {
		merged[k] = v
	}

	check := domain.CreateEntityInput{
		Kind:             entity.Kind,
		OwnerID:          entity.OwnerID,
		OwnerType:        entity.OwnerType,
		CounterpartyID:   entity.CounterpartyID,
		CounterpartyType: entity.CounterpartyType,
		Attributes:       merged,
	}
	if err := domain.ValidateCreate(check); err != nil {
		return nil, err
	}

	entity.Attributes = merged
	entity.UpdatedAt = r.now()

	return entity.Clone(), nil
}

func (r *entityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entity, ok := r.byID[id]
	if !ok {
		return notFound(id)
	}

	if !domain.CanEditContent(entity.Kind, entity.Status) {
		return &domain.ImmutableAfterSubmitError{ID: id, Status: entity.Status}
	}

	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

func notFound(id uuid.UUID) error {
	return &domain.NotFoundError{Resource: "entity", ID: id.String()}
}
