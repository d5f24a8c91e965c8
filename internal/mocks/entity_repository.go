package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"internship-portal/internal/domain"
)

type EntityRepository struct {
	mock.Mock
}

func (m *EntityRepository) Create(ctx context.Context, input domain.CreateEntityInput, actorID string) (*domain.Entity, error) {
	args := m.Called(ctx, input, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entity), args.Error(1)
}

func (m *EntityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entity), args.Error(1)
}

func (m *EntityRepository) List(ctx context.Context, filter domain.EntityFilter) ([]domain.Entity, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Entity), args.Error(1)
}

func (m *EntityRepository) ApplyTransition(ctx context.Context, id uuid.UUID, to domain.Status, actorID string, reason *string) (*domain.Entity, domain.Status, error) {
	args := m.Called(ctx, id, to, actorID, reason)
	if args.Get(0) == nil {
		return nil, args.Get(1).(domain.Status), args.Error(2)
	}
	return args.Get(0).(*domain.Entity), args.Get(1).(domain.Status), args.Error(2)
}

func (m *EntityRepository) UpdateContent(ctx context.Context, id uuid.UUID, attrs map[string]string) (*domain.Entity, error) {
	args := m.Called(ctx, id, attrs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entity), args.Error(1)
}

func (m *EntityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
