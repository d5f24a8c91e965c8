package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"internship-portal/internal/domain"
)

type StatsCache struct {
	mock.Mock
}

func (m *StatsCache) Invalidate(ctx context.Context, actors ...domain.Recipient) error {
	args := m.Called(ctx, actors)
	return args.Error(0)
}
