package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"internship-portal/internal/domain"
)

type Sender struct {
	mock.Mock
}

func (m *Sender) Send(ctx context.Context, msg domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
