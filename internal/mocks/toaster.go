package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"internship-portal/internal/domain"
)

type Toaster struct {
	mock.Mock
}

func (m *Toaster) Toast(ctx context.Context, actor domain.Recipient, message string, severity domain.Severity) error {
	args := m.Called(ctx, actor, message, severity)
	return args.Error(0)
}
