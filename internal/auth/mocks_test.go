package auth

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) LoadIdentity(ctx context.Context, userID string) (Identity, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(Identity), args.Error(1)
}
