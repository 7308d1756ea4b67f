package users

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/luzza07/artist-management-backend/internal/auth"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) LoadIdentity(ctx context.Context, userID string) (auth.Identity, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(auth.Identity), args.Error(1)
}

func (m *MockStore) CreateUser(ctx context.Context, u NewUser, requestedBy string) (User, error) {
	args := m.Called(ctx, u, requestedBy)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockStore) FindByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockStore) FindByID(ctx context.Context, id string) (User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockStore) ApproveUser(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) ApproveRequest(ctx context.Context, requestID string) (string, error) {
	args := m.Called(ctx, requestID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) PendingUsers(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockStore) PendingRequests(ctx context.Context) ([]ApprovalRequest, error) {
	args := m.Called(ctx)
	return args.Get(0).([]ApprovalRequest), args.Error(1)
}

func (m *MockStore) ListUsers(ctx context.Context, limit, offset int) ([]User, int, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]User), args.Int(1), args.Error(2)
}

func (m *MockStore) UpdateUser(ctx context.Context, id string, upd UserUpdate) (User, error) {
	args := m.Called(ctx, id, upd)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockStore) DeleteUser(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) SuperAdminStats(ctx context.Context) (SuperAdminStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(SuperAdminStats), args.Error(1)
}

func (m *MockStore) ManagerStats(ctx context.Context) (ManagerStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(ManagerStats), args.Error(1)
}

func (m *MockStore) ArtistStats(ctx context.Context, userID string) (ArtistStats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(ArtistStats), args.Error(1)
}
