package session

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/noah-isme/growth-archive/internal/dto"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) HasToken(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *mockAPI) ClearToken(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockAPI) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.RegisterResponse)
	return resp, args.Error(1)
}

func (m *mockAPI) Login(ctx context.Context, phone, password string) (*dto.LoginResponse, error) {
	args := m.Called(ctx, phone, password)
	resp, _ := args.Get(0).(*dto.LoginResponse)
	return resp, args.Error(1)
}

func (m *mockAPI) DeleteAccount(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockAPI) GetProfile(ctx context.Context) (*dto.UserProfileRecord, error) {
	args := m.Called(ctx)
	rec, _ := args.Get(0).(*dto.UserProfileRecord)
	return rec, args.Error(1)
}

func (m *mockAPI) UpdateProfile(ctx context.Context, req dto.UserProfileUpdateRequest) (*dto.UserProfileRecord, error) {
	args := m.Called(ctx, req)
	rec, _ := args.Get(0).(*dto.UserProfileRecord)
	return rec, args.Error(1)
}

func (m *mockAPI) ListArchives(ctx context.Context, category string) ([]dto.ArchiveRecord, error) {
	args := m.Called(ctx, category)
	recs, _ := args.Get(0).([]dto.ArchiveRecord)
	return recs, args.Error(1)
}

func (m *mockAPI) GetArchive(ctx context.Context, id string) (*dto.ArchiveRecord, error) {
	args := m.Called(ctx, id)
	rec, _ := args.Get(0).(*dto.ArchiveRecord)
	return rec, args.Error(1)
}

func (m *mockAPI) CreateArchive(ctx context.Context, req dto.ArchiveCreateRequest) (*dto.ArchiveRecord, error) {
	args := m.Called(ctx, req)
	rec, _ := args.Get(0).(*dto.ArchiveRecord)
	return rec, args.Error(1)
}

func (m *mockAPI) UpdateArchive(ctx context.Context, id string, req dto.ArchiveUpdateRequest) (*dto.ArchiveRecord, error) {
	args := m.Called(ctx, id, req)
	rec, _ := args.Get(0).(*dto.ArchiveRecord)
	return rec, args.Error(1)
}

func (m *mockAPI) DeleteArchive(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAPI) ListNotifications(ctx context.Context) ([]dto.NotificationRecord, error) {
	args := m.Called(ctx)
	recs, _ := args.Get(0).([]dto.NotificationRecord)
	return recs, args.Error(1)
}

func (m *mockAPI) MarkNotificationRead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAPI) MarkAllNotificationsRead(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
