package installations

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"weatherbot/models"
)

// MockInstallationsService is a mock implementation of the InstallationsService interface
type MockInstallationsService struct {
	mock.Mock
}

func (m *MockInstallationsService) Install(ctx context.Context, code string) (*models.Installation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Installation), args.Error(1)
}

func (m *MockInstallationsService) GetBotToken(ctx context.Context, teamID string) (mo.Option[string], error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).(mo.Option[string]), args.Error(1)
}
