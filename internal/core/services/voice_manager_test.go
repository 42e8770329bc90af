package services_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/elysion-gg/elysion-bank/internal/apperrors"
	"github.com/elysion-gg/elysion-bank/internal/core/domain"
	portssvc "github.com/elysion-gg/elysion-bank/internal/core/ports/services"
	"github.com/elysion-gg/elysion-bank/internal/core/services"
)

// MockVoiceChannelRepository is a mock type for the VoiceChannelRepository interface
type MockVoiceChannelRepository struct {
	mock.Mock
}

func (m *MockVoiceChannelRepository) SaveChannel(ctx context.Context, ch domain.VoiceChannel) error {
	args := m.Called(ctx, ch)
	return args.Error(0)
}

func (m *MockVoiceChannelRepository) FindChannelByID(ctx context.Context, channelID string) (*domain.VoiceChannel, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VoiceChannel), args.Error(1)
}

func (m *MockVoiceChannelRepository) RenameChannel(ctx context.Context, channelID, name string) error {
	args := m.Called(ctx, channelID, name)
	return args.Error(0)
}

func (m *MockVoiceChannelRepository) TouchChannel(ctx context.Context, channelID string, now time.Time) error {
	args := m.Called(ctx, channelID, now)
	return args.Error(0)
}

func (m *MockVoiceChannelRepository) DeleteChannel(ctx context.Context, channelID string) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *MockVoiceChannelRepository) ListStaleChannels(ctx context.Context, olderThan time.Time) ([]domain.VoiceChannel, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VoiceChannel), args.Error(1)
}

// MockChannelProvisioner is a mock type for the ChannelProvisioner interface
type MockChannelProvisioner struct {
	mock.Mock
}

func (m *MockChannelProvisioner) CreateVoiceChannel(ctx context.Context, params portssvc.CreateChannelParams) (string, error) {
	args := m.Called(ctx, params)
	return args.String(0), args.Error(1)
}

func (m *MockChannelProvisioner) DeleteVoiceChannel(ctx context.Context, channelID string) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *MockChannelProvisioner) RenameVoiceChannel(ctx context.Context, channelID, name string) error {
	args := m.Called(ctx, channelID, name)
	return args.Error(0)
}

func (m *MockChannelProvisioner) GrantChannelAccess(ctx context.Context, channelID, userID string) error {
	args := m.Called(ctx, channelID, userID)
	return args.Error(0)
}

func (m *MockChannelProvisioner) CountOccupants(ctx context.Context, channelID string) (int, error) {
	args := m.Called(ctx, channelID)
	return args.Int(0), args.Error(1)
}

// --- Test Suite Setup ---

type VoiceManagerTestSuite struct {
	suite.Suite
	mockRepo        *MockVoiceChannelRepository
	mockProvisioner *MockChannelProvisioner
	manager         *services.VoiceManager
}

func (suite *VoiceManagerTestSuite) SetupTest() {
	suite.mockRepo = new(MockVoiceChannelRepository)
	suite.mockProvisioner = new(MockChannelProvisioner)
	suite.manager = services.NewVoiceManager(suite.mockRepo, suite.mockProvisioner, services.VoiceManagerConfig{
		GracePeriod:   20 * time.Millisecond,
		SweepInterval: time.Hour,
		UserLimit:     2,
	}, slog.Default())
}

// --- Test Cases ---

func (suite *VoiceManagerTestSuite) TestCreateChannel_Success() {
	ctx := context.Background()
	partner := "bob"

	suite.mockProvisioner.On("CreateVoiceChannel", ctx, mock.MatchedBy(func(p portssvc.CreateChannelParams) bool {
		return p.Name == "den" && p.OwnerID == "alice" && p.PartnerID != nil && *p.PartnerID == "bob" && p.UserLimit == 2
	})).Return("vc-1", nil).Once()
	suite.mockRepo.On("SaveChannel", ctx, mock.MatchedBy(func(ch domain.VoiceChannel) bool {
		return ch.ChannelID == "vc-1" && ch.OwnerID == "alice" && ch.Name == "den"
	})).Return(nil).Once()

	ch, err := suite.manager.CreateChannel(ctx, "alice", "den", &partner)

	suite.Require().NoError(err)
	suite.Equal("vc-1", ch.ChannelID)
	suite.mockProvisioner.AssertExpectations(suite.T())
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *VoiceManagerTestSuite) TestCreateChannel_TrackingFailureTearsDown() {
	ctx := context.Background()

	suite.mockProvisioner.On("CreateVoiceChannel", ctx, mock.Anything).Return("vc-1", nil).Once()
	suite.mockRepo.On("SaveChannel", ctx, mock.Anything).Return(apperrors.ErrStorageUnavailable).Once()
	suite.mockProvisioner.On("DeleteVoiceChannel", ctx, "vc-1").Return(nil).Once()

	ch, err := suite.manager.CreateChannel(ctx, "alice", "den", nil)

	suite.Require().Error(err)
	suite.Nil(ch)
	suite.mockProvisioner.AssertExpectations(suite.T())
}

func (suite *VoiceManagerTestSuite) TestCreateChannel_TeardownFailureIsPartial() {
	ctx := context.Background()

	suite.mockProvisioner.On("CreateVoiceChannel", ctx, mock.Anything).Return("vc-1", nil).Once()
	suite.mockRepo.On("SaveChannel", ctx, mock.Anything).Return(apperrors.ErrStorageUnavailable).Once()
	suite.mockProvisioner.On("DeleteVoiceChannel", ctx, "vc-1").Return(apperrors.ErrStorageUnavailable).Once()

	ch, err := suite.manager.CreateChannel(ctx, "alice", "den", nil)

	suite.Require().ErrorIs(err, apperrors.ErrPartialFailure)
	suite.Nil(ch)
}

func (suite *VoiceManagerTestSuite) TestDeleteChannel_NotOwner() {
	ctx := context.Background()
	ch := &domain.VoiceChannel{ChannelID: "vc-1", OwnerID: "alice"}

	suite.mockRepo.On("FindChannelByID", ctx, "vc-1").Return(ch, nil).Once()

	err := suite.manager.DeleteChannel(ctx, "vc-1", "mallory")

	suite.Require().ErrorIs(err, apperrors.ErrNotOwner)
	suite.mockRepo.AssertNotCalled(suite.T(), "DeleteChannel", mock.Anything, mock.Anything)
	suite.mockProvisioner.AssertNotCalled(suite.T(), "DeleteVoiceChannel", mock.Anything, mock.Anything)
}

func (suite *VoiceManagerTestSuite) TestDeleteChannel_OwnerToleratesAlreadyGone() {
	ctx := context.Background()
	ch := &domain.VoiceChannel{ChannelID: "vc-1", OwnerID: "alice"}

	suite.mockRepo.On("FindChannelByID", ctx, "vc-1").Return(ch, nil).Once()
	suite.mockRepo.On("DeleteChannel", ctx, "vc-1").Return(nil).Once()
	// External channel vanished in the meantime; not an error.
	suite.mockProvisioner.On("DeleteVoiceChannel", ctx, "vc-1").Return(apperrors.ErrNotFound).Once()

	err := suite.manager.DeleteChannel(ctx, "vc-1", "alice")

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *VoiceManagerTestSuite) TestRenameChannel_NotOwner() {
	ctx := context.Background()
	ch := &domain.VoiceChannel{ChannelID: "vc-1", OwnerID: "alice"}

	suite.mockRepo.On("FindChannelByID", ctx, "vc-1").Return(ch, nil).Once()

	err := suite.manager.RenameChannel(ctx, "vc-1", "mallory", "lair")

	suite.Require().ErrorIs(err, apperrors.ErrNotOwner)
	suite.mockProvisioner.AssertNotCalled(suite.T(), "RenameVoiceChannel", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *VoiceManagerTestSuite) TestHandleOccupancy_UntrackedChannelIgnored() {
	ctx := context.Background()

	suite.mockRepo.On("FindChannelByID", ctx, "vc-ghost").Return(nil, apperrors.ErrNotFound).Once()

	err := suite.manager.HandleOccupancy(ctx, "vc-ghost", 0)

	suite.Require().NoError(err)
	suite.mockRepo.AssertNotCalled(suite.T(), "TouchChannel", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *VoiceManagerTestSuite) TestHandleOccupancy_EmptyChannelReapedAfterGrace() {
	ctx := context.Background()
	ch := &domain.VoiceChannel{ChannelID: "vc-1", OwnerID: "alice"}

	suite.mockRepo.On("FindChannelByID", ctx, "vc-1").Return(ch, nil).Once()
	suite.mockRepo.On("TouchChannel", ctx, "vc-1", mock.AnythingOfType("time.Time")).Return(nil).Once()
	// The deferred check runs with its own context.
	suite.mockProvisioner.On("CountOccupants", mock.Anything, "vc-1").Return(0, nil).Once()
	suite.mockRepo.On("DeleteChannel", mock.Anything, "vc-1").Return(nil).Once()
	suite.mockProvisioner.On("DeleteVoiceChannel", mock.Anything, "vc-1").Return(nil).Once()

	suite.Require().NoError(suite.manager.HandleOccupancy(ctx, "vc-1", 0))

	// Let the grace countdown fire.
	time.Sleep(100 * time.Millisecond)

	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockProvisioner.AssertExpectations(suite.T())
}

func (suite *VoiceManagerTestSuite) TestHandleOccupancy_RejoinCancelsCountdown() {
	ctx := context.Background()
	ch := &domain.VoiceChannel{ChannelID: "vc-1", OwnerID: "alice"}

	suite.mockRepo.On("FindChannelByID", ctx, "vc-1").Return(ch, nil).Twice()
	suite.mockRepo.On("TouchChannel", ctx, "vc-1", mock.AnythingOfType("time.Time")).Return(nil).Twice()

	suite.Require().NoError(suite.manager.HandleOccupancy(ctx, "vc-1", 0))
	suite.Require().NoError(suite.manager.HandleOccupancy(ctx, "vc-1", 1))

	time.Sleep(60 * time.Millisecond)

	suite.mockProvisioner.AssertNotCalled(suite.T(), "CountOccupants", mock.Anything, mock.Anything)
	suite.mockRepo.AssertNotCalled(suite.T(), "DeleteChannel", mock.Anything, mock.Anything)
}

func (suite *VoiceManagerTestSuite) TestSweep_ReconcilesPhantomRecord() {
	ctx := context.Background()
	stale := []domain.VoiceChannel{{ChannelID: "vc-gone", OwnerID: "alice"}}

	suite.mockRepo.On("ListStaleChannels", ctx, mock.AnythingOfType("time.Time")).Return(stale, nil).Once()
	suite.mockProvisioner.On("CountOccupants", ctx, "vc-gone").Return(0, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("DeleteChannel", ctx, "vc-gone").Return(nil).Once()

	suite.manager.Sweep(ctx)

	// Only the tracking row is dropped; there is no external channel to delete.
	suite.mockProvisioner.AssertNotCalled(suite.T(), "DeleteVoiceChannel", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *VoiceManagerTestSuite) TestSweep_OccupiedChannelOnlyTouched() {
	ctx := context.Background()
	stale := []domain.VoiceChannel{{ChannelID: "vc-1", OwnerID: "alice"}}

	suite.mockRepo.On("ListStaleChannels", ctx, mock.AnythingOfType("time.Time")).Return(stale, nil).Once()
	suite.mockProvisioner.On("CountOccupants", ctx, "vc-1").Return(2, nil).Once()
	suite.mockRepo.On("TouchChannel", ctx, "vc-1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	suite.manager.Sweep(ctx)

	suite.mockRepo.AssertNotCalled(suite.T(), "DeleteChannel", mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestVoiceManagerTestSuite(t *testing.T) {
	suite.Run(t, new(VoiceManagerTestSuite))
}
