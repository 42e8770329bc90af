package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/elysion-gg/elysion-bank/internal/apperrors"
	"github.com/elysion-gg/elysion-bank/internal/core/domain"
	portssvc "github.com/elysion-gg/elysion-bank/internal/core/ports/services"
	"github.com/elysion-gg/elysion-bank/internal/core/services"
)

// MockSalaryRoleRepository is a mock type for the SalaryRoleRepository interface
type MockSalaryRoleRepository struct {
	mock.Mock
}

func (m *MockSalaryRoleRepository) ListRoles(ctx context.Context) ([]domain.SalaryRole, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SalaryRole), args.Error(1)
}

func (m *MockSalaryRoleRepository) FindRoleByID(ctx context.Context, roleID string) (*domain.SalaryRole, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalaryRole), args.Error(1)
}

func (m *MockSalaryRoleRepository) SaveRole(ctx context.Context, role domain.SalaryRole) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockSalaryRoleRepository) UpdateRole(ctx context.Context, role domain.SalaryRole) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

// --- Test Suite Setup ---

type SalaryConfigServiceTestSuite struct {
	suite.Suite
	mockRoles *MockSalaryRoleRepository
	service   portssvc.SalaryConfigSvcFacade
}

func (suite *SalaryConfigServiceTestSuite) SetupTest() {
	suite.mockRoles = new(MockSalaryRoleRepository)
	suite.service = services.NewSalaryConfigService(suite.mockRoles)
}

// --- Test Cases ---

func (suite *SalaryConfigServiceTestSuite) TestHighestActiveRole_PicksBestPaying() {
	ctx := context.Background()
	configured := []domain.SalaryRole{
		{RoleID: "admin", MonthlyAmount: 30000, IsActive: true},
		{RoleID: "moderator", MonthlyAmount: 20000, IsActive: true},
		{RoleID: "member", MonthlyAmount: 5000, IsActive: true},
	}

	suite.mockRoles.On("ListRoles", ctx).Return(configured, nil).Once()

	best, err := suite.service.HighestActiveRole(ctx, []string{"member", "moderator"})

	suite.Require().NoError(err)
	suite.Equal("moderator", best.RoleID)
	suite.Equal(int64(20000), best.MonthlyAmount)
}

func (suite *SalaryConfigServiceTestSuite) TestHighestActiveRole_SkipsInactive() {
	ctx := context.Background()
	configured := []domain.SalaryRole{
		{RoleID: "admin", MonthlyAmount: 30000, IsActive: false},
		{RoleID: "member", MonthlyAmount: 5000, IsActive: true},
	}

	suite.mockRoles.On("ListRoles", ctx).Return(configured, nil).Once()

	best, err := suite.service.HighestActiveRole(ctx, []string{"admin", "member"})

	suite.Require().NoError(err)
	suite.Equal("member", best.RoleID)
}

func (suite *SalaryConfigServiceTestSuite) TestHighestActiveRole_NoneHeld() {
	ctx := context.Background()
	configured := []domain.SalaryRole{
		{RoleID: "admin", MonthlyAmount: 30000, IsActive: true},
	}

	suite.mockRoles.On("ListRoles", ctx).Return(configured, nil).Once()

	best, err := suite.service.HighestActiveRole(ctx, []string{"unrelated-role"})

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(best)
}

func (suite *SalaryConfigServiceTestSuite) TestSeed_PopulatesEmptyTable() {
	ctx := context.Background()

	suite.mockRoles.On("ListRoles", ctx).Return([]domain.SalaryRole{}, nil).Once()
	suite.mockRoles.On("SaveRole", ctx, mock.AnythingOfType("domain.SalaryRole")).
		Return(nil).Times(len(services.DefaultSalaryRoles))

	suite.Require().NoError(services.Seed(ctx, suite.mockRoles))
	suite.mockRoles.AssertExpectations(suite.T())
}

func (suite *SalaryConfigServiceTestSuite) TestSeed_SkipsNonEmptyTable() {
	ctx := context.Background()
	existing := []domain.SalaryRole{{RoleID: "custom", MonthlyAmount: 1000, IsActive: true}}

	suite.mockRoles.On("ListRoles", ctx).Return(existing, nil).Once()

	suite.Require().NoError(services.Seed(ctx, suite.mockRoles))
	suite.mockRoles.AssertNotCalled(suite.T(), "SaveRole", mock.Anything, mock.Anything)
}

func (suite *SalaryConfigServiceTestSuite) TestAddRole_Validation() {
	err := suite.service.AddRole(context.Background(), domain.SalaryRole{RoleID: "", MonthlyAmount: 100})
	suite.Require().ErrorIs(err, apperrors.ErrValidation)

	err = suite.service.AddRole(context.Background(), domain.SalaryRole{RoleID: "x", MonthlyAmount: 0})
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *SalaryConfigServiceTestSuite) TestSetRoleActive_TogglesExisting() {
	ctx := context.Background()
	role := &domain.SalaryRole{RoleID: "member", MonthlyAmount: 5000, IsActive: true}

	suite.mockRoles.On("FindRoleByID", ctx, "member").Return(role, nil).Once()
	suite.mockRoles.On("UpdateRole", ctx, mock.MatchedBy(func(r domain.SalaryRole) bool {
		return r.RoleID == "member" && !r.IsActive
	})).Return(nil).Once()

	suite.Require().NoError(suite.service.SetRoleActive(ctx, "member", false))
	suite.mockRoles.AssertExpectations(suite.T())
}

func (suite *SalaryConfigServiceTestSuite) TestSetRoleActive_UnknownRole() {
	ctx := context.Background()

	suite.mockRoles.On("FindRoleByID", ctx, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.SetRoleActive(ctx, "ghost", true)

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRoles.AssertNotCalled(suite.T(), "UpdateRole", mock.Anything, mock.Anything)
}

func TestSalaryConfigServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SalaryConfigServiceTestSuite))
}
