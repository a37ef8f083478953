package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Bessima/quicksms/internal/config"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOperatorRepository - mock for OperatorRepositoryI
type MockOperatorRepository struct {
	mock.Mock
}

func (m *MockOperatorRepository) CreateIfAbsent(ctx context.Context, operator models.Operator) (bool, error) {
	args := m.Called(ctx, operator)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperatorRepository) GetByAccountID(ctx context.Context, accountID int64) (*models.Operator, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Operator), args.Error(1)
}

func (m *MockOperatorRepository) GetList(ctx context.Context) ([]models.Operator, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Operator), args.Error(1)
}

func TestOperatorService_Seed(t *testing.T) {
	// Arrange
	mockRepo := new(MockOperatorRepository)
	service := NewOperatorService(mockRepo)
	ctx := context.Background()

	mockRepo.On("CreateIfAbsent", ctx, mock.MatchedBy(func(operator models.Operator) bool {
		return operator.AccountID == 1 && operator.CheckPassword("s3cret")
	})).Return(true, nil)
	mockRepo.On("CreateIfAbsent", ctx, mock.MatchedBy(func(operator models.Operator) bool {
		return operator.AccountID == 2 && operator.PasswordHash == ""
	})).Return(false, nil)

	// Act
	created, err := service.Seed(ctx, []config.OperatorSeed{
		{AccountID: 1, Name: "owner", Password: "s3cret"},
		{AccountID: 2, Name: "support"},
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	mockRepo.AssertExpectations(t)
}

func TestOperatorService_Seed_Error(t *testing.T) {
	mockRepo := new(MockOperatorRepository)
	service := NewOperatorService(mockRepo)
	dbErr := errors.New("database error")

	mockRepo.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(false, dbErr)

	created, err := service.Seed(context.Background(), []config.OperatorSeed{{AccountID: 1}})

	assert.ErrorIs(t, err, dbErr)
	assert.Equal(t, 0, created)
}

func TestOperatorService_Login(t *testing.T) {
	operator := &models.Operator{AccountID: 1, Name: "owner"}
	require.NoError(t, operator.HashPassword("s3cret"))

	testCases := []struct {
		name      string
		accountID int64
		password  string
		setup     func(m *MockOperatorRepository)
		err       error
	}{
		{
			name:      "valid",
			accountID: 1,
			password:  "s3cret",
			setup: func(m *MockOperatorRepository) {
				m.On("GetByAccountID", mock.Anything, int64(1)).Return(operator, nil)
			},
		},
		{
			name:      "wrong password",
			accountID: 1,
			password:  "guess",
			setup: func(m *MockOperatorRepository) {
				m.On("GetByAccountID", mock.Anything, int64(1)).Return(operator, nil)
			},
			err: ErrInvalidCredentials,
		},
		{
			name:      "not an operator",
			accountID: 9,
			password:  "s3cret",
			setup: func(m *MockOperatorRepository) {
				m.On("GetByAccountID", mock.Anything, int64(9)).Return(nil, pgx.ErrNoRows)
			},
			err: ErrInvalidCredentials,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := new(MockOperatorRepository)
			tc.setup(mockRepo)
			service := NewOperatorService(mockRepo)

			got, err := service.Login(context.Background(), tc.accountID, tc.password)

			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "owner", got.Name)
		})
	}
}
