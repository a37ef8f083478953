package service

import (
	"context"
	"errors"

	"github.com/Bessima/quicksms/internal/config"
	"github.com/Bessima/quicksms/internal/middlewares/logger"
	"github.com/Bessima/quicksms/internal/models"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type OperatorRepositoryI interface {
	CreateIfAbsent(ctx context.Context, operator models.Operator) (bool, error)
	GetByAccountID(ctx context.Context, accountID int64) (*models.Operator, error)
	GetList(ctx context.Context) ([]models.Operator, error)
}

// OperatorService keeps the operators table as the only list of privileged
// accounts.
type OperatorService struct {
	repository OperatorRepositoryI
}

func NewOperatorService(repository OperatorRepositoryI) *OperatorService {
	return &OperatorService{repository: repository}
}

// Seed merges the configured operators once. Rows that already exist are
// left untouched.
func (service *OperatorService) Seed(ctx context.Context, seeds []config.OperatorSeed) (int, error) {
	created := 0
	for _, seed := range seeds {
		operator := models.Operator{AccountID: seed.AccountID, Name: seed.Name}
		if seed.Password != "" {
			if err := operator.HashPassword(seed.Password); err != nil {
				return created, err
			}
		}

		ok, err := service.repository.CreateIfAbsent(ctx, operator)
		if err != nil {
			return created, err
		}
		if ok {
			created++
			logger.Log.Info("operator seeded", zap.Int64("account_id", seed.AccountID))
		}
	}
	return created, nil
}

func (service *OperatorService) Get(ctx context.Context, accountID int64) (*models.Operator, error) {
	return service.repository.GetByAccountID(ctx, accountID)
}

func (service *OperatorService) Login(ctx context.Context, accountID int64, password string) (*models.Operator, error) {
	operator, err := service.repository.GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !operator.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return operator, nil
}
