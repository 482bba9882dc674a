package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
	"github.com/aliskhannn/examprep-bot/internal/infra/postgres/repository"
)

// ResetService wipes a user's stored state: credentials and settings.
type ResetService struct {
	tr     Transactor
	logger *zap.Logger
}

func NewResetService(
	tr Transactor,
	logger *zap.Logger,
) *ResetService {
	return &ResetService{
		tr:     tr,
		logger: logger,
	}
}

// ResetUser logs the user out and restores default settings in one transaction.
func (s *ResetService) ResetUser(ctx context.Context, userID int64) error {
	err := s.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		userRepo := repository.NewUserRepository(tx)
		settingsRepo := repository.NewSettingsRepository(tx)

		if err := userRepo.ClearCredentials(ctx, userID); err != nil {
			return fmt.Errorf("clear credentials: %w", err)
		}

		if err := settingsRepo.Save(ctx, entities.NewUserSettings(userID)); err != nil {
			return fmt.Errorf("reset settings: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("user reset", zap.Int64("user_id", userID))
	return nil
}
