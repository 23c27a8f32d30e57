// Package goals provides the record-store repository for savings goals.
package goals

import (
	"context"

	"github.com/fintrack/fintrack/internal/server/models"
)

// Repository describes the record-store operations for savings goals.
// Mutating writes always leave synced=false; MarkSynced and HardDelete
// are reserved for the synchronizer.
type Repository interface {
	Create(ctx context.Context, goal *models.SavingsGoal) error
	Update(ctx context.Context, goal *models.SavingsGoal) error
	GetByID(ctx context.Context, id string) (*models.SavingsGoal, error)
	GetAllActive(ctx context.Context, userID string) ([]models.SavingsGoal, error)
	SoftDelete(ctx context.Context, id string) error
	FindUnsynced(ctx context.Context, userID string) ([]models.SavingsGoal, error)
	MarkSynced(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
	CountActive(ctx context.Context, userID string) (int, error)
	CountUnsyncedActive(ctx context.Context, userID string) (int, error)
	CountTombstoned(ctx context.Context, userID string) (int, error)
}
