// Package budgets provides the record-store repository for budget records.
package budgets

import (
	"context"

	"github.com/fintrack/fintrack/internal/server/models"
)

// Repository describes the record-store operations for budgets.
// Mutating writes always leave synced=false; MarkSynced and HardDelete
// are reserved for the synchronizer.
type Repository interface {
	Create(ctx context.Context, budget *models.Budget) error
	Update(ctx context.Context, budget *models.Budget) error
	GetByID(ctx context.Context, id string) (*models.Budget, error)
	GetAllActive(ctx context.Context, userID string) ([]models.Budget, error)
	SoftDelete(ctx context.Context, id string) error
	FindUnsynced(ctx context.Context, userID string) ([]models.Budget, error)
	MarkSynced(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
	CountActive(ctx context.Context, userID string) (int, error)
	CountUnsyncedActive(ctx context.Context, userID string) (int, error)
	CountTombstoned(ctx context.Context, userID string) (int, error)

	// UpdateSpent writes the derived spent value. It counts as a mutation,
	// so the row is left unsynced.
	UpdateSpent(ctx context.Context, id string, spent float64) error
}
