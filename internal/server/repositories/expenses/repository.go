// Package expenses provides the record-store repository for expense records.
package expenses

import (
	"context"

	"github.com/fintrack/fintrack/internal/server/models"
)

// Repository describes the record-store operations for expenses.
// Mutating writes always leave synced=false; MarkSynced and HardDelete
// are reserved for the synchronizer.
type Repository interface {
	Create(ctx context.Context, expense *models.Expense) error
	Update(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, id string) (*models.Expense, error)
	GetAllActive(ctx context.Context, userID string) ([]models.Expense, error)
	SoftDelete(ctx context.Context, id string) error
	FindUnsynced(ctx context.Context, userID string) ([]models.Expense, error)
	MarkSynced(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
	CountActive(ctx context.Context, userID string) (int, error)
	CountUnsyncedActive(ctx context.Context, userID string) (int, error)
	CountTombstoned(ctx context.Context, userID string) (int, error)
}
