// Package incomes provides the record-store repository for income records.
package incomes

import (
	"context"

	"github.com/fintrack/fintrack/internal/server/models"
)

// Repository describes the record-store operations for incomes.
//
// Every mutating write (Create, Update, SoftDelete) leaves the record with
// synced=false so the synchronizer picks it up on the next run. MarkSynced
// and HardDelete are reserved for the synchronizer.
type Repository interface {
	Create(ctx context.Context, income *models.Income) error
	Update(ctx context.Context, income *models.Income) error
	GetByID(ctx context.Context, id string) (*models.Income, error)
	GetAllActive(ctx context.Context, userID string) ([]models.Income, error)

	// SoftDelete turns the record into a tombstone (deleted=1, synced=0).
	SoftDelete(ctx context.Context, id string) error

	// FindUnsynced returns all records with synced=0, tombstones included.
	FindUnsynced(ctx context.Context, userID string) ([]models.Income, error)

	MarkSynced(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error

	CountActive(ctx context.Context, userID string) (int, error)
	CountUnsyncedActive(ctx context.Context, userID string) (int, error)
	CountTombstoned(ctx context.Context, userID string) (int, error)
}
