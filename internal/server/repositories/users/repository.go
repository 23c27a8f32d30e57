// Package users provides the record-store repository for user accounts.
package users

import (
	"context"

	"github.com/fintrack/fintrack/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
}
