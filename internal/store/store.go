package store

import (
	"context"

	"joinsync/internal/models"
)

// Store is the system of record for join requests.
type Store interface {
	// FindAll returns every join request, validated.
	FindAll(ctx context.Context) ([]models.JoinRequest, error)

	// ConditionalUpdateStatus sets next on the request with telegramID only if
	// its status is currently expected. It returns the updated request, or nil
	// when nothing matched.
	ConditionalUpdateStatus(ctx context.Context, telegramID string, expected, next models.Status) (*models.JoinRequest, error)

	Close(ctx context.Context) error
}
