package storage

import (
	"context"

	"github.com/meridianfi/txlifecycle/pkg/models"
)

// PositionStore defines the interface for managing staked positions.
type PositionStore interface {
	// PutPosition stores a new or updated stake position.
	PutPosition(ctx context.Context, pos *models.StakePosition) error

	// GetPosition retrieves a stake position by its ID.
	GetPosition(ctx context.Context, id string) (*models.StakePosition, error)

	// ListPositions retrieves all stake positions for an owner.
	ListPositions(ctx context.Context, owner string) ([]models.StakePosition, error)
}
