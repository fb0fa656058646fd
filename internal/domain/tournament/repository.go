package tournament

import (
	"context"
	"errors"
)

// ErrVersionConflict is returned by Update when the stored version moved on.
var ErrVersionConflict = errors.New("tournament version conflict")

// Repository describes tournament persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, t Tournament) error
	GetByID(ctx context.Context, id string) (Tournament, bool, error)
	List(ctx context.Context) ([]Tournament, error)
	// Update stores t when the stored version equals t.Version and bumps the version by one.
	Update(ctx context.Context, t Tournament) error
}
