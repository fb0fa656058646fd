package usecase

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/americano/internal/domain/americano"
	"github.com/riskibarqy/americano/internal/domain/tournament"
	"github.com/riskibarqy/americano/internal/platform/resilience"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// engineError re-labels schedule precondition failures as invalid input.
func engineError(err error) error {
	if americano.IsValidation(err) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

func repositoryError(op string, err error) error {
	switch {
	case errors.Is(err, tournament.ErrVersionConflict):
		return fmt.Errorf("%w: %s: tournament was modified concurrently", ErrConflict, op)
	case errors.Is(err, resilience.ErrCircuitOpen):
		return fmt.Errorf("%w: %s: %w", ErrDependencyUnavailable, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
