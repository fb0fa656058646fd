package americano

import "errors"

var (
	ErrTooFewPlayers   = errors.New("too few players")
	ErrTooFewCourts    = errors.New("too few courts")
	ErrTooFewRounds    = errors.New("too few rounds")
	ErrDuplicatePlayer = errors.New("duplicate player in roster")
	ErrInvalidOptions  = errors.New("invalid schedule options")
)

// IsValidation reports whether err is one of the precondition failures raised by Generate.
func IsValidation(err error) bool {
	return errors.Is(err, ErrTooFewPlayers) ||
		errors.Is(err, ErrTooFewCourts) ||
		errors.Is(err, ErrTooFewRounds) ||
		errors.Is(err, ErrDuplicatePlayer) ||
		errors.Is(err, ErrInvalidOptions)
}
