package engine

import (
	"errors"
)

// The engine's error taxonomy. Callers branch on these with errors.Is;
// everything else is an infrastructure failure.
var (
	// ErrInvalidInput flags an out-of-range performance score.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound flags a review for a learner with no profile.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState flags an operation on a closed or unknown session.
	ErrInvalidState = errors.New("invalid state")
)
