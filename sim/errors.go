package sim

import "errors"

// Engines wrap these with fmt.Errorf("%w: ...") to add context; test with errors.Is.
// A call that returns one of them has not modified engine state.
var (
	// ErrInvalidConfiguration reports a bad capacity, unknown policy,
	// non-positive actor count, malformed job, or unknown subject id.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEmptyQueue reports that an operation requiring a pending item found none.
	ErrEmptyQueue = errors.New("empty queue")

	// ErrAlreadyInService reports a dispatch attempted while a job is running.
	ErrAlreadyInService = errors.New("already in service")

	// ErrInvalidTransition reports a call made from a state where it is not legal.
	ErrInvalidTransition = errors.New("invalid transition")
)
