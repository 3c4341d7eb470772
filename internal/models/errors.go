package models

import "errors"

// Error kinds shared by the template store, the overlay and the aggregator.
// Producers wrap them with context; callers match with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrUnknownReference = errors.New("unknown reference")
	ErrInvalidTemplate  = errors.New("invalid template")
	ErrInvalidStatus    = errors.New("invalid status")
)
