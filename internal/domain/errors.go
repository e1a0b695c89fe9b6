package domain

import "errors"

var (
	// ErrNotFound: the requested bank or review set does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable: model inference could not run. Records proceed
	// without a model-side result; never fatal to a batch.
	ErrUnavailable = errors.New("inference unavailable")
)
