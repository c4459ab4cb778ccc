package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrMissingSource reports a table whose primary location was not configured.
	ErrMissingSource = errors.New("missing source location")

	// ErrSourceUnavailable reports a table whose primary and fallback both failed.
	ErrSourceUnavailable = errors.New("source unavailable")
)
