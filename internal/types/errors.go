package types

import "errors"

// Input validation failures. These abort a run before any request is sent.
var (
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrInvalidPeriod      = errors.New("invalid report period")
	ErrMissingCredentials = errors.New("missing customer credentials")
)
