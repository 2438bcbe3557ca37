package fleetcontrol

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCustomerSkipped is matched by every per-customer failure. A run logs
// these and moves on to the next customer.
var ErrCustomerSkipped = errors.New("customer skipped")

// FetchFailure is a non-200 response from the API, or a request that never
// got a response (StatusCode 0, Err set).
type FetchFailure struct {
	Customer   string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] request failed: %v", e.Customer, e.Err)
	}
	return fmt.Sprintf("[%s] HTTP %d error: %s", e.Customer, e.StatusCode, e.Body)
}

func (e *FetchFailure) Unwrap() error {
	return e.Err
}

func (e *FetchFailure) Is(target error) bool {
	return target == ErrCustomerSkipped
}

// NoDataFailure is a 200 response whose top-level data field is missing or
// null, which the API uses to signal GraphQL errors.
type NoDataFailure struct {
	Customer string
	Body     string
	Errors   []string
}

func (e *NoDataFailure) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("[%s] No data returned: %s", e.Customer, strings.Join(e.Errors, "; "))
	}
	return fmt.Sprintf("[%s] No data returned. Full response: %s", e.Customer, e.Body)
}

func (e *NoDataFailure) Is(target error) bool {
	return target == ErrCustomerSkipped
}
