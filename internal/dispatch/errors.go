package dispatch

import "errors"

var (
	// ErrSendFailed wraps transport failures other than agent unavailability.
	// The original transport error remains in the chain.
	ErrSendFailed = errors.New("dispatch: send failed")

	// ErrInterception wraps failures of a delivery override. No fallback
	// retry is attempted.
	ErrInterception = errors.New("dispatch: delivery interceptor failed")
)
