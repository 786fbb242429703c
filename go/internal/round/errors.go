package round

import "errors"

var (
	// ErrInvalidAgeBand rejects room creation with an unknown band.
	ErrInvalidAgeBand = errors.New("invalid age band")

	// ErrInvalidSubmission rejects an answer that doesn't match the
	// room's current round or question shape.
	ErrInvalidSubmission = errors.New("invalid submission")

	// ErrInvalidFeedback rejects a skip with an unknown feedback kind.
	ErrInvalidFeedback = errors.New("invalid feedback kind")

	// ErrDeviceRequired rejects requests without a device identity.
	ErrDeviceRequired = errors.New("device id is required")
)
