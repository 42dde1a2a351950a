package fancontroller

import "errors"

var (
	// ErrCapabilityUnavailable is returned when the port I/O driver could not be loaded or initialized
	ErrCapabilityUnavailable = errors.New("port I/O capability unavailable")
	// ErrNotInitialized is returned when an operation is attempted before Initialize succeeded
	ErrNotInitialized = errors.New("fan controller not initialized")
	// ErrInvalidArgument is returned for a configuration that cannot be written
	ErrInvalidArgument = errors.New("invalid fan configuration")
	// ErrTransactionFault is returned when an EC transaction failed part way through an operation
	ErrTransactionFault = errors.New("EC transaction fault")
	// ErrPartialApply marks a non-fatal warning: a live register update was skipped
	ErrPartialApply = errors.New("partial apply")
)
