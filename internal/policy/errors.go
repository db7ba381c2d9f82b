package policy

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrInvalidRequest is returned when a request fails validation.
	ErrInvalidRequest = constError("invalid policy request")

	// ErrUnknownPolicyType is returned by ParseType for unrecognized names.
	ErrUnknownPolicyType = constError("unknown policy type")
)

// ValidationError reports the first field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap lets callers match ErrInvalidRequest with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}
