package services

import "errors"

// ValidationError aborts an operation before any state change and is
// surfaced to the invoking user as a field-level message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AsValidation unwraps a ValidationError if err carries one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
