package errs

import "fmt"

// ValidationError is raised when user input fails validation. The message is
// safe to show to the user and must name the offending field/operator/value.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation creates a ValidationError with a fixed message.
func Validation(message string) error {
	return &ValidationError{Message: message}
}

// Validationf creates a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError is raised when a requested resource does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func NotFoundf(format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// AccessDeniedError is raised when a user has no access to a resource.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

func AccessDenied(message string) error {
	return &AccessDeniedError{Message: message}
}
