package services

// Service errors
var (
	ErrPasswordMismatch = &ServiceError{Message: "current password is incorrect"}
	ErrWeakPassword     = &ServiceError{Message: "new password must be at least 6 characters"}
	ErrMissingUsername  = &ServiceError{Message: "new username must not be empty"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}
