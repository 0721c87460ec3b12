package wiki

import (
	"errors"
	"fmt"
)

// Error codes for programmatic error handling
type ErrorCode string

const (
	// Authentication error codes
	AuthCodeInvalidCredentials ErrorCode = "AUTH_INVALID_CREDENTIALS"
	AuthCodeTokenExpired       ErrorCode = "AUTH_TOKEN_EXPIRED"
	AuthCodePermissionDenied   ErrorCode = "AUTH_PERMISSION_DENIED"

	// Validation error codes
	ValidationCodeInvalid  ErrorCode = "VALIDATION_INVALID"
	ValidationCodeTooLarge ErrorCode = "VALIDATION_TOO_LARGE"

	// Not found error codes
	NotFoundCodePage ErrorCode = "NOT_FOUND_PAGE"
)

// APIError is an error object returned by the MediaWiki API itself
// (the "error" member of an action API response).
type APIError struct {
	Code string
	Info string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mediawiki API error [%s]: %s", e.Code, e.Info)
}

// IsAPIError reports whether err is an API error with the given code.
func IsAPIError(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// ValidationError represents a content or input validation failure
type ValidationError struct {
	Code    ErrorCode
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] validation failed for %s: %s", e.Code, e.Field, e.Message)
}

// AuthenticationError indicates an authentication failure
type AuthenticationError struct {
	Code      ErrorCode
	Operation string
	Reason    string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("[%s] authentication failed for %s: %s", e.Code, e.Operation, e.Reason)
}

// PageNotFoundError indicates a requested page does not exist
type PageNotFoundError struct {
	Title string
}

func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("[%s] page %q does not exist", NotFoundCodePage, e.Title)
}

// MaxEditSize is the largest edit content accepted before the request is
// rejected client-side
const MaxEditSize = 2 * 1024 * 1024

// ValidateContentSize checks if content is within size limits
func ValidateContentSize(content, title string, maxSize int) error {
	if len(content) > maxSize {
		return &ValidationError{
			Code:    ValidationCodeTooLarge,
			Field:   "content",
			Message: fmt.Sprintf("edit to %q is %d bytes (max %d)", title, len(content), maxSize),
		}
	}
	return nil
}
