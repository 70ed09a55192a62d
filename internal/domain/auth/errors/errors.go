package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInternal         = errors.New("internal error")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrMissingSecret    = errors.New("token secret is not configured")
	ErrTokenMissing     = errors.New("token missing")
	ErrTokenMalformed   = errors.New("token malformed")
	ErrTokenExpired     = errors.New("token expired")
	ErrUnsupportedField = errors.New("unsupported field")
)

// FieldErrors maps a field name to a human readable message.
type FieldErrors map[string]string

func (f FieldErrors) Empty() bool { return len(f) == 0 }

func (f FieldErrors) String() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return strings.Join(parts, "; ")
}

// UserInputError is a field-level problem the caller can fix.
type UserInputError struct {
	Message string
	Errors  FieldErrors
}

func NewUserInput(msg string, fields FieldErrors) *UserInputError {
	return &UserInputError{Message: msg, Errors: fields}
}

func (e *UserInputError) Error() string {
	if e.Errors.Empty() {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Errors)
}

func (e *UserInputError) Unwrap() error { return ErrInvalidArgument }

// AuthenticationError carries no field detail. The cause is kept for logs only.
type AuthenticationError struct {
	Message string
	Cause   error
}

func NewUnauthenticated(cause error) *AuthenticationError {
	return &AuthenticationError{Message: "Unauthenticated", Cause: cause}
}

func (e *AuthenticationError) Error() string { return e.Message }

func (e *AuthenticationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrUnauthenticated}
	}
	return []error{ErrUnauthenticated, e.Cause}
}

// ConstraintError is returned by stores when a uniqueness constraint is violated.
type ConstraintError struct {
	Fields []string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("unique constraint violated on %s", strings.Join(e.Fields, ", "))
}

func (e *ConstraintError) Unwrap() error { return ErrAlreadyExists }

// StoreValidationError is returned by stores that reject a record's field values.
type StoreValidationError struct {
	Errors FieldErrors
}

func (e *StoreValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Errors)
}

func (e *StoreValidationError) Unwrap() error { return ErrInvalidArgument }

func NewInvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

func WrapInternal(err error, context string) error {
	return fmt.Errorf("%w: %s: %w", ErrInternal, context, err)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

func IsInvalidPassword(err error) bool {
	return errors.Is(err, ErrInvalidPassword)
}

// AsUserInput extracts field errors from err, if it carries any.
func AsUserInput(err error) (*UserInputError, bool) {
	var uie *UserInputError
	if errors.As(err, &uie) {
		return uie, true
	}
	return nil, false
}
