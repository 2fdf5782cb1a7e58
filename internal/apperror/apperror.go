package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAllocationExhausted
	KindUniquenessRaceLost
	KindDanglingReference
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAllocationExhausted:
		return "allocation_exhausted"
	case KindUniquenessRaceLost:
		return "uniqueness_race_lost"
	case KindDanglingReference:
		return "dangling_reference"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal_error"
	}
}

// Error is the typed result every use case returns for expected failures.
// MessageID and Data select a catalog entry when the message is rendered for
// a client; without a MessageID the English Message doubles as the key.
type Error struct {
	Kind      Kind
	Message   string
	MessageID string
	Data      map[string]any
	Fields    map[string]string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrValidation          = &Error{Kind: KindValidation}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrConflict            = &Error{Kind: KindConflict}
	ErrAllocationExhausted = &Error{Kind: KindAllocationExhausted}
	ErrUniquenessRaceLost  = &Error{Kind: KindUniquenessRaceLost}
	ErrDanglingReference   = &Error{Kind: KindDanglingReference}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrForbidden           = &Error{Kind: KindForbidden}
)

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func FieldInvalid(field, message string) *Error {
	return Validation(message, map[string]string{field: message})
}

func NotFound(resource string) *Error {
	return &Error{
		Kind:      KindNotFound,
		Message:   resource + " not found",
		MessageID: "error.not_found",
		Data:      map[string]any{"Resource": resource},
	}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func AllocationExhausted(namespace string, attempts int, err error) *Error {
	return &Error{
		Kind:      KindAllocationExhausted,
		Message:   fmt.Sprintf("no free %s after %d attempts, please retry", namespace, attempts),
		MessageID: "error.allocation_exhausted",
		Data:      map[string]any{"Namespace": namespace, "Attempts": attempts},
		Err:       err,
	}
}

func UniquenessRaceLost(constraint string, err error) *Error {
	return &Error{
		Kind:      KindUniquenessRaceLost,
		Message:   "identifier taken concurrently: " + constraint,
		MessageID: "error.uniqueness_race_lost",
		Data:      map[string]any{"Constraint": constraint},
		Err:       err,
	}
}

func DanglingReference(resource, id string) *Error {
	return &Error{
		Kind:      KindDanglingReference,
		Message:   fmt.Sprintf("%s %s does not exist", resource, id),
		MessageID: "error.dangling_reference",
		Data:      map[string]any{"Resource": resource, "ID": id},
	}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindDanglingReference:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindAllocationExhausted, KindUniquenessRaceLost:
		return http.StatusServiceUnavailable
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
