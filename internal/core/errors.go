package core

import "net/http"

// Kind classifies an error so machine callers can decide whether to retry,
// wait, or abandon. Error messages are contracts here, not prose.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	KindNotMember    Kind = "not_member"
	KindRoomEnded    Kind = "room_ended"
	KindRateLimited  Kind = "rate_limited"
	KindEligibility  Kind = "eligibility"
	KindConflict     Kind = "conflict"
)

// Error is the typed result returned by every failing core operation.
// No core operation panics past its own critical section; a failed call
// leaves all state consistent for the next attempt.
type Error struct {
	Kind       Kind   `json:"kind"`
	Message    string `json:"error"`
	Field      string `json:"field,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"` // whole seconds
	Hint       string `json:"hint,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// HTTPStatus maps the error kind to the status code the HTTP adapter uses.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindNotMember, KindEligibility:
		return http.StatusForbidden
	case KindRoomEnded:
		return http.StatusGone
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errValidation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

func errNotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func errNotMember(msg string) *Error {
	return &Error{Kind: KindNotMember, Message: msg}
}

func errRoomEnded() *Error {
	return &Error{Kind: KindRoomEnded, Message: "Room is no longer active"}
}
