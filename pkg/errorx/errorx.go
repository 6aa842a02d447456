package errorx

import "fmt"

type Code int

const (
	// Common codes
	BadRequest      Code = 100001
	NotFound        Code = 100002
	Unauthenticated Code = 100003
	Unavailable     Code = 100004
	Internal        Code = 100005

	// Mutation codes. TransportFailed covers network, timeout and non-2xx
	// responses. Rejected covers a structured error list returned by the
	// server. Canceled marks a superseded in-flight mutation; it is neither
	// a success nor a failure and must not trigger a rollback.
	TransportFailed Code = 200001
	Rejected        Code = 200002
	Canceled        Code = 200003
)

var Unknown = Error{Code: 100000, Message: "Request failed"}

type Error struct {
	Code    Code
	Message string
}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

func (e Error) Error() string {
	return e.Message
}

func (e Error) Is(target error) bool {
	if t, ok := target.(Error); ok {
		return e.Code == t.Code
	}
	return false
}
