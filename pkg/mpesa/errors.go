package mpesa

import (
	"errors"
	"fmt"
)

// Kind classifies a failure along the STK push chain.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindTokenFetch
	KindPushRequest
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindTokenFetch:
		return "token_fetch"
	case KindPushRequest:
		return "push_request"
	default:
		return "unknown"
	}
}

var (
	ErrConfiguration = errors.New("mpesa: configuration error")
	ErrTokenFetch    = errors.New("mpesa: token fetch failed")
	ErrPushRequest   = errors.New("mpesa: stk push failed")
)

// Error carries the kind of failure plus whatever Daraja sent back.
type Error struct {
	Kind       Kind
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	msg := "mpesa " + e.Kind.String()
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindConfiguration:
		return target == ErrConfiguration
	case KindTokenFetch:
		return target == ErrTokenFetch
	case KindPushRequest:
		return target == ErrPushRequest
	}
	return false
}

// KindOf returns the Kind of err, or KindUnknown if err did not come from this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
