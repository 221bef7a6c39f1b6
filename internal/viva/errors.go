package viva

import (
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrInvalidResponse matches every InvalidResponseError via errors.Is.
	ErrInvalidResponse  = errors.New("invalid response from payment gateway")
	ErrMissingParameter = errors.New("missing required parameter")
)

const communicationPrefix = "Error communicating with payment gateway: "

// InvalidResponseError reports a failure to complete the HTTP exchange with the
// gateway: transport errors, unreadable bodies and bodies that are not JSON.
// HTTP error statuses are not InvalidResponseErrors.
type InvalidResponseError struct {
	Message string
	Code    int
	Err     error
}

func (e *InvalidResponseError) Error() string {
	return e.Message
}

func (e *InvalidResponseError) Unwrap() error {
	return e.Err
}

func (e *InvalidResponseError) Is(target error) bool {
	return target == ErrInvalidResponse
}

func newInvalidResponseError(err error) *InvalidResponseError {
	return &InvalidResponseError{
		Message: communicationPrefix + err.Error(),
		Code:    errorCode(err),
		Err:     err,
	}
}

// errorCode digs a numeric code out of err: an explicit Code() method first,
// then a syscall errno such as ECONNREFUSED.
func errorCode(err error) int {
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		return coded.Code()
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}

	return 0
}

func missingParameter(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingParameter, name)
}
