package esmtp

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is wrapped by every validation failure: nil or
	// malformed input, out-of-range values, or a structural precondition
	// violated at Start.
	ErrInvalidArgument = errors.New("esmtp: invalid argument")

	// ErrSessionClosed is returned by operations on a session after
	// Close.
	ErrSessionClosed = errors.New("esmtp: session closed")
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// validateLine checks a value embedded in a command line for CR or LF
// per RFC 5321, closing the command-injection hole.
func validateLine(line string) error {
	if strings.ContainsAny(line, "\n\r") {
		return invalidf("a line must not contain CR or LF")
	}
	return nil
}
