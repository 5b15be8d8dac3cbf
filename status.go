package esmtp

import (
	"fmt"
	"strconv"
	"strings"
)

// EnhancedCode is an enhanced status code per RFC 2034, X.Y.Z.
type EnhancedCode [3]int

func (c EnhancedCode) String() string {
	return fmt.Sprintf("%d.%d.%d", c[0], c[1], c[2])
}

// ParseEnhancedCode parses "X.Y.Z" into an EnhancedCode.
func ParseEnhancedCode(s string) (EnhancedCode, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return EnhancedCode{}, fmt.Errorf("wrong amount of enhanced code parts")
	}

	code := EnhancedCode{}
	for i, part := range parts {
		num, err := strconv.Atoi(part)
		if err != nil {
			return code, err
		}
		code[i] = num
	}
	return code, nil
}

// Status is the protocol outcome recorded against a server greeting, a
// reverse path, a message transfer or a recipient. It is written only
// by the engine running the session; the application reads it after the
// run and may reset it before reusing the graph.
type Status struct {
	// SMTP reply code, 0 until the engine has recorded an outcome.
	Code int

	// Enhanced status code, all zero if the server sent none.
	EnhancedCode EnhancedCode

	// Reply text with the code stripped.
	Text string
}

// IsSet reports whether the engine has recorded an outcome.
func (st Status) IsSet() bool {
	return st.Code != 0
}

func (st Status) String() string {
	if !st.IsSet() {
		return "<not set>"
	}
	return fmt.Sprintf("%d %s", st.Code, st.Text)
}

func (st *Status) reset() {
	*st = Status{}
}
