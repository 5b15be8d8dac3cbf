package esmtp

import (
	"github.com/google/uuid"
)

// NewEnvelopeID returns a random identifier suitable for
// Message.SetEnvelopeID. The value only uses hexadecimal digits and
// hyphens, so it needs no xtext escaping on the wire.
func NewEnvelopeID() string {
	return uuid.NewString()
}
