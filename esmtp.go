// Package esmtp implements the configuration surface of an SMTP
// mail-submission client as defined in RFC 5321 and RFC 6409.
//
// A Session describes one submission run: the server to contact, the
// local name to greet with, and an ordered set of Messages, each with
// its own reverse path and ordered Recipients. Options map onto the
// following extensions:
//
//   - 8BITMIME (RFC 1652)
//   - SIZE (RFC 1870)
//   - DSN (RFC 3461)
//   - DELIVERBY (RFC 2852)
//   - AUTH (RFC 4954)
//   - STARTTLS (RFC 3207)
//
// The package does not speak the wire protocol itself. A configured
// Session is handed to an Engine, which executes the protocol,
// populates Status records and invokes the registered callbacks.
package esmtp

// Extension identifies a protocol extension a session has come to
// require through the options set on it.
type Extension uint

const (
	ExtDSN Extension = 1 << iota
	Ext8BitMIME
	ExtBinaryMIME
	ExtSize
	ExtDeliverBy
	ExtAuth
	ExtStartTLS
)

var extensionNames = []struct {
	bit  Extension
	name string
}{
	{ExtDSN, "DSN"},
	{Ext8BitMIME, "8BITMIME"},
	{ExtBinaryMIME, "BINARYMIME"},
	{ExtSize, "SIZE"},
	{ExtDeliverBy, "DELIVERBY"},
	{ExtAuth, "AUTH"},
	{ExtStartTLS, "STARTTLS"},
}

// Contains reports whether every extension in exts is present.
func (e Extension) Contains(exts Extension) bool {
	return e&exts == exts
}

func (e Extension) String() string {
	if e == 0 {
		return "<none>"
	}
	s := ""
	for _, ext := range extensionNames {
		if e&ext.bit == 0 {
			continue
		}
		if s != "" {
			s += " "
		}
		s += ext.name
	}
	return s
}

type BodyType string

const (
	BodyNotSet     BodyType = ""
	Body7Bit       BodyType = "7BIT"
	Body8BitMIME   BodyType = "8BITMIME"
	BodyBinaryMIME BodyType = "BINARYMIME"
)

func (b BodyType) valid() bool {
	switch b {
	case BodyNotSet, Body7Bit, Body8BitMIME, BodyBinaryMIME:
		return true
	}
	return false
}

type DSNReturn string

const (
	DSNReturnNotSet  DSNReturn = ""
	DSNReturnFull    DSNReturn = "FULL"
	DSNReturnHeaders DSNReturn = "HDRS"
)

func (r DSNReturn) valid() bool {
	switch r {
	case DSNReturnNotSet, DSNReturnFull, DSNReturnHeaders:
		return true
	}
	return false
}

// DSNNotify is a set of NOTIFY= conditions for a recipient. The zero
// value means the parameter is not sent at all.
type DSNNotify uint

const (
	DSNNotifySuccess DSNNotify = 1 << iota
	DSNNotifyFailure
	DSNNotifyDelayed
	// DSNNotifyNever must not be combined with any other condition.
	DSNNotifyNever

	DSNNotifyNotSet DSNNotify = 0
)

func (n DSNNotify) valid() bool {
	if n&^(DSNNotifySuccess|DSNNotifyFailure|DSNNotifyDelayed|DSNNotifyNever) != 0 {
		return false
	}
	if n&DSNNotifyNever != 0 && n != DSNNotifyNever {
		return false
	}
	return true
}

func (n DSNNotify) String() string {
	switch {
	case n == DSNNotifyNotSet:
		return "<not set>"
	case n == DSNNotifyNever:
		return "NEVER"
	}
	s := ""
	for _, f := range []struct {
		bit  DSNNotify
		name string
	}{
		{DSNNotifySuccess, "SUCCESS"},
		{DSNNotifyFailure, "FAILURE"},
		{DSNNotifyDelayed, "DELAY"},
	} {
		if n&f.bit == 0 {
			continue
		}
		if s != "" {
			s += ","
		}
		s += f.name
	}
	return s
}

// DSNAddressType is the address type of an ORCPT= original recipient.
type DSNAddressType string

const (
	DSNAddressTypeRFC822 DSNAddressType = "rfc822"
	DSNAddressTypeUTF8   DSNAddressType = "utf-8"
)

// DeliverByMode selects the DELIVERBY by-mode semantics.
type DeliverByMode string

const (
	DeliverByNotSet DeliverByMode = ""
	DeliverByNotify DeliverByMode = "N"
	DeliverByReturn DeliverByMode = "R"
)

func (m DeliverByMode) valid() bool {
	switch m {
	case DeliverByNotSet, DeliverByNotify, DeliverByReturn:
		return true
	}
	return false
}

// MaxDeliverByTime bounds the DELIVERBY deadline, in seconds, in either
// direction per RFC 2852.
const MaxDeliverByTime = 999999999

// TLSPolicy states how the engine should treat STARTTLS. The zero value
// upgrades the connection when the server offers it.
type TLSPolicy int

const (
	TLSOpportunistic TLSPolicy = iota
	TLSMandatory
	TLSNone
)

func (p TLSPolicy) valid() bool {
	switch p {
	case TLSOpportunistic, TLSMandatory, TLSNone:
		return true
	}
	return false
}

func (p TLSPolicy) String() string {
	switch p {
	case TLSOpportunistic:
		return "opportunistic"
	case TLSMandatory:
		return "mandatory"
	case TLSNone:
		return "none"
	}
	return "invalid"
}

// MailOptions carries the MAIL FROM parameters of a message in the form
// an engine emits them.
type MailOptions struct {
	// Value of BODY= argument, 7BIT, 8BITMIME or BINARYMIME.
	Body BodyType

	// Size of the body. Can be 0 if no estimate was set.
	Size int64

	// Value of RET= argument, FULL or HDRS.
	Return DSNReturn

	// Envelope identifier for DSN correlation.
	EnvelopeID string

	// DELIVERBY deadline in seconds, by-mode and trace modifier.
	ByTime  int64
	ByMode  DeliverByMode
	ByTrace bool
}

// RcptOptions carries the RCPT TO parameters of a recipient in the form
// an engine emits them.
type RcptOptions struct {
	// Value of NOTIFY= argument, NEVER or a combination of SUCCESS,
	// FAILURE and DELAY.
	Notify DSNNotify

	// Original recipient as set by the application.
	OriginalRecipientType DSNAddressType
	OriginalRecipient     string
}
