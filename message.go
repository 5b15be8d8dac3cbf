package esmtp

import (
	"io"
)

// MessageFunc supplies the message body to the engine during the data
// phase. It is called once per submission attempt; the returned reader
// must yield an RFC 5322 message, headers first. State the callback
// needs should be captured in its closure.
type MessageFunc func(m *Message) (io.Reader, error)

// A Message is one envelope/DATA transaction within a session. It is
// created by Session.AddMessage and lives until the session is closed.
type Message struct {
	session *Session

	reversePath       string
	reversePathStatus Status
	transferStatus    Status

	recipients []*Recipient

	dsnReturn    DSNReturn
	envelopeID   string
	sizeEstimate int64
	body         BodyType

	byTime  int64
	byMode  DeliverByMode
	byTrace bool

	handler MessageFunc
	closers []io.Closer
	appData interface{}
}

// Session returns the owning session.
func (m *Message) Session() *Session {
	return m.session
}

// SetReversePath sets the envelope sender. The empty string selects the
// null sender <>, which is also the state of a new message.
func (m *Message) SetReversePath(mailbox string) error {
	if m.session.closed {
		return ErrSessionClosed
	}
	if err := validateLine(mailbox); err != nil {
		return err
	}
	m.reversePath = mailbox
	return nil
}

// ReversePath returns the envelope sender, empty for the null sender.
func (m *Message) ReversePath() string {
	return m.reversePath
}

// SetDSNReturn sets the DSN RET parameter and marks the session as
// requiring the DSN extension.
func (m *Message) SetDSNReturn(ret DSNReturn) error {
	if m.session.closed {
		return ErrSessionClosed
	}
	if !ret.valid() {
		return invalidf("unknown RET value %q", string(ret))
	}
	m.dsnReturn = ret
	if ret != DSNReturnNotSet {
		m.session.Require(ExtDSN)
	}
	return nil
}

// SetEnvelopeID sets the DSN envelope identifier and marks the session
// as requiring the DSN extension. The identifier must be non-empty; see
// NewEnvelopeID for a generator.
func (m *Message) SetEnvelopeID(envid string) error {
	if m.session.closed {
		return ErrSessionClosed
	}
	if envid == "" {
		return invalidf("empty envelope identifier")
	}
	if err := validateLine(envid); err != nil {
		return err
	}
	m.envelopeID = envid
	m.session.Require(ExtDSN)
	return nil
}

// SetSizeEstimate declares the approximate message size in octets for
// the SIZE parameter. Zero clears the declaration.
func (m *Message) SetSizeEstimate(size int64) error {
	if m.session.closed {
		return ErrSessionClosed
	}
	if size < 0 {
		return invalidf("negative size estimate %d", size)
	}
	m.sizeEstimate = size
	if size > 0 {
		m.session.Require(ExtSize)
	}
	return nil
}

// SetBody declares the body encoding for the BODY parameter and marks
// the session as requiring 8BITMIME or BINARYMIME accordingly.
func (m *Message) SetBody(body BodyType) error {
	if m.session.closed {
		return ErrSessionClosed
	}
	if !body.valid() {
		return invalidf("unknown BODY value %q", string(body))
	}
	m.body = body
	switch body {
	case Body8BitMIME:
		m.session.Require(Ext8BitMIME)
	case BodyBinaryMIME:
		m.session.Require(ExtBinaryMIME)
	}
	return nil
}

// SetDeliverBy sets the DELIVERBY deadline in seconds, the by-mode and
// the trace modifier, as one atomic update. The deadline must lie in
// [-MaxDeliverByTime, MaxDeliverByTime], and return mode requires a
// strictly positive deadline; a failed check leaves all three values
// untouched.
func (m *Message) SetDeliverBy(seconds int64, mode DeliverByMode, trace bool) error {
	if m.session.closed {
		return ErrSessionClosed
	}
	if !mode.valid() {
		return invalidf("unknown DELIVERBY mode %q", string(mode))
	}
	if seconds < -MaxDeliverByTime || seconds > MaxDeliverByTime {
		return invalidf("DELIVERBY deadline %d out of range", seconds)
	}
	if mode == DeliverByReturn && seconds <= 0 {
		return invalidf("DELIVERBY return mode requires a positive deadline")
	}
	m.byTime = seconds
	m.byMode = mode
	m.byTrace = trace
	if mode != DeliverByNotSet {
		m.session.Require(ExtDeliverBy)
	}
	return nil
}

// DeliverBy returns the stored DELIVERBY parameters.
func (m *Message) DeliverBy() (seconds int64, mode DeliverByMode, trace bool) {
	return m.byTime, m.byMode, m.byTrace
}

// SetHandler registers the mandatory transfer callback. Start refuses a
// session containing any message without one.
func (m *Message) SetHandler(fn MessageFunc) error {
	if m.session.closed {
		return ErrSessionClosed
	}
	if fn == nil {
		return invalidf("nil transfer handler")
	}
	m.handler = fn
	return nil
}

// Handler returns the registered transfer callback, or nil.
func (m *Message) Handler() MessageFunc {
	return m.handler
}

// MailOptions assembles the MAIL FROM parameters for the engine.
func (m *Message) MailOptions() MailOptions {
	return MailOptions{
		Body:       m.body,
		Size:       m.sizeEstimate,
		Return:     m.dsnReturn,
		EnvelopeID: m.envelopeID,
		ByTime:     m.byTime,
		ByMode:     m.byMode,
		ByTrace:    m.byTrace,
	}
}

// AddRecipient appends a recipient with the given mailbox, which is
// mandatory and immutable. Recipients are visited, and submitted, in
// the order they were added.
func (m *Message) AddRecipient(mailbox string) (*Recipient, error) {
	if m.session.closed {
		return nil, ErrSessionClosed
	}
	if mailbox == "" {
		return nil, invalidf("empty recipient mailbox")
	}
	if err := validateLine(mailbox); err != nil {
		return nil, err
	}
	r := &Recipient{message: m, mailbox: mailbox}
	m.recipients = append(m.recipients, r)
	return r, nil
}

// ForEachRecipient calls fn once per recipient in creation order,
// supplying each recipient's mailbox. The recipient list must not be
// mutated during the traversal.
func (m *Message) ForEachRecipient(fn func(r *Recipient, mailbox string)) error {
	if fn == nil {
		return invalidf("nil visitor")
	}
	for _, r := range m.recipients {
		fn(r, r.mailbox)
	}
	return nil
}

// Recipients returns the recipients in creation order.
func (m *Message) Recipients() []*Recipient {
	out := make([]*Recipient, len(m.recipients))
	copy(out, m.recipients)
	return out
}

// TransferStatus returns the outcome the engine recorded for the DATA
// transaction.
func (m *Message) TransferStatus() Status {
	return m.transferStatus
}

// ReversePathStatus returns the outcome the engine recorded for the
// MAIL FROM command.
func (m *Message) ReversePathStatus() Status {
	return m.reversePathStatus
}

// ResetStatus clears both the reverse-path and transfer outcomes so the
// message can be resubmitted in a later run.
func (m *Message) ResetStatus() error {
	if m.session.closed {
		return ErrSessionClosed
	}
	m.reversePathStatus.reset()
	m.transferStatus.reset()
	return nil
}

// SetTransferStatus records the DATA outcome. Engine-side.
func (m *Message) SetTransferStatus(st Status) {
	m.transferStatus = st
}

// SetReversePathStatus records the MAIL FROM outcome. Engine-side.
func (m *Message) SetReversePathStatus(st Status) {
	m.reversePathStatus = st
}

// RegisterCloser attaches a resource to be released when the session is
// closed, such as an engine's header table or an open body source.
func (m *Message) RegisterCloser(c io.Closer) {
	if c != nil {
		m.closers = append(m.closers, c)
	}
}

// SetApplicationData associates an opaque application value with the
// message and returns the previous one.
func (m *Message) SetApplicationData(v interface{}) (prev interface{}) {
	prev = m.appData
	m.appData = v
	return prev
}

// ApplicationData returns the associated application value.
func (m *Message) ApplicationData() interface{} {
	return m.appData
}
