package esmtp

// A Recipient is one envelope recipient of a Message. It is created by
// Message.AddRecipient with its mailbox, which cannot change afterwards.
type Recipient struct {
	message *Message

	mailbox  string
	status   Status
	complete bool

	notify    DSNNotify
	orcptType DSNAddressType
	orcpt     string

	appData interface{}
}

// Message returns the owning message.
func (r *Recipient) Message() *Message {
	return r.message
}

// Mailbox returns the recipient's mailbox.
func (r *Recipient) Mailbox() string {
	return r.mailbox
}

// SetDSNNotify sets the DSN NOTIFY conditions and marks the session as
// requiring the DSN extension. NEVER cannot be combined with any other
// condition. DSNNotifyNotSet clears the parameter without retracting
// the requirement.
func (r *Recipient) SetDSNNotify(flags DSNNotify) error {
	if r.message.session.closed {
		return ErrSessionClosed
	}
	if !flags.valid() {
		return invalidf("invalid NOTIFY value %q", flags.String())
	}
	r.notify = flags
	if flags != DSNNotifyNotSet {
		r.message.session.Require(ExtDSN)
	}
	return nil
}

// SetOriginalRecipient sets the DSN ORCPT address type and original
// recipient as one atomic pair; a failed check leaves both unset. The
// session is marked as requiring the DSN extension.
func (r *Recipient) SetOriginalRecipient(addrType DSNAddressType, address string) error {
	if r.message.session.closed {
		return ErrSessionClosed
	}
	if addrType == "" {
		return invalidf("empty ORCPT address type")
	}
	if err := validateLine(string(addrType)); err != nil {
		return err
	}
	if address == "" {
		return invalidf("empty ORCPT address")
	}
	if err := validateLine(address); err != nil {
		return err
	}
	r.orcptType = addrType
	r.orcpt = address
	r.message.session.Require(ExtDSN)
	return nil
}

// RcptOptions assembles the RCPT TO parameters for the engine.
func (r *Recipient) RcptOptions() RcptOptions {
	return RcptOptions{
		Notify:                r.notify,
		OriginalRecipientType: r.orcptType,
		OriginalRecipient:     r.orcpt,
	}
}

// Status returns the outcome the engine recorded for the RCPT command.
func (r *Recipient) Status() Status {
	return r.status
}

// Complete reports whether the engine finished processing this
// recipient, accepted or not.
func (r *Recipient) Complete() bool {
	return r.complete
}

// ResetStatus clears the recorded outcome and the completion flag so
// the recipient can be retried in a later run.
func (r *Recipient) ResetStatus() error {
	if r.message.session.closed {
		return ErrSessionClosed
	}
	r.status.reset()
	r.complete = false
	return nil
}

// SetStatus records the RCPT outcome. Engine-side.
func (r *Recipient) SetStatus(st Status) {
	r.status = st
}

// MarkComplete flags the recipient as processed. Engine-side.
func (r *Recipient) MarkComplete() {
	r.complete = true
}

// SetApplicationData associates an opaque application value with the
// recipient and returns the previous one.
func (r *Recipient) SetApplicationData(v interface{}) (prev interface{}) {
	prev = r.appData
	r.appData = v
	return prev
}

// ApplicationData returns the associated application value.
func (r *Recipient) ApplicationData() interface{} {
	return r.appData
}
