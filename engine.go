package esmtp

// An Engine executes the SMTP protocol for a configured session: it
// connects to the configured server, negotiates extensions, submits
// each message in order, records Status values on the graph and invokes
// the registered callbacks. Run is synchronous; the callbacks fire on
// the calling goroutine.
//
// Engines are handed the session by Start, never constructed with one,
// so a single engine may serve many sessions over its lifetime.
type Engine interface {
	Run(s *Session) error
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(s *Session) error

func (fn EngineFunc) Run(s *Session) error {
	return fn(s)
}

// EventKind identifies a protocol-level event reported to the session's
// event callback.
type EventKind int

const (
	// EventConnect fires once the server greeting was accepted.
	EventConnect EventKind = iota

	// EventMailStatus fires when the MAIL FROM reply for a message was
	// recorded.
	EventMailStatus

	// EventRcptStatus fires when the RCPT TO reply for a recipient was
	// recorded.
	EventRcptStatus

	// EventMessageData fires when the data phase of a message begins.
	EventMessageData

	// EventMessageSent fires when the DATA reply for a message was
	// recorded.
	EventMessageSent

	// EventDisconnect fires when the server connection was dropped.
	EventDisconnect
)

func (k EventKind) String() string {
	switch k {
	case EventConnect:
		return "connect"
	case EventMailStatus:
		return "mail status"
	case EventRcptStatus:
		return "rcpt status"
	case EventMessageData:
		return "message data"
	case EventMessageSent:
		return "message sent"
	case EventDisconnect:
		return "disconnect"
	}
	return "unknown"
}

// Event is one protocol-level notification. Message and Recipient are
// nil for events that do not concern one, such as EventConnect.
type Event struct {
	Kind      EventKind
	Message   *Message
	Recipient *Recipient

	// Status carried by the event, for the status-bearing kinds.
	Status Status
}

// EventFunc observes protocol-level events during a running session.
type EventFunc func(ev Event)

// MonitorDirection classifies a protocol trace line.
type MonitorDirection int

const (
	// MonitorRead is a reply line read from the server.
	MonitorRead MonitorDirection = iota

	// MonitorWrite is a command line written to the server.
	MonitorWrite

	// MonitorHeader is a message header line written during the data
	// phase; emitted only when the monitor was registered with headers
	// enabled.
	MonitorHeader
)

func (d MonitorDirection) String() string {
	switch d {
	case MonitorRead:
		return "S"
	case MonitorWrite:
		return "C"
	case MonitorHeader:
		return "H"
	}
	return "?"
}

// MonitorFunc receives raw protocol trace lines, CRLF included.
type MonitorFunc func(dir MonitorDirection, line string)
