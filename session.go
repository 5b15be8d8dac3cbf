package esmtp

import (
	"crypto/tls"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/sirupsen/logrus"
)

// DefaultPort is the submission port used when SetServer is given no
// service, per RFC 6409.
const DefaultPort = 587

// A Session describes one submission run. It owns its Messages, which
// in turn own their Recipients; the whole graph is configured up front,
// handed to an Engine by Start and torn down by Close.
//
// A Session and everything it owns is confined to a single goroutine.
// Nothing in the graph may be mutated while an engine is running it.
type Session struct {
	host      string
	port      int
	localName string

	messages []*Message
	required Extension

	engine Engine

	auth      sasl.Client
	tlsPolicy TLSPolicy
	tlsConfig *tls.Config

	eventFn        EventFunc
	monitorFn      MonitorFunc
	monitorHeaders bool

	logger logrus.FieldLogger

	appData      interface{}
	serverStatus Status

	closers []io.Closer
	closed  bool

	// Time the engine waits for command responses (this includes the
	// 3xx reply to DATA).
	CommandTimeout time.Duration

	// Time the engine waits for responses after the final dot.
	SubmissionTimeout time.Duration
}

// NewSession returns an empty session. The server, an engine and at
// least one message must be attached before Start.
func NewSession() *Session {
	return &Session{
		logger: logrus.StandardLogger(),
		// As recommended by RFC 5321. For the DATA command reply (the
		// 3xx one) RFC recommends a slightly shorter timeout but we do
		// not bother differentiating these.
		CommandTimeout: 5 * time.Minute,
		// 10 minutes + 2 minute buffer in case the server is doing
		// transparent forwarding and also follows recommended timeouts.
		SubmissionTimeout: 12 * time.Minute,
	}
}

// SetServer sets the submission server as "host[:service]". The service
// may be a decimal port or a name known to the service database; when
// omitted the submission port 587 is used. Calling SetServer again
// replaces the previous server.
func (s *Session) SetServer(hostport string) error {
	if s.closed {
		return ErrSessionClosed
	}
	if hostport == "" {
		return invalidf("empty server specification")
	}
	if err := validateLine(hostport); err != nil {
		return err
	}

	host, service, err := net.SplitHostPort(hostport)
	if err != nil {
		// No service part at all, e.g. "mail.example.org" or "[::1]".
		host = trimBrackets(hostport)
		service = ""
	}
	if host == "" {
		return invalidf("empty host in %q", hostport)
	}

	port := DefaultPort
	if service != "" {
		if n, err := strconv.Atoi(service); err == nil {
			if n <= 0 || n > 65535 {
				return invalidf("port %d out of range", n)
			}
			port = n
		} else if port, err = net.LookupPort("tcp", service); err != nil {
			return invalidf("unknown service %q", service)
		}
	}

	s.host = host
	s.port = port
	return nil
}

func trimBrackets(host string) string {
	if len(host) >= 2 && host[0] == '[' && host[len(host)-1] == ']' {
		return host[1 : len(host)-1]
	}
	return host
}

// Server returns the configured host and port. The host is empty until
// SetServer has succeeded.
func (s *Session) Server() (host string, port int) {
	return s.host, s.port
}

// SetLocalName overrides the name used to introduce the client in the
// EHLO greeting. An empty name restores the system-detected hostname,
// picked up at Start.
func (s *Session) SetLocalName(name string) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := validateLine(name); err != nil {
		return err
	}
	s.localName = name
	return nil
}

// LocalName returns the configured greeting name, or the empty string
// if the system-detected hostname will be used.
func (s *Session) LocalName() string {
	return s.localName
}

// SetEngine attaches the engine that will execute the protocol when
// Start is called.
func (s *Session) SetEngine(e Engine) error {
	if s.closed {
		return ErrSessionClosed
	}
	if e == nil {
		return invalidf("nil engine")
	}
	s.engine = e
	return nil
}

// SetAuth attaches the SASL client the engine authenticates with. A nil
// client disables authentication.
func (s *Session) SetAuth(a sasl.Client) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.auth = a
	if a != nil {
		s.Require(ExtAuth)
	}
	return nil
}

// Auth returns the attached SASL client, if any.
func (s *Session) Auth() sasl.Client {
	return s.auth
}

// SetTLSPolicy states how the engine should treat STARTTLS.
func (s *Session) SetTLSPolicy(p TLSPolicy) error {
	if s.closed {
		return ErrSessionClosed
	}
	if !p.valid() {
		return invalidf("unknown TLS policy %d", int(p))
	}
	s.tlsPolicy = p
	if p == TLSMandatory {
		s.Require(ExtStartTLS)
	}
	return nil
}

// TLSPolicy returns the configured STARTTLS policy.
func (s *Session) TLSPolicy() TLSPolicy {
	return s.tlsPolicy
}

// SetTLSConfig sets the TLS configuration used for the STARTTLS
// upgrade. A nil config makes the engine fall back to sane defaults
// with the server name filled in.
func (s *Session) SetTLSConfig(cfg *tls.Config) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.tlsConfig = cfg
	return nil
}

// TLSConfig returns the TLS configuration, possibly nil.
func (s *Session) TLSConfig() *tls.Config {
	return s.tlsConfig
}

// SetEventCallback registers the observer the engine notifies of
// protocol-level events. A nil callback unregisters it.
func (s *Session) SetEventCallback(fn EventFunc) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.eventFn = fn
	return nil
}

// SetMonitorCallback registers the observer the engine feeds raw
// protocol trace lines. When headers is true the trace also carries the
// message header lines written during the data phase. A nil callback
// unregisters it.
func (s *Session) SetMonitorCallback(fn MonitorFunc, headers bool) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.monitorFn = fn
	s.monitorHeaders = headers
	return nil
}

// SetLogger replaces the session logger. The default is the logrus
// standard logger.
func (s *Session) SetLogger(l logrus.FieldLogger) error {
	if s.closed {
		return ErrSessionClosed
	}
	if l == nil {
		return invalidf("nil logger")
	}
	s.logger = l
	return nil
}

// Logger returns the session logger for engines to log through.
func (s *Session) Logger() logrus.FieldLogger {
	return s.logger
}

// Require adds exts to the set of extensions the session needs the
// server to advertise. The set only ever grows: clearing or lowering
// the option that required an extension does not retract it.
func (s *Session) Require(exts Extension) {
	s.required |= exts
}

// RequiredExtensions returns the accumulated extension requirements.
func (s *Session) RequiredExtensions() Extension {
	return s.required
}

// AddMessage appends a new empty message to the session. Messages are
// visited, and submitted, in the order they were added.
func (s *Session) AddMessage() (*Message, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	m := &Message{session: s}
	s.messages = append(s.messages, m)
	return m, nil
}

// ForEachMessage calls fn once per message in creation order. The
// message list must not be mutated during the traversal.
func (s *Session) ForEachMessage(fn func(*Message)) error {
	if fn == nil {
		return invalidf("nil visitor")
	}
	for _, m := range s.messages {
		fn(m)
	}
	return nil
}

// Messages returns the messages in creation order.
func (s *Session) Messages() []*Message {
	out := make([]*Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// SetApplicationData associates an opaque application value with the
// session and returns the previous one.
func (s *Session) SetApplicationData(v interface{}) (prev interface{}) {
	prev = s.appData
	s.appData = v
	return prev
}

// ApplicationData returns the associated application value.
func (s *Session) ApplicationData() interface{} {
	return s.appData
}

// ServerStatus returns the aggregate outcome the engine recorded for
// the server exchange itself, such as a rejected greeting.
func (s *Session) ServerStatus() Status {
	return s.serverStatus
}

// SetServerStatus records the aggregate server outcome. It is part of
// the engine-side API and not meant to be called by applications.
func (s *Session) SetServerStatus(st Status) {
	s.serverStatus = st
}

// RegisterCloser attaches a resource to be released when the session is
// closed. Engines use this for resources they hang off a session, such
// as cached authentication state.
func (s *Session) RegisterCloser(c io.Closer) {
	if c != nil {
		s.closers = append(s.closers, c)
	}
}

// Start validates the session and hands it to the attached engine,
// returning the engine's result unchanged. It fails without invoking
// the engine if no server or engine is attached, the local hostname can
// neither be detected nor was set, or any message lacks a transfer
// handler.
func (s *Session) Start() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.engine == nil {
		return invalidf("no engine attached")
	}
	if s.host == "" {
		return invalidf("no server configured")
	}
	if s.localName == "" {
		name, err := os.Hostname()
		if err != nil {
			return invalidf("local hostname not detectable: %v", err)
		}
		s.localName = name
	}
	for i, m := range s.messages {
		if m.handler == nil {
			return invalidf("message %d has no transfer handler", i)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"host":       s.host,
		"port":       s.port,
		"messages":   len(s.messages),
		"extensions": s.required.String(),
	}).Debug("starting submission session")

	return s.engine.Run(s)
}

// Close tears the whole graph down: recipient and message state first,
// then session-level resources. Engine-registered closers run child
// before parent; the first close error is reported after every closer
// has run. Close is idempotent, a second call is a no-op returning nil.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	for _, m := range s.messages {
		for _, r := range m.recipients {
			r.status.reset()
			r.complete = false
		}
		m.recipients = nil
		m.reversePathStatus.reset()
		m.transferStatus.reset()
		for _, c := range m.closers {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		m.closers = nil
	}
	s.messages = nil

	s.serverStatus.reset()
	for _, c := range s.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil

	s.logger.Debug("submission session closed")
	return firstErr
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	return s.closed
}

// Events returns the registered event callback, or nil. Engine-side.
func (s *Session) Events() EventFunc {
	return s.eventFn
}

// Monitor returns the registered monitor callback, or nil, and whether
// header lines belong in its trace. Engine-side.
func (s *Session) Monitor() (fn MonitorFunc, headers bool) {
	return s.monitorFn, s.monitorHeaders
}
