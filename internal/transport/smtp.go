package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"
)

// connectTimeout bounds the TCP connect to the SMTP server.
const connectTimeout = 30 * time.Second

// SMTP sends messages through a single SMTP server using STARTTLS and
// AUTH PLAIN. One Send call owns one session from dial to close.
type SMTP struct {
	host      string
	port      int
	logger    *slog.Logger
	tlsConfig *tls.Config
}

// Option configures an SMTP transport.
type Option func(*SMTP)

// WithLogger sets the logger used for session progress lines.
func WithLogger(logger *slog.Logger) Option {
	return func(t *SMTP) { t.logger = logger }
}

// WithTLSConfig overrides the TLS client configuration used for the
// STARTTLS upgrade. Useful for testing against servers with self-signed
// certificates.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(t *SMTP) { t.tlsConfig = cfg }
}

// NewSMTP creates an SMTP transport for host:port.
func NewSMTP(host string, port int, opts ...Option) *SMTP {
	t := &SMTP{
		host:   host,
		port:   port,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send opens an SMTP session, upgrades it with STARTTLS when the server
// offers it, authenticates, and transmits raw to every recipient. The
// session is closed on every exit path. Errors wrap ErrAuthentication,
// ErrTransport or ErrConnection so callers can match with errors.Is.
func (t *SMTP) Send(ctx context.Context, sender, password string, recipients []string, raw []byte) error {
	addr := net.JoinHostPort(t.host, strconv.Itoa(t.port))
	t.logger.Info("connecting to smtp server", "addr", addr)

	dialer := net.Dialer{Timeout: connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	client, err := smtp.NewClient(conn, t.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		cfg := t.tlsConfig
		if cfg == nil {
			cfg = &tls.Config{ServerName: t.host, MinVersion: tls.VersionTLS12}
		}
		if err := client.StartTLS(cfg); err != nil {
			return fmt.Errorf("%w: %v", ErrConnection, err)
		}
	}

	if err := client.Auth(smtp.PlainAuth("", sender, password, t.host)); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	if err := client.Mail(sender); err != nil {
		return classify(err)
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return classify(err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return classify(err)
	}
	if _, err := w.Write(raw); err != nil {
		return classify(err)
	}
	if err := w.Close(); err != nil {
		return classify(err)
	}

	if err := client.Quit(); err != nil {
		return classify(err)
	}

	return nil
}

// classify maps a session error to the failure taxonomy: SMTP protocol
// replies become ErrTransport, anything else is a network-level ErrConnection.
func classify(err error) error {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return fmt.Errorf("%w: %v", ErrConnection, err)
}
