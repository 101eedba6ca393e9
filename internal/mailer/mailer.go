// Package mailer orchestrates address validation, message building and
// SMTP delivery for one send operation.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/minseok/securemail/internal/email"
	"github.com/minseok/securemail/internal/transport"
)

// This is a compile time check for interface implementation.
var _ error = Error("")

const (
	// ErrValidation indicates a malformed sender or recipient address.
	ErrValidation Error = "validation failed"

	// ErrUnclassified covers failures not mapped to a more specific reason.
	ErrUnclassified Error = "send failed"
)

// Error represents package level mailer errors.
type Error string

func (e Error) Error() string { return string(e) }

// appPasswordHint is logged when authentication fails, since several mail
// providers reject account passwords for SMTP and require an app password.
const appPasswordHint = "some providers require an app-specific password; for Gmail see https://support.google.com/accounts/answer/185833"

// Request describes one email send.
type Request struct {
	Sender   string
	Password string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	Body     string

	// Attachments holds file paths to attach. Missing files are skipped
	// with a warning rather than failing the send.
	Attachments []string
}

// Result reports the outcome of a send. When OK is false, Err carries the
// failure reason and can be matched with errors.Is against the mailer and
// transport sentinel errors.
type Result struct {
	OK  bool
	Err error
}

// Mailer validates requests, builds MIME messages and hands them to a
// transport. It holds no per-send state; one Mailer can serve many sends.
type Mailer struct {
	transport transport.Sender
	builder   *email.Builder
	logger    *slog.Logger
}

// New creates a Mailer delivering through sender. A nil logger falls back
// to slog.Default.
func New(sender transport.Sender, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{
		transport: sender,
		builder:   email.NewBuilder(logger),
		logger:    logger,
	}
}

// Send validates every address in the request, builds the MIME message and
// transmits it. All failures come back as a Result; Send never panics and
// never returns before the underlying session has been released.
func (m *Mailer) Send(ctx context.Context, req Request) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("send failed", "panic", r)
			result = Result{Err: fmt.Errorf("%w: %v", ErrUnclassified, r)}
		}
	}()

	if !email.IsValidAddress(req.Sender) {
		m.logger.Error("invalid sender email format", "sender", req.Sender)
		return Result{Err: fmt.Errorf("%w: invalid sender address %q", ErrValidation, req.Sender)}
	}
	if len(req.To) == 0 {
		m.logger.Error("no recipients given")
		return Result{Err: fmt.Errorf("%w: no recipients", ErrValidation)}
	}
	for _, group := range [][]string{req.To, req.Cc, req.Bcc} {
		for _, addr := range group {
			if !email.IsValidAddress(addr) {
				m.logger.Error("invalid recipient email format", "recipient", addr)
				return Result{Err: fmt.Errorf("%w: invalid recipient address %q", ErrValidation, addr)}
			}
		}
	}

	msg := &email.Message{
		From:        req.Sender,
		To:          req.To,
		Cc:          req.Cc,
		Bcc:         req.Bcc,
		Subject:     req.Subject,
		Body:        req.Body,
		Attachments: req.Attachments,
	}

	raw, recipients, err := m.builder.Build(msg)
	if err != nil {
		m.logger.Error("failed to build message", "error", err)
		return Result{Err: fmt.Errorf("%w: %v", ErrUnclassified, err)}
	}

	if err := m.transport.Send(ctx, req.Sender, req.Password, recipients, raw); err != nil {
		m.logger.Error("failed to send email", "error", err)
		if errors.Is(err, transport.ErrAuthentication) {
			m.logger.Info(appPasswordHint)
		}
		return Result{Err: err}
	}

	m.logger.Info("email sent successfully", "recipients", len(recipients))
	return Result{OK: true}
}
