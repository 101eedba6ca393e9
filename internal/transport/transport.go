// Package transport delivers encoded email messages over SMTP.
package transport

import "context"

// This is a compile time check for interface implementation.
var _ error = Error("")

const (
	// ErrAuthentication indicates the server rejected the credentials.
	ErrAuthentication Error = "authentication failed"

	// ErrTransport indicates an SMTP protocol-level failure during the session.
	ErrTransport Error = "smtp transport error"

	// ErrConnection indicates a network-level failure reaching or negotiating
	// with the server.
	ErrConnection Error = "connection failed"
)

// Error represents package level transport errors.
type Error string

func (e Error) Error() string { return string(e) }

// Sender is the interface for outbound mail delivery backends.
type Sender interface {
	// Send transmits an encoded message to the given recipients,
	// authenticating as sender. It returns an error if delivery fails.
	Send(ctx context.Context, sender, password string, recipients []string, raw []byte) error
}
