package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"strings"
	"testing"

	"github.com/minseok/securemail/internal/smtptest"
)

// testTLSConfig trusts the fixture server's self-signed certificate.
var testTLSConfig = &tls.Config{InsecureSkipVerify: true}

// startServer starts an smtptest server and registers its shutdown.
func startServer(t *testing.T, srv *smtptest.Server) (host string, port int) {
	t.Helper()
	if err := srv.Start(); err != nil {
		t.Fatalf("failed to start test server: %v", err)
	}
	t.Cleanup(srv.Close)
	return srv.HostPort()
}

func TestSend_Success(t *testing.T) {
	t.Parallel()

	srv := &smtptest.Server{
		Username: "sender@example.com",
		Password: "app-password",
	}
	host, port := startServer(t, srv)

	tr := NewSMTP(host, port, WithTLSConfig(testTLSConfig))

	recipients := []string{"to@example.com", "cc@example.com", "bcc@example.com"}
	raw := []byte("From: sender@example.com\r\nTo: to@example.com\r\nSubject: hi\r\n\r\nhello\r\n")

	if err := tr.Send(context.Background(), "sender@example.com", "app-password", recipients, raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := srv.Messages()
	if len(msgs) != 1 {
		t.Fatalf("messages: got %d, want 1", len(msgs))
	}

	msg := msgs[0]
	if msg.From != "sender@example.com" {
		t.Errorf("envelope from: got %q, want %q", msg.From, "sender@example.com")
	}
	if len(msg.To) != len(recipients) {
		t.Fatalf("envelope recipients: got %v, want %v", msg.To, recipients)
	}
	for i := range recipients {
		if msg.To[i] != recipients[i] {
			t.Errorf("envelope recipient %d: got %q, want %q", i, msg.To[i], recipients[i])
		}
	}
	if !strings.Contains(msg.Data, "hello") {
		t.Errorf("message data missing body: %q", msg.Data)
	}
}

func TestSend_AuthenticationFailure(t *testing.T) {
	t.Parallel()

	srv := &smtptest.Server{
		Username:   "sender@example.com",
		Password:   "correct",
		RejectAuth: true,
	}
	host, port := startServer(t, srv)

	tr := NewSMTP(host, port, WithTLSConfig(testTLSConfig))

	err := tr.Send(context.Background(), "sender@example.com", "wrong", []string{"to@example.com"}, []byte("hi"))
	if !errors.Is(err, ErrAuthentication) {
		t.Errorf("got %v, want ErrAuthentication", err)
	}

	if len(srv.Messages()) != 0 {
		t.Error("server accepted a message despite failed authentication")
	}
}

func TestSend_BadCredentials(t *testing.T) {
	t.Parallel()

	srv := &smtptest.Server{
		Username: "sender@example.com",
		Password: "correct",
	}
	host, port := startServer(t, srv)

	tr := NewSMTP(host, port, WithTLSConfig(testTLSConfig))

	err := tr.Send(context.Background(), "sender@example.com", "wrong", []string{"to@example.com"}, []byte("hi"))
	if !errors.Is(err, ErrAuthentication) {
		t.Errorf("got %v, want ErrAuthentication", err)
	}
}

func TestSend_RecipientRejected(t *testing.T) {
	t.Parallel()

	srv := &smtptest.Server{
		Username:   "sender@example.com",
		Password:   "secret",
		RejectRcpt: true,
	}
	host, port := startServer(t, srv)

	tr := NewSMTP(host, port, WithTLSConfig(testTLSConfig))

	err := tr.Send(context.Background(), "sender@example.com", "secret", []string{"to@example.com"}, []byte("hi"))
	if !errors.Is(err, ErrTransport) {
		t.Errorf("got %v, want ErrTransport", err)
	}
}

func TestSend_ConnectionRefused(t *testing.T) {
	t.Parallel()

	// Grab a port that is guaranteed to have nothing listening on it.
	srv := &smtptest.Server{}
	host, port := startServer(t, srv)
	srv.Close()

	tr := NewSMTP(host, port, WithTLSConfig(testTLSConfig))

	err := tr.Send(context.Background(), "sender@example.com", "secret", []string{"to@example.com"}, []byte("hi"))
	if !errors.Is(err, ErrConnection) {
		t.Errorf("got %v, want ErrConnection", err)
	}
}
