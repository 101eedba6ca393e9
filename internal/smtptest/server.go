// Package smtptest provides an in-process SMTP server for exercising the
// transport against a real protocol exchange, including STARTTLS and
// AUTH PLAIN. It is test support code, not a production listener.
package smtptest

import (
	"bufio"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
)

// Message is one mail transaction accepted by the server.
type Message struct {
	From string
	To   []string
	Data string
}

// Server is a minimal SMTP server that advertises STARTTLS and AUTH PLAIN,
// verifies credentials, and records accepted messages for assertions.
type Server struct {
	// Username and Password are the credentials AUTH PLAIN is verified
	// against.
	Username string
	Password string

	// RejectAuth forces every AUTH attempt to fail with 535.
	RejectAuth bool

	// RejectRcpt forces every RCPT TO to fail with 550.
	RejectRcpt bool

	ln        net.Listener
	tlsConfig *tls.Config

	mu       sync.Mutex
	messages []Message
}

// Start begins accepting connections on a random loopback port.
func (s *Server) Start() error {
	tlsConfig, err := selfSignedConfig()
	if err != nil {
		return fmt.Errorf("failed to generate test certificate: %w", err)
	}
	s.tlsConfig = tlsConfig

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.ln = ln

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.handle(conn)
		}
	}()

	return nil
}

// Close stops accepting connections.
func (s *Server) Close() {
	if s.ln != nil {
		s.ln.Close()
	}
}

// HostPort returns the listener host and port.
func (s *Server) HostPort() (string, int) {
	host, portStr, _ := net.SplitHostPort(s.ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return host, port
}

// Messages returns a copy of the messages accepted so far.
func (s *Server) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// session holds the per-connection protocol state.
type session struct {
	srv       *Server
	conn      net.Conn
	reader    *bufio.Reader
	tlsActive bool
	authOK    bool

	mailFrom string
	rcptTo   []string
}

// handle runs the SMTP command loop for one connection.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	sess := &session{
		srv:    s,
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
	sess.writeLine("220 smtptest ESMTP ready")

	for {
		line, err := sess.reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, " ", 2)
		cmd := strings.ToUpper(parts[0])
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "EHLO", "HELO":
			sess.handleEHLO(cmd, arg)
		case "STARTTLS":
			sess.handleSTARTTLS()
		case "AUTH":
			sess.handleAUTH(arg)
		case "MAIL":
			sess.handleMAIL(arg)
		case "RCPT":
			sess.handleRCPT(arg)
		case "DATA":
			sess.handleDATA()
		case "RSET":
			sess.reset()
			sess.writeLine("250 OK")
		case "NOOP":
			sess.writeLine("250 OK")
		case "QUIT":
			sess.writeLine("221 Bye")
			return
		default:
			sess.writeLine("500 Unrecognized command")
		}
	}
}

func (s *session) handleEHLO(cmd, arg string) {
	if cmd == "HELO" {
		s.writeLine("250 smtptest Hello %s", arg)
		return
	}
	s.writeLine("250-smtptest Hello %s", arg)
	if !s.tlsActive {
		s.writeLine("250-STARTTLS")
	}
	s.writeLine("250-AUTH PLAIN LOGIN")
	s.writeLine("250 OK")
}

func (s *session) handleSTARTTLS() {
	if s.tlsActive {
		s.writeLine("454 TLS already active")
		return
	}
	s.writeLine("220 Ready to start TLS")

	tlsConn := tls.Server(s.conn, s.srv.tlsConfig)
	if err := tlsConn.Handshake(); err != nil {
		return
	}
	s.conn = tlsConn
	s.reader = bufio.NewReader(tlsConn)
	s.tlsActive = true
}

func (s *session) handleAUTH(arg string) {
	parts := strings.SplitN(arg, " ", 2)
	if strings.ToUpper(parts[0]) != "PLAIN" {
		s.writeLine("504 Unrecognized authentication type")
		return
	}

	var encoded string
	if len(parts) > 1 && parts[1] != "" {
		encoded = parts[1]
	} else {
		s.writeLine("334")
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return
		}
		encoded = strings.TrimRight(line, "\r\n")
	}

	if s.srv.RejectAuth || !s.verifyPlain(encoded) {
		s.writeLine("535 Authentication failed")
		return
	}

	s.authOK = true
	s.writeLine("235 Authentication successful")
}

// verifyPlain checks an AUTH PLAIN response: base64(\0username\0password).
func (s *session) verifyPlain(encoded string) bool {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}
	parts := strings.SplitN(string(decoded), "\x00", 3)
	if len(parts) != 3 {
		return false
	}
	return parts[1] == s.srv.Username && parts[2] == s.srv.Password
}

func (s *session) handleMAIL(arg string) {
	if !s.authOK {
		s.writeLine("530 Authentication required")
		return
	}
	upper := strings.ToUpper(arg)
	if !strings.HasPrefix(upper, "FROM:") {
		s.writeLine("501 Syntax: MAIL FROM:<address>")
		return
	}
	s.mailFrom = extractAddress(arg[5:])
	s.rcptTo = nil
	s.writeLine("250 OK")
}

func (s *session) handleRCPT(arg string) {
	if s.mailFrom == "" {
		s.writeLine("503 Send MAIL FROM first")
		return
	}
	if s.srv.RejectRcpt {
		s.writeLine("550 Mailbox unavailable")
		return
	}
	upper := strings.ToUpper(arg)
	if !strings.HasPrefix(upper, "TO:") {
		s.writeLine("501 Syntax: RCPT TO:<address>")
		return
	}
	s.rcptTo = append(s.rcptTo, extractAddress(arg[3:]))
	s.writeLine("250 OK")
}

func (s *session) handleDATA() {
	if len(s.rcptTo) == 0 {
		s.writeLine("503 Send RCPT TO first")
		return
	}
	s.writeLine("354 Start mail input; end with <CRLF>.<CRLF>")

	var data strings.Builder
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "." {
			break
		}
		// Dot-stuffing: lines starting with ".." have the leading dot removed
		if strings.HasPrefix(trimmed, "..") {
			line = line[1:]
		}
		data.WriteString(line)
	}

	s.srv.mu.Lock()
	s.srv.messages = append(s.srv.messages, Message{
		From: s.mailFrom,
		To:   s.rcptTo,
		Data: data.String(),
	})
	s.srv.mu.Unlock()

	s.reset()
	s.writeLine("250 OK message queued")
}

func (s *session) reset() {
	s.mailFrom = ""
	s.rcptTo = nil
}

func (s *session) writeLine(format string, args ...interface{}) {
	fmt.Fprintf(s.conn, format+"\r\n", args...)
}

// extractAddress extracts an email address from an SMTP parameter,
// handling both angle-bracket and bare formats.
func extractAddress(arg string) string {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "<") && strings.HasSuffix(arg, ">") {
		return arg[1 : len(arg)-1]
	}
	return arg
}
