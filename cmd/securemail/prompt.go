package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/minseok/securemail/internal/email"
	"github.com/minseok/securemail/internal/mailer"
)

// promptRequest interactively collects everything needed for one send.
func promptRequest(sender string) (*mailer.Request, error) {
	reader := bufio.NewReader(os.Stdin)

	to, err := promptRecipients(reader)
	if err != nil {
		return nil, err
	}

	cc, err := promptOptionalList(reader, "CC")
	if err != nil {
		return nil, err
	}

	bcc, err := promptOptionalList(reader, "BCC")
	if err != nil {
		return nil, err
	}

	fmt.Print("Enter email subject: ")
	subject, err := readLine(reader)
	if err != nil {
		return nil, err
	}

	body, err := promptBody(reader)
	if err != nil {
		return nil, err
	}

	attachments, err := promptAttachments(reader)
	if err != nil {
		return nil, err
	}

	fmt.Print("Enter your email password (input will be hidden): ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return nil, err
	}

	return &mailer.Request{
		Sender:      sender,
		Password:    string(password),
		To:          to,
		Cc:          cc,
		Bcc:         bcc,
		Subject:     subject,
		Body:        body,
		Attachments: attachments,
	}, nil
}

// promptRecipients asks for recipient addresses until every entry is valid.
func promptRecipients(reader *bufio.Reader) ([]string, error) {
	for {
		fmt.Print("Enter recipient email address(es) (comma-separated): ")
		line, err := readLine(reader)
		if err != nil {
			return nil, err
		}

		recipients := splitAddresses(line)
		valid := len(recipients) > 0
		for _, addr := range recipients {
			if !email.IsValidAddress(addr) {
				slog.Error("invalid email format", "address", addr)
				valid = false
			}
		}
		if valid {
			return recipients, nil
		}
		fmt.Println("Please enter valid email address(es)")
	}
}

// promptOptionalList asks for an optional comma-separated address list.
// Invalid entries are dropped with a warning; the result is a freshly built
// list of only the valid addresses.
func promptOptionalList(reader *bufio.Reader, label string) ([]string, error) {
	fmt.Printf("Enter %s email address(es) (comma-separated, or press Enter to skip): ", label)
	line, err := readLine(reader)
	if err != nil {
		return nil, err
	}

	var valid []string
	for _, addr := range splitAddresses(line) {
		if !email.IsValidAddress(addr) {
			slog.Warn("invalid email format, skipping", "label", label, "address", addr)
			continue
		}
		valid = append(valid, addr)
	}
	return valid, nil
}

// promptBody reads a multi-line body terminated by two consecutive blank
// lines. Leading blank lines before any content are ignored.
func promptBody(reader *bufio.Reader) (string, error) {
	fmt.Println("Enter email body (press Enter twice when done):")

	var lines []string
	for {
		line, err := readLine(reader)
		if err != nil {
			return "", err
		}
		if line == "" && len(lines) == 0 {
			continue
		}
		if line == "" && lines[len(lines)-1] == "" {
			break
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n"), nil
}

// promptAttachments reads attachment paths until a blank line. Paths that
// do not exist are warned about and not added.
func promptAttachments(reader *bufio.Reader) ([]string, error) {
	fmt.Println("Enter attachment paths (or press Enter to skip/finish):")

	var attachments []string
	for {
		fmt.Print("> ")
		path, err := readLine(reader)
		if err != nil {
			return nil, err
		}
		if path == "" {
			return attachments, nil
		}
		if _, err := os.Stat(path); err != nil {
			slog.Warn("file not found", "path", path)
			continue
		}
		attachments = append(attachments, path)
		slog.Info("added attachment", "path", path)
	}
}

// readLine reads one line of input with the trailing newline stripped.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// splitAddresses splits a comma-separated address list, trimming whitespace
// and dropping empty entries.
func splitAddresses(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	parts := strings.Split(line, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
