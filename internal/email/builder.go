package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/textproto"
	"os"
	"strings"
)

// Builder encodes Messages as multipart/mixed MIME messages.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a Builder. A nil logger falls back to slog.Default.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// Build encodes msg as a multipart/mixed MIME message and returns the raw
// bytes together with the full transmission recipient list (To, Cc and Bcc
// in that order). Bcc addresses are included in the recipient list but are
// never written to any header. Attachments that are missing or unreadable
// are skipped with a log line; they do not abort the build.
func (b *Builder) Build(msg *Message) ([]byte, []string, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", msg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(msg.To, ", "))
	if len(msg.Cc) > 0 {
		fmt.Fprintf(&buf, "Cc: %s\r\n", strings.Join(msg.Cc, ", "))
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")

	writer := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())

	bodyHeader := make(textproto.MIMEHeader)
	bodyHeader.Set("Content-Type", "text/plain; charset=UTF-8")
	part, err := writer.CreatePart(bodyHeader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create body part: %w", err)
	}
	part.Write([]byte(msg.Body))

	for _, path := range msg.Attachments {
		if err := b.attach(writer, path); err != nil {
			b.logger.Error("failed to attach file", "path", path, "error", err)
		}
	}

	writer.Close()

	recipients := make([]string, 0, len(msg.To)+len(msg.Cc)+len(msg.Bcc))
	recipients = append(recipients, msg.To...)
	recipients = append(recipients, msg.Cc...)
	recipients = append(recipients, msg.Bcc...)

	return buf.Bytes(), recipients, nil
}

// attach writes a single attachment part. A nonexistent file is skipped
// with a warning and a nil return; read failures are reported to the caller.
func (b *Builder) attach(writer *multipart.Writer, path string) error {
	if _, err := os.Stat(path); err != nil {
		b.logger.Warn("attachment not found, skipping", "path", path)
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read attachment: %w", err)
	}

	att := NewAttachment(path)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Type", att.ContentType)
	header.Set("Content-Transfer-Encoding", "base64")
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create attachment part: %w", err)
	}
	part.Write([]byte(encodeBase64WithLineBreaks(content)))

	b.logger.Info("attached file", "filename", att.Filename)
	return nil
}

// encodeBase64WithLineBreaks encodes bytes to base64 with 76-character line breaks per RFC 2045.
func encodeBase64WithLineBreaks(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	var lines []string
	for i := 0; i < len(encoded); i += 76 {
		end := i + 76
		if end > len(encoded) {
			end = len(encoded)
		}
		lines = append(lines, encoded[i:end])
	}
	return strings.Join(lines, "\r\n")
}
