// Package email defines the outbound message model, address validation,
// and MIME message encoding for securemail.
package email

import (
	"path/filepath"
	"strings"
)

// Message represents an outbound email message before encoding.
type Message struct {
	From    string
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string

	// Attachments holds file paths. Contents are read at build time,
	// not when the Message is assembled.
	Attachments []string
}

// Attachment describes a file staged for attachment to a message.
type Attachment struct {
	Path        string
	Filename    string
	ContentType string
}

// contentTypes maps lowercased file extensions to MIME content types.
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".txt":  "text/plain",
	".html": "text/html",
	".htm":  "text/html",
	".doc":  "application/msword",
	".docx": "application/msword",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.ms-excel",
	".zip":  "application/zip",
}

// fallbackContentType is the content type for unrecognized extensions.
const fallbackContentType = "application/octet-stream"

// NewAttachment builds Attachment metadata for a file path. The display
// filename is the path's base name and the content type is inferred from
// the lowercased file extension.
func NewAttachment(path string) Attachment {
	return Attachment{
		Path:        path,
		Filename:    filepath.Base(path),
		ContentType: ContentTypeFor(path),
	}
}

// ContentTypeFor returns the MIME content type inferred from the file
// extension of path. Unknown extensions map to application/octet-stream.
func ContentTypeFor(path string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	return fallbackContentType
}
