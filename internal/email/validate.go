package email

import "regexp"

// addressPattern matches a local part of letters, digits and ._%+-, an @,
// a domain of letters, digits, dots and hyphens, and a top-level segment
// of at least two letters.
var addressPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidAddress reports whether addr is a syntactically valid email address.
// This is a format check only; no DNS or mailbox verification is performed.
func IsValidAddress(addr string) bool {
	return addressPattern.MatchString(addr)
}
