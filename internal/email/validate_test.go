package email

import "testing"

func TestIsValidAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addr  string
		valid bool
	}{
		{"user@example.com", true},
		{"first.last@example.com", true},
		{"user+tag@example.co.uk", true},
		{"user_name%x@mail-host.io", true},
		{"a@b.co", true},
		{"USER@EXAMPLE.COM", true},

		{"", false},
		{"not-an-email", false},
		{"missing@dot", false},
		{"a@b.c", false},
		{"@example.com", false},
		{"user@", false},
		{"user@.com", false},
		{"user name@example.com", false},
		{"user@example.com ", false},
		{"user@exam ple.com", false},
	}

	for _, tt := range tests {
		if got := IsValidAddress(tt.addr); got != tt.valid {
			t.Errorf("IsValidAddress(%q): got %v, want %v", tt.addr, got, tt.valid)
		}
	}
}
