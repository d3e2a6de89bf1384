package logger

import "testing"

func TestMaskIdentifier(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"", ""},
		{"a", "a"},
		{"alice", "a****"},
		{"alice@example.com", "a****@*******.com"},
		{"a@b.io", "a@*.io"},
	}

	for _, tt := range tests {
		if got := MaskIdentifier(tt.in); got != tt.expected {
			t.Errorf("MaskIdentifier(%q): got %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestSanitizeQueryString(t *testing.T) {
	tests := []struct {
		query     string
		sensitive bool
	}{
		{"status=confirmed", false},
		{"password=hunter2", true},
		{"TOKEN=abc", true},
		{"email=alice%40example.com", true},
		{"", false},
	}

	for _, tt := range tests {
		if got := SanitizeQueryString(tt.query); got != tt.sensitive {
			t.Errorf("SanitizeQueryString(%q): got %v, want %v", tt.query, got, tt.sensitive)
		}
	}
}
