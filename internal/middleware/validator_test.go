package middleware

import "testing"

func TestValidateMode(t *testing.T) {
	for _, mode := range []string{"text", "file", "image", "TEXT"} {
		if err := ValidateMode(mode); err != nil {
			t.Errorf("ValidateMode(%q) = %v", mode, err)
		}
	}
	for _, mode := range []string{"", "video", "audio", "text "} {
		if err := ValidateMode(mode); err == nil {
			t.Errorf("ValidateMode(%q) accepted", mode)
		}
	}
}

func TestValidateScanID(t *testing.T) {
	valid := []string{
		"scan_1",
		"err_3a7b9c2d-1e4f-4a6b-8c9d-0e1f2a3b4c5d",
		"3a7b9c2d-1e4f-4a6b-8c9d-0e1f2a3b4c5d",
	}
	for _, id := range valid {
		if err := ValidateScanID(id); err != nil {
			t.Errorf("ValidateScanID(%q) = %v", id, err)
		}
	}
	invalid := []string{"", "has space", "semi;colon", "../etc/passwd"}
	for _, id := range invalid {
		if err := ValidateScanID(id); err == nil {
			t.Errorf("ValidateScanID(%q) accepted", id)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ordinary text", "ordinary text"},
		{"with\x00null", "withnull"},
		{"  padded  ", "padded"},
		{"line\nbreaks\tkept", "line\nbreaks\tkept"},
		{"bell\x07gone", "bellgone"},
	}
	for _, tt := range tests {
		if got := SanitizeString(tt.in); got != tt.want {
			t.Errorf("SanitizeString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{-5, 0},
		{0, 0},
		{50, 50},
		{500, 500},
		{501, 500},
	}
	for _, tt := range tests {
		if got := ValidateLimit(tt.in); got != tt.want {
			t.Errorf("ValidateLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
