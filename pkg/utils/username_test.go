package utils

import (
	"strconv"
	"testing"
)

func TestSanitizeUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Cabdi Xasan", "cabdixasan"},
		{"  Faadumo   Cali  ", "faadumocali"},
		{"user@example.com", "userexample.com"},
		{"Ali-123_x", "ali-123_x"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := SanitizeUsername(tc.in); got != tc.want {
			t.Errorf("SanitizeUsername(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Cabdi@Example.COM", "cabdi@example.com"},
		{"  user@host.org ", "user@host.org"},
		{"no-at-sign", ""},
		{"two@@example.com", ""},
		{"user@nodot", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := NormalizeEmail(tc.in); got != tc.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEmailLocalPart(t *testing.T) {
	t.Parallel()

	if got := EmailLocalPart("cabdi@example.com"); got != "cabdi" {
		t.Errorf("EmailLocalPart = %q, want %q", got, "cabdi")
	}
	if got := EmailLocalPart("plain"); got != "plain" {
		t.Errorf("EmailLocalPart(no @) = %q, want %q", got, "plain")
	}
}

func TestRandomNumericSuffix(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		s := RandomNumericSuffix()
		n, err := strconv.Atoi(s)
		if err != nil {
			t.Fatalf("suffix %q not numeric: %v", s, err)
		}
		if n < 100 || n > 999 {
			t.Fatalf("suffix %d out of range [100,999]", n)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	valid := []string{"cabdi", "user_123", "Abc"}
	for _, u := range valid {
		if err := ValidateUsername(u); err != nil {
			t.Errorf("ValidateUsername(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{"ab", "_leading", "has space", "bad!char"}
	for _, u := range invalid {
		if err := ValidateUsername(u); err == nil {
			t.Errorf("ValidateUsername(%q) = nil, want error", u)
		}
	}
}
