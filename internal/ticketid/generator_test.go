package ticketid

import (
	"testing"
	"time"
)

func TestGenerateFormat(t *testing.T) {
	gen := New("SG")
	gen.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }

	pattern := gen.Pattern()
	for i := 0; i < 200; i++ {
		ticket := gen.Generate()
		if !pattern.MatchString(ticket) {
			t.Fatalf("Generate() = %q, does not match %v", ticket, pattern)
		}
		if ticket[:4] != "SG25" {
			t.Fatalf("Generate() = %q, want SG25- prefix", ticket)
		}
	}
}

func TestGenerateSuffixRange(t *testing.T) {
	gen := New("SG")
	for i := 0; i < 500; i++ {
		ticket := gen.Generate()
		suffix := ticket[len(ticket)-4:]
		if suffix < "1000" || suffix > "9999" {
			t.Fatalf("Generate() = %q, suffix %q outside [1000,9999]", ticket, suffix)
		}
	}
}

func TestPatternAcceptsLegacyThreeDigit(t *testing.T) {
	gen := New("SG")
	if !gen.Pattern().MatchString("SG24-123") {
		t.Error("Pattern() should accept the historical 3-digit suffix")
	}
	if gen.Pattern().MatchString("SG24-12") {
		t.Error("Pattern() should reject 2-digit suffixes")
	}
}

func TestNewNormalizesPrefix(t *testing.T) {
	gen := New("  sg ")
	gen.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	ticket := gen.Generate()
	if ticket[:2] != "SG" {
		t.Errorf("Generate() = %q, want uppercase SG prefix", ticket)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"sg25-1234":    "SG25-1234",
		"  SG25-1234 ": "SG25-1234",
		"Sg25-987":     "SG25-987",
		"":             "",
	}
	for raw, want := range cases {
		if got := Normalize(raw); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", raw, got, want)
		}
	}
}
