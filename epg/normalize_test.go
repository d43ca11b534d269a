package epg

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"
)

func mustNormalizer(t *testing.T, policy Policy, region string, at time.Time) *Normalizer {
	t.Helper()
	n, err := NewNormalizer(policy, region, at)
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	return n
}

func TestNormalizeToUTC(t *testing.T) {
	n := mustNormalizer(t, PolicyUTC, "", time.Now())

	cases := []struct {
		in, want string
	}{
		{"20240315013000 +0200", "20240314233000 +0000"},
		{"20240315013000 -0500", "20240315063000 +0000"},
		{"20240315013000 +0000", "20240315013000 +0000"},
		{"20240310240000 +0000", "20240311000000 +0000"},
		{"20240310240000 +0100", "20240310230000 +0000"},
		{"20241231240000 +0000", "20250101000000 +0000"},
		{"20240228240000 +0000", "20240229000000 +0000"},
		{" 20240315013000 +0200 ", "20240314233000 +0000"},
	}
	for _, tc := range cases {
		got, err := n.Normalize(tc.in)
		if err != nil {
			t.Fatalf("Normalize(%q) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := mustNormalizer(t, PolicyUTC, "", time.Now())

	once, err := n.Normalize("20240310240000 +0530")
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	twice, err := n.Normalize(once)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if once != twice {
		t.Fatalf("normalization not idempotent: %q then %q", once, twice)
	}
}

func TestNormalizeRejectsMalformed(t *testing.T) {
	n := mustNormalizer(t, PolicyUTC, "", time.Now())

	for _, in := range []string{
		"notadate +0000",
		"20240315013000",
		"20240315013000 +02:00",
		"2024031501300 +0000",
		"20240315253000 +0000",
		"20240230120000 +0000",
		"",
	} {
		got, err := n.Normalize(in)
		if err == nil {
			t.Fatalf("Normalize(%q) = %q, expected error", in, got)
		}
		if got != in {
			t.Fatalf("Normalize(%q) should return the input unchanged, got %q", in, got)
		}
	}

	if _, err := n.Normalize("notadate +0000"); !errors.Is(err, errMalformedTimestamp) {
		t.Fatalf("expected errMalformedTimestamp, got %v", err)
	}
}

func TestRegionalPolicyPicksOffsetOncePerRun(t *testing.T) {
	summer := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	winter := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	n := mustNormalizer(t, PolicyRegional, "Europe/Madrid", summer)
	if n.Offset() != "+0200" {
		t.Fatalf("expected summer offset +0200, got %s", n.Offset())
	}
	// A winter programme still gets the offset chosen for the run.
	got, err := n.Normalize("20240115120000 +0000")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != "20240115140000 +0200" {
		t.Fatalf("unexpected regional value %q", got)
	}

	n = mustNormalizer(t, PolicyRegional, "Europe/Madrid", winter)
	if n.Offset() != "+0100" {
		t.Fatalf("expected winter offset +0100, got %s", n.Offset())
	}
	got, err = n.Normalize("20240315013000 +0200")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != "20240315003000 +0100" {
		t.Fatalf("unexpected regional value %q", got)
	}
}

func TestNewNormalizerErrors(t *testing.T) {
	if _, err := NewNormalizer("local", "", time.Now()); err == nil {
		t.Fatal("expected error for unknown policy")
	}
	if _, err := NewNormalizer(PolicyRegional, "Nowhere/Special", time.Now()); err == nil {
		t.Fatal("expected error for unknown region")
	}
	n := mustNormalizer(t, "", "", time.Now())
	if n.Policy() != PolicyUTC || n.Offset() != "+0000" {
		t.Fatalf("expected empty policy to default to utc, got %s %s", n.Policy(), n.Offset())
	}
}
