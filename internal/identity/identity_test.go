package identity_test

import (
	"testing"

	"dubline/internal/identity"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Lucas Jacobs", "lucas jacobs"},
		{"  Lucas   Jacobs  ", "lucas jacobs"},
		{"LUCKI", "lucki"},
		{"\tJade\nHagemann", "jade hagemann"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := identity.Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := "  Holger   Irrmisch "
	once := identity.Normalize(in)
	if twice := identity.Normalize(once); twice != once {
		t.Errorf("normalize not idempotent: %q -> %q", once, twice)
	}
}

func TestKeys(t *testing.T) {
	got := identity.Keys("Lucas Jacobs", "lucki42")
	if len(got) != 2 || got[0] != "lucas jacobs" || got[1] != "lucki42" {
		t.Fatalf("Keys = %v", got)
	}
	if got := identity.Keys("", "lucki42"); len(got) != 1 || got[0] != "lucki42" {
		t.Fatalf("Keys with empty name = %v", got)
	}
	if got := identity.Keys("", ""); len(got) != 0 {
		t.Fatalf("Keys with empty inputs = %v", got)
	}
}
