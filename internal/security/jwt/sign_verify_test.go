package jwtutil

import (
	"testing"
	"time"
)

func testSigner() *Signer {
	return NewSigner(Config{Secret: []byte("0123456789abcdef0123456789abcdef")})
}

func TestSessionRoundTrip(t *testing.T) {
	s := testSigner()
	tok, err := s.SignSession("sid-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	sid, exp, err := s.ParseSession(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sid != "sid-1" {
		t.Fatalf("sid = %q", sid)
	}
	if d := time.Until(exp); d < 59*time.Minute || d > time.Hour {
		t.Fatalf("expiry %s from now", d)
	}
}

func TestSessionExpired(t *testing.T) {
	s := testSigner()
	s.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	tok, err := s.SignSession("sid-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	s.now = time.Now
	if _, _, err := s.ParseSession(tok); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestSessionWrongSecret(t *testing.T) {
	tok, _ := testSigner().SignSession("sid-1", time.Hour)
	other := NewSigner(Config{Secret: []byte("ffffffffffffffffffffffffffffffff")})
	if _, _, err := other.ParseSession(tok); err == nil {
		t.Fatal("expected signature mismatch")
	}
}
