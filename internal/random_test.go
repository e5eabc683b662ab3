package internal

import "testing"

func TestSessionIDRoundTrip(t *testing.T) {
	sid, err := NewSessionID()
	if err != nil {
		t.Fatalf("new session id: %v", err)
	}

	parsed, err := ParseSessionID(sid.String())
	if err != nil {
		t.Fatalf("parse session id: %v", err)
	}
	if parsed != sid {
		t.Fatal("session id did not survive round trip")
	}
}

func TestParseSessionIDRejectsBadInput(t *testing.T) {
	if _, err := ParseSessionID("not base64url!!"); err == nil {
		t.Fatal("expected error for invalid encoding")
	}
	if _, err := ParseSessionID("c2hvcnQ"); err == nil {
		t.Fatal("expected error for wrong length")
	}
}

func TestNewCSRFTokenHashMatches(t *testing.T) {
	token, hash, err := NewCSRFToken()
	if err != nil {
		t.Fatalf("new csrf token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if HashCSRFToken(token) != hash {
		t.Fatal("returned hash does not match token")
	}

	other, _, err := NewCSRFToken()
	if err != nil {
		t.Fatalf("second token: %v", err)
	}
	if other == token {
		t.Fatal("expected unique tokens")
	}
}
