package session

import (
	"testing"
	"time"

	"github.com/routegate/routegate/internal"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	now := time.Now()
	in := &Session{
		UserID:          "u-42",
		FingerprintHash: internal.HashFingerprint("fp-device-a"),
		CreatedAt:       now.Unix(),
		ExpiresAt:       now.Add(time.Hour).Unix(),
	}

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.UserID != in.UserID {
		t.Fatalf("expected user %q, got %q", in.UserID, out.UserID)
	}
	if out.FingerprintHash != in.FingerprintHash {
		t.Fatal("fingerprint hash did not survive round trip")
	}
	if out.CreatedAt != in.CreatedAt || out.ExpiresAt != in.ExpiresAt {
		t.Fatalf("timestamps did not survive round trip: %+v", out)
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	valid, err := Encode(&Session{
		UserID:          "u-1",
		FingerprintHash: internal.HashFingerprint("fp"),
		CreatedAt:       1,
		ExpiresAt:       2,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"unknown version", append([]byte{99}, valid[1:]...)},
		{"truncated", valid[:len(valid)-4]},
	}
	for _, tc := range cases {
		if _, err := Decode(tc.data); err == nil {
			t.Fatalf("%s: expected decode error", tc.name)
		}
	}
}

func TestEncodeRejectsOversizedUserID(t *testing.T) {
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := Encode(&Session{UserID: string(long)}); err == nil {
		t.Fatal("expected error for oversized user id")
	}
}
