package crypto

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/DnopPondz/web-upload/internal/errs"
)

func TestRandBytes_LengthAndUniqueness(t *testing.T) {
	t.Parallel()

	const n = 64
	a, err := RandBytes(n)
	if err != nil {
		t.Fatalf("RandBytes: %v", err)
	}
	if len(a) != n {
		t.Fatalf("len=%d, want=%d", len(a), n)
	}
	b, err := RandBytes(n)
	if err != nil {
		t.Fatalf("RandBytes(2): %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("two subsequent RandBytes(%d) are equal — looks non-random", n)
	}

	zero := make([]byte, n)
	if bytes.Equal(a, zero) {
		t.Fatalf("RandBytes returned all zeros")
	}
}

func TestCreatePINHash_FormatAndSaltUniqueness(t *testing.T) {
	t.Parallel()

	h1, err := CreatePINHash("1234")
	if err != nil {
		t.Fatalf("CreatePINHash: %v", err)
	}
	salt, key, found := strings.Cut(h1, ":")
	if !found {
		t.Fatalf("hash %q missing ':' separator", h1)
	}
	if len(salt) != saltBytes*2 {
		t.Fatalf("salt hex len=%d, want=%d", len(salt), saltBytes*2)
	}
	if len(key) != scryptKeyLen*2 {
		t.Fatalf("key hex len=%d, want=%d", len(key), scryptKeyLen*2)
	}

	h2, err := CreatePINHash("1234")
	if err != nil {
		t.Fatalf("CreatePINHash(2): %v", err)
	}
	if h1 == h2 {
		t.Fatalf("same PIN hashed twice produced identical hashes — salt not random")
	}
}

func TestCreatePINHash_EmptyPIN(t *testing.T) {
	t.Parallel()

	_, err := CreatePINHash("")
	if !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("err=%v, want wrapped %v", err, errs.ErrInvalidInput)
	}
}

func TestVerifyPINHash_RoundTrip(t *testing.T) {
	t.Parallel()

	h, err := CreatePINHash("482910")
	if err != nil {
		t.Fatalf("CreatePINHash: %v", err)
	}
	if !VerifyPINHash("482910", h) {
		t.Fatalf("expected true for correct pin")
	}
	if VerifyPINHash("482911", h) {
		t.Fatalf("expected false for wrong pin")
	}
	if VerifyPINHash("", h) {
		t.Fatalf("expected false for empty pin")
	}
}

func TestVerifyPINHash_Malformed(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"nosalt",
		":deadbeef",
		"deadbeef:",
		"deadbeef:not-hex",
		"deadbeef:ab", // wrong derived-key length
	}
	for _, stored := range cases {
		if VerifyPINHash("1234", stored) {
			t.Fatalf("VerifyPINHash(%q): expected false", stored)
		}
	}
}
