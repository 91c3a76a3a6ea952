package secrets

import (
	"bytes"
	"errors"
	"testing"
)

func testCipher(t *testing.T) *Cipher {
	t.Helper()
	key := bytes.Repeat([]byte{0x42}, 32)
	c, err := NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	return c
}

func TestNewCipherRejectsBadKeyLength(t *testing.T) {
	if _, err := NewCipher([]byte("short")); err == nil {
		t.Fatal("expected error for 5-byte key")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := testCipher(t)

	ct, err := c.Encrypt("sk-test-1234")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	got, err := c.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if got != "sk-test-1234" {
		t.Errorf("round trip: got %q", got)
	}
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	c := testCipher(t)

	a, err := c.Encrypt("same-plaintext")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	b, err := c.Encrypt("same-plaintext")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same plaintext must differ")
	}
}

func TestDecryptRejectsTampering(t *testing.T) {
	c := testCipher(t)

	ct, err := c.Encrypt("sk-test-1234")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	ct[len(ct)-1] ^= 0xff
	if _, err := c.Decrypt(ct); !errors.Is(err, ErrInvalidCiphertext) {
		t.Errorf("want ErrInvalidCiphertext, got %v", err)
	}

	if _, err := c.Decrypt([]byte{1, 2, 3}); !errors.Is(err, ErrInvalidCiphertext) {
		t.Errorf("short input: want ErrInvalidCiphertext, got %v", err)
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sk-abcdef1234", "**********1234"},
		{"abcd", "****"},
		{"ab", "**"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Mask(tt.in); got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
