package seal

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

// produced by: openssl enc -aes-256-cbc -md md5 -salt -pass pass:storageslocal -base64
// (the same construction CryptoJS.AES.encrypt uses for a passphrase)
const cryptoJSBlob = "U2FsdGVkX1+qgakDwN1kdgdYsmEr2hYsM2QMsSocKhRsyGmvGUkeNxq3B2FFceAe"

func newSealer(t *testing.T, scheme Scheme, passphrase string) *Sealer {
	t.Helper()
	s, err := New(scheme, passphrase)
	if err != nil {
		t.Fatalf("New(%q) failed: %v", scheme, err)
	}
	return s
}

func TestOpenCryptoJSBlob(t *testing.T) {
	s := newSealer(t, SchemeOpenSSL, DefaultPassphrase)

	plain, err := s.Open(cryptoJSBlob)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if string(plain) != `{"cat":2,"hello":1}` {
		t.Errorf("Open = %q", plain)
	}
}

func TestRoundTrip(t *testing.T) {
	payload := []byte(`{"amazing":3,"über":2}`)

	for _, scheme := range []Scheme{SchemeOpenSSL, SchemeGCM} {
		t.Run(string(scheme), func(t *testing.T) {
			s := newSealer(t, scheme, DefaultPassphrase)

			blob, err := s.Seal(payload)
			if err != nil {
				t.Fatalf("Seal failed: %v", err)
			}
			if strings.Contains(blob, "amazing") {
				t.Fatal("blob leaks plaintext")
			}

			got, err := s.Open(blob)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if string(got) != string(payload) {
				t.Errorf("Open = %q, want %q", got, payload)
			}
		})
	}
}

func TestSealIsSalted(t *testing.T) {
	s := newSealer(t, SchemeOpenSSL, DefaultPassphrase)
	a, _ := s.Seal([]byte("{}"))
	b, _ := s.Seal([]byte("{}"))
	if a == b {
		t.Error("two seals of the same plaintext should differ")
	}
	if !strings.HasPrefix(a, "U2FsdGVkX1") {
		t.Errorf("openssl blob should start with base64 of Salted__, got %q", a)
	}
}

func TestOpenAcceptsEitherScheme(t *testing.T) {
	legacy := newSealer(t, SchemeOpenSSL, DefaultPassphrase)
	modern := newSealer(t, SchemeGCM, DefaultPassphrase)

	blob, err := legacy.Seal([]byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if _, err := modern.Open(blob); err != nil {
		t.Errorf("gcm sealer could not open openssl blob: %v", err)
	}

	blob, err = modern.Seal([]byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if _, err := legacy.Open(blob); err != nil {
		t.Errorf("openssl sealer could not open gcm blob: %v", err)
	}
}

func TestOpenFailures(t *testing.T) {
	s := newSealer(t, SchemeGCM, DefaultPassphrase)
	gcmBlob, _ := s.Seal([]byte(`{"a":1}`))

	raw, _ := base64.StdEncoding.DecodeString(strings.TrimPrefix(gcmBlob, gcmPrefix))
	raw[len(raw)-1] ^= 0xff
	tampered := gcmPrefix + base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name string
		blob string
		want error
	}{
		{"empty", "", ErrMalformed},
		{"not base64", "%%%not-base64%%%", ErrMalformed},
		{"no salted header", base64.StdEncoding.EncodeToString([]byte("plain text that is long")), ErrMalformed},
		{"tampered gcm", tampered, ErrDecrypt},
		{"truncated gcm", gcmPrefix + "AAAA", ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Open(tt.blob); !errors.Is(err, tt.want) {
				t.Errorf("Open(%q) error = %v, want %v", tt.blob, err, tt.want)
			}
		})
	}
}

func TestWrongPassphrase(t *testing.T) {
	s := newSealer(t, SchemeGCM, "other-key")

	// CBC is unauthenticated: a wrong key either breaks the padding or yields garbage
	if plain, err := s.Open(cryptoJSBlob); err == nil && string(plain) == `{"cat":2,"hello":1}` {
		t.Fatal("wrong passphrase decrypted the openssl blob")
	}

	blob, _ := newSealer(t, SchemeGCM, DefaultPassphrase).Seal([]byte("{}"))
	if _, err := s.Open(blob); !errors.Is(err, ErrDecrypt) {
		t.Errorf("gcm with wrong key error = %v, want ErrDecrypt", err)
	}
}

func TestUnknownScheme(t *testing.T) {
	if _, err := New("rot13", DefaultPassphrase); err == nil {
		t.Error("expected error for unknown scheme")
	}
	s := newSealer(t, "", DefaultPassphrase)
	if s.Scheme() != SchemeOpenSSL {
		t.Errorf("default scheme = %q, want openssl", s.Scheme())
	}
}

func TestPKCS7(t *testing.T) {
	for n := 0; n < 40; n++ {
		data := []byte(strings.Repeat("x", n))
		padded := pkcs7Pad(data, 16)
		if len(padded)%16 != 0 || len(padded) <= n {
			t.Fatalf("pad(%d) produced %d bytes", n, len(padded))
		}
		got, err := pkcs7Unpad(padded, 16)
		if err != nil || string(got) != string(data) {
			t.Fatalf("unpad(pad(%d)) = %q, %v", n, got, err)
		}
	}
	if _, err := pkcs7Unpad([]byte(strings.Repeat("\x00", 16)), 16); err == nil {
		t.Error("zero padding byte should be rejected")
	}
}

func TestGCMKeyDerivedOnDemand(t *testing.T) {
	s := newSealer(t, SchemeOpenSSL, DefaultPassphrase)
	blob, err := s.Seal([]byte(`{"cat":1}`))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if _, err := s.Open(blob); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if s.gcm != nil {
		t.Fatal("openssl round trip should not derive the GCM key")
	}

	modern := newSealer(t, SchemeGCM, DefaultPassphrase)
	v2, err := modern.Seal([]byte(`{"cat":1}`))
	if err != nil {
		t.Fatalf("GCM Seal failed: %v", err)
	}
	plain, err := s.Open(v2)
	if err != nil {
		t.Fatalf("Open(v2) failed: %v", err)
	}
	if string(plain) != `{"cat":1}` {
		t.Errorf("plain = %s", plain)
	}
	if s.gcm == nil {
		t.Error("opening a v2 blob should derive the GCM key")
	}
}

func TestDefault(t *testing.T) {
	s := Default()
	if s.Scheme() != SchemeOpenSSL {
		t.Errorf("Scheme = %q, want openssl", s.Scheme())
	}
	plain, err := s.Open(cryptoJSBlob)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if string(plain) != `{"cat":2,"hello":1}` {
		t.Errorf("plain = %s", plain)
	}
}
