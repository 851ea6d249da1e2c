// Package seal encrypts and decrypts the opaque blobs written to the
// key-value store. Two formats are understood:
//
//   - openssl: base64("Salted__" || salt || AES-256-CBC ciphertext) keyed with
//     MD5 EVP_BytesToKey. This is the format CryptoJS.AES produces for a
//     passphrase, so blobs written by the browser host can be read back.
//   - gcm: "v2:" || base64(nonce || AES-256-GCM ciphertext), keyed with scrypt.
//
// Open accepts either format regardless of the scheme used for Seal.
package seal

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Scheme selects the format used when sealing
type Scheme string

const (
	// SchemeOpenSSL writes CryptoJS-compatible blobs
	SchemeOpenSSL Scheme = "openssl"
	// SchemeGCM writes authenticated v2 blobs
	SchemeGCM Scheme = "gcm"
)

// DefaultPassphrase is the fixed pre-shared key of the browser host.
const DefaultPassphrase = "storageslocal"

var (
	// ErrMalformed is returned for blobs that are not in a known format
	ErrMalformed = errors.New("seal: malformed blob")
	// ErrDecrypt is returned when a blob cannot be decrypted with the passphrase
	ErrDecrypt = errors.New("seal: decryption failed")
)

// Sealer encrypts with one scheme and decrypts both. The GCM key is derived
// on first use, so an openssl sealer that never meets a v2 blob skips scrypt.
type Sealer struct {
	scheme     Scheme
	passphrase []byte

	gcmOnce sync.Once
	gcm     *gcmCodec
	gcmErr  error
}

// New creates a Sealer. An empty scheme defaults to openssl.
func New(scheme Scheme, passphrase string) (*Sealer, error) {
	switch scheme {
	case "":
		scheme = SchemeOpenSSL
	case SchemeOpenSSL, SchemeGCM:
	default:
		return nil, fmt.Errorf("seal: unknown scheme %q", scheme)
	}

	return &Sealer{
		scheme:     scheme,
		passphrase: []byte(passphrase),
	}, nil
}

// Default returns the openssl sealer keyed with DefaultPassphrase, the
// configuration the browser host uses.
func Default() *Sealer {
	return &Sealer{scheme: SchemeOpenSSL, passphrase: []byte(DefaultPassphrase)}
}

func (s *Sealer) gcmCodec() (*gcmCodec, error) {
	s.gcmOnce.Do(func() {
		s.gcm, s.gcmErr = newGCMCodec(s.passphrase)
	})
	return s.gcm, s.gcmErr
}

// Scheme returns the scheme used by Seal
func (s *Sealer) Scheme() Scheme {
	return s.scheme
}

// Seal encrypts plaintext into an opaque string
func (s *Sealer) Seal(plaintext []byte) (string, error) {
	if s.scheme == SchemeGCM {
		c, err := s.gcmCodec()
		if err != nil {
			return "", err
		}
		return c.seal(plaintext)
	}
	return sealOpenSSL(s.passphrase, plaintext)
}

// Open decrypts a blob produced by either scheme
func (s *Sealer) Open(blob string) ([]byte, error) {
	blob = strings.TrimSpace(blob)
	if strings.HasPrefix(blob, gcmPrefix) {
		c, err := s.gcmCodec()
		if err != nil {
			return nil, err
		}
		return c.open(strings.TrimPrefix(blob, gcmPrefix))
	}
	return openOpenSSL(s.passphrase, blob)
}
