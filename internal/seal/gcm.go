package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

const gcmPrefix = "v2:"

// The passphrase is fixed per deployment, so the key is derived once with a
// fixed salt; every blob still gets a fresh nonce.
var gcmSalt = []byte("wordsmith/seal/v2")

const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

type gcmCodec struct {
	aead cipher.AEAD
}

func newGCMCodec(passphrase []byte) (*gcmCodec, error) {
	key, err := scrypt.Key(passphrase, gcmSalt, scryptN, scryptR, scryptP, aesKeyLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &gcmCodec{aead: aead}, nil
}

func (c *gcmCodec) seal(plaintext []byte) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	out := c.aead.Seal(nonce, nonce, plaintext, nil)
	return gcmPrefix + base64.StdEncoding.EncodeToString(out), nil
}

func (c *gcmCodec) open(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrMalformed
	}
	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return nil, ErrMalformed
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}
