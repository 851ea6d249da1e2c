package seal

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5" // #nosec G501 -- EVP_BytesToKey compatibility, not used for integrity
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

var saltedMagic = []byte("Salted__")

const (
	saltLen   = 8
	aesKeyLen = 32
)

func sealOpenSSL(passphrase, plaintext []byte) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key, iv := evpBytesToKey(passphrase, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, 0, len(saltedMagic)+saltLen+len(padded))
	out = append(out, saltedMagic...)
	out = append(out, salt...)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)
	out = append(out, ct...)

	return base64.StdEncoding.EncodeToString(out), nil
}

func openOpenSSL(passphrase []byte, blob string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, ErrMalformed
	}
	header := len(saltedMagic) + saltLen
	if len(raw) <= header || !bytes.Equal(raw[:len(saltedMagic)], saltedMagic) {
		return nil, ErrMalformed
	}

	salt := raw[len(saltedMagic):header]
	ct := raw[header:]
	if len(ct)%aes.BlockSize != 0 {
		return nil, ErrMalformed
	}

	key, iv := evpBytesToKey(passphrase, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)
	return pkcs7Unpad(plain, aes.BlockSize)
}

// evpBytesToKey is OpenSSL's MD5-based derivation with one iteration,
// producing a 32-byte key and a 16-byte IV.
func evpBytesToKey(passphrase, salt []byte) (key, iv []byte) {
	need := aesKeyLen + aes.BlockSize
	derived := make([]byte, 0, need+md5.Size)
	var prev []byte
	for len(derived) < need {
		h := md5.New() // #nosec G401
		h.Write(prev)
		h.Write(passphrase)
		h.Write(salt)
		prev = h.Sum(nil)
		derived = append(derived, prev...)
	}
	return derived[:aesKeyLen], derived[aesKeyLen:need]
}

func pkcs7Pad(data []byte, size int) []byte {
	n := size - len(data)%size
	return append(append([]byte{}, data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, size int) ([]byte, error) {
	if len(data) == 0 || len(data)%size != 0 {
		return nil, ErrDecrypt
	}
	n := int(data[len(data)-1])
	if n == 0 || n > size || n > len(data) {
		return nil, ErrDecrypt
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrDecrypt
		}
	}
	return data[:len(data)-n], nil
}
