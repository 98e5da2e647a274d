// Package cryptox implements the symmetric encryption used to keep third-party
// API keys encrypted at rest, plus key-format validation.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrMalformedCiphertext is returned for input that is not a known envelope.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
	// ErrDecrypt is returned when a well-formed envelope fails to authenticate
	// or unpad, typically because the passphrase differs.
	ErrDecrypt = errors.New("decryption failed")
)

// DeriveMasterKey stretches password with argon2id into a 32-byte key.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// sealGCM encrypts plaintext with AES-GCM under key and a fresh random nonce.
func sealGCM(key, plaintext []byte) (ciphertext, nonce []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	return aesgcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

func openGCM(key, nonce, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
