package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/roomify-app/roomify/internal/common"
	"golang.org/x/crypto/hkdf"
)

// Cipher turns secrets into opaque strings and back.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

const (
	envelopePrefix = "v1."
	recordSaltSize = 16
	gcmNonceSize   = 12
)

// appSalt is fixed so every process sharing a passphrase derives the same master key.
var appSalt = []byte("roomify/user_api_keys")

var hkdfInfo = []byte("roomify api key record")

// PassphraseCipher derives all keys from one process-wide passphrase.
//
// Each record gets its own AES-256-GCM key, expanded with HKDF from the
// argon2id master key and a random per-record salt. The envelope is
// "v1." + base64url(salt | nonce | ciphertext).
//
// Decrypt also accepts the OpenSSL "Salted__" passphrase format produced by
// CryptoJS, so records written by the web client remain readable.
type PassphraseCipher struct {
	passphrase string
	master     []byte
}

// NewPassphraseCipher runs argon2id once, so construct it at startup.
func NewPassphraseCipher(passphrase string) *PassphraseCipher {
	return &PassphraseCipher{
		passphrase: passphrase,
		master:     DeriveMasterKey([]byte(passphrase), appSalt),
	}
}

func (c *PassphraseCipher) recordKey(salt []byte) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, c.master, salt, hkdfInfo), key); err != nil {
		return nil, err
	}
	return key, nil
}

// Encrypt seals plaintext into a v1 envelope. Two calls with the same input
// produce different outputs.
func (c *PassphraseCipher) Encrypt(plaintext string) (string, error) {
	salt := common.GenerateRandByteArray(recordSaltSize)

	key, err := c.recordKey(salt)
	if err != nil {
		return "", fmt.Errorf("key derivation: %w", err)
	}
	defer common.WipeByteArray(key)

	ct, nonce, err := sealGCM(key, []byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}

	buf := make([]byte, 0, len(salt)+len(nonce)+len(ct))
	buf = append(buf, salt...)
	buf = append(buf, nonce...)
	buf = append(buf, ct...)

	return envelopePrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// Decrypt opens a v1 envelope or a legacy OpenSSL-format string.
func (c *PassphraseCipher) Decrypt(ciphertext string) (string, error) {
	if strings.HasPrefix(ciphertext, envelopePrefix) {
		return c.decryptEnvelope(strings.TrimPrefix(ciphertext, envelopePrefix))
	}
	if IsLegacyCiphertext(ciphertext) {
		return DecryptLegacy(ciphertext, c.passphrase)
	}
	return "", ErrMalformedCiphertext
}

func (c *PassphraseCipher) decryptEnvelope(encoded string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrMalformedCiphertext
	}
	if len(raw) < recordSaltSize+gcmNonceSize+1 {
		return "", ErrMalformedCiphertext
	}

	salt := raw[:recordSaltSize]
	nonce := raw[recordSaltSize : recordSaltSize+gcmNonceSize]
	ct := raw[recordSaltSize+gcmNonceSize:]

	key, err := c.recordKey(salt)
	if err != nil {
		return "", fmt.Errorf("key derivation: %w", err)
	}
	defer common.WipeByteArray(key)

	pt, err := openGCM(key, nonce, ct)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}
