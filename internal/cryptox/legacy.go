package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"fmt"

	"github.com/roomify-app/roomify/internal/common"
)

// The web client stored keys with CryptoJS.AES.encrypt(secret, passphrase):
// base64("Salted__" | salt[8] | AES-256-CBC(PKCS#7)), key and IV derived
// with OpenSSL EVP_BytesToKey over MD5.

var legacyMagic = []byte("Salted__")

const legacySaltSize = 8

// IsLegacyCiphertext reports whether s looks like the OpenSSL salted format.
func IsLegacyCiphertext(s string) bool {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return false
	}
	return len(raw) >= len(legacyMagic)+legacySaltSize+aes.BlockSize && bytes.HasPrefix(raw, legacyMagic)
}

func evpBytesToKey(passphrase, salt []byte, keyLen, ivLen int) (key, iv []byte) {
	var (
		out  []byte
		prev []byte
	)
	for len(out) < keyLen+ivLen {
		h := md5.New()
		h.Write(prev)
		h.Write(passphrase)
		h.Write(salt)
		prev = h.Sum(nil)
		out = append(out, prev...)
	}
	return out[:keyLen], out[keyLen : keyLen+ivLen]
}

// EncryptLegacy produces the OpenSSL salted format.
func EncryptLegacy(plaintext, passphrase string) (string, error) {
	salt := common.GenerateRandByteArray(legacySaltSize)
	key, iv := evpBytesToKey([]byte(passphrase), salt, 32, aes.BlockSize)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	buf := make([]byte, 0, len(legacyMagic)+len(salt)+len(ct))
	buf = append(buf, legacyMagic...)
	buf = append(buf, salt...)
	buf = append(buf, ct...)
	return base64.StdEncoding.EncodeToString(buf), nil
}

// DecryptLegacy opens the OpenSSL salted format.
func DecryptLegacy(ciphertext, passphrase string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || !bytes.HasPrefix(raw, legacyMagic) {
		return "", ErrMalformedCiphertext
	}
	raw = raw[len(legacyMagic):]
	if len(raw) < legacySaltSize+aes.BlockSize {
		return "", ErrMalformedCiphertext
	}

	salt, ct := raw[:legacySaltSize], raw[legacySaltSize:]
	if len(ct)%aes.BlockSize != 0 {
		return "", ErrMalformedCiphertext
	}

	key, iv := evpBytesToKey([]byte(passphrase), salt, 32, aes.BlockSize)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}

	pt := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(pt, ct)

	pt, err = pkcs7Unpad(pt, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, ErrDecrypt
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, ErrDecrypt
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, ErrDecrypt
		}
	}
	return b[:len(b)-n], nil
}
