// Package idcodec turns numeric record ids into opaque URL-safe tokens and back.
// The key is static and shipped with the service, so tokens only keep raw ids
// out of URLs. They are not an access control mechanism.
package idcodec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
)

type Codec struct {
	aead cipher.AEAD
	rand io.Reader
}

// New derives an AES-256-GCM key from passphrase.
func New(passphrase string) (*Codec, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("idcodec: empty key")
	}
	key := sha256.Sum256([]byte(passphrase))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("idcodec: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("idcodec: %w", err)
	}
	return &Codec{aead: aead, rand: rand.Reader}, nil
}

// Encode returns a fresh token for id; two calls give different tokens.
func (c *Codec) Encode(id int64) string {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(c.rand, nonce); err != nil {
		return ""
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(strconv.FormatInt(id, 10)), nil)
	return base64.RawURLEncoding.EncodeToString(sealed)
}

// Decode recovers the id. Any malformed, truncated or foreign token yields false.
func (c *Codec) Decode(token string) (int64, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, false
	}
	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return 0, false
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return 0, false
	}
	id, err := strconv.ParseInt(string(plain), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
