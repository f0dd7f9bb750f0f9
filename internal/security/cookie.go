package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// CookieCodec signs and verifies "value|hexmac" tokens with a server secret.
type CookieCodec struct {
	secret []byte
}

// NewCookieCodec returns a codec keyed by secret.
func NewCookieCodec(secret string) *CookieCodec {
	return &CookieCodec{secret: []byte(secret)}
}

func (c *CookieCodec) mac(value string) string {
	h := hmac.New(sha256.New, c.secret)
	h.Write([]byte(value))
	return hex.EncodeToString(h.Sum(nil))
}

// Sign returns value followed by "|" and its hex HMAC-SHA256.
func (c *CookieCodec) Sign(value string) string {
	return value + "|" + c.mac(value)
}

// Verify returns the signed value when token carries a valid signature.
// The split happens at the last "|", so values may themselves contain "|".
func (c *CookieCodec) Verify(token string) (string, bool) {
	i := strings.LastIndexByte(token, '|')
	if i < 0 {
		return "", false
	}
	value, sig := token[:i], token[i+1:]
	if !hmac.Equal([]byte(sig), []byte(c.mac(value))) {
		return "", false
	}
	return value, true
}
