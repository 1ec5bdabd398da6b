package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"

	"golang.org/x/crypto/pbkdf2"
)

// signingSalt is fixed: the derived key only needs to be stable per
// secret, not per message.
var signingSalt = []byte("question-bank/storage-url")

// deriveSigningKey stretches the configured secret into a 32-byte HMAC
// key so short or low-entropy config values still produce a full-width
// key.
func deriveSigningKey(secret string) []byte {
	return pbkdf2.Key([]byte(secret), signingSalt, 10_000, 32, sha256.New)
}

// SignPath produces a URL-safe signature over a storage path and its
// expiry (unix seconds).
func SignPath(secret, path string, expires int64) string {
	mac := hmac.New(sha256.New, deriveSigningKey(secret))
	mac.Write([]byte(path))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatInt(expires, 10)))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyPath checks a signature produced by SignPath. Comparison is
// constant time.
func VerifyPath(secret, path string, expires int64, sig string) error {
	want, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	mac := hmac.New(sha256.New, deriveSigningKey(secret))
	mac.Write([]byte(path))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatInt(expires, 10)))
	if !hmac.Equal(want, mac.Sum(nil)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
