package paymob

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

// Sign computes the hex-encoded HMAC-SHA512 of payload under secret.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature authenticates a webhook payload. The digest is computed
// over the exact bytes as received — never a re-serialized object, since
// key ordering or whitespace differences would change the hash. Comparison
// is constant time.
func VerifySignature(payload []byte, providedHex, secret string) bool {
	provided, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(providedHex)))
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), provided)
}
