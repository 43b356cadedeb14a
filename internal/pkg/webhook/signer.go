package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Wire format: the canonical payload bytes are produced once at dispatch
// time, stored on the delivery record, signed, and sent verbatim as the
// request body. Canonical encoding is compact encoding/json output with
// object keys in sorted order (Go sorts map keys when marshaling). Receivers
// verify by HMAC-ing the body bytes they received, so sign-time and
// verify-time serialization never diverge.

// Sign returns the hex-encoded HMAC-SHA-256 digest of payload keyed by secret.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeader returns the X-Hub-Signature-256 header value for payload.
func SignatureHeader(payload []byte, secret string) string {
	return fmt.Sprintf("sha256=%s", Sign(payload, secret))
}

// CanonicalPayload serializes an opaque payload tree to its canonical bytes.
func CanonicalPayload(payload map[string]any) ([]byte, error) {
	return json.Marshal(payload)
}
