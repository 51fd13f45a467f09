// Package device derives a stable device identity from request metadata.
//
// Check-ins come from staff phones, and the in-flight submission guard and
// the audit trail both need a per-device handle. There is no device
// enrollment; the fingerprint is a best-effort stable hash of what the
// request itself carries.
package device

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/mssola/useragent"
)

// fingerprintLen is the hex length of the derived device handle. 16 bytes of
// a SHA-256 is plenty for a non-adversarial identifier.
const fingerprintLen = 32

// Info describes the submitting device.
type Info struct {
	Browser        string
	BrowserVersion string
	OS             string
	Mobile         bool
	// Fingerprint is a stable hash of User-Agent and client IP. Two requests
	// with identical metadata get the same fingerprint.
	Fingerprint string
}

// Describe parses the User-Agent and derives the device fingerprint.
func Describe(userAgent, clientIP string) Info {
	ua := useragent.New(userAgent)
	browser, version := ua.Browser()
	return Info{
		Browser:        browser,
		BrowserVersion: version,
		OS:             ua.OS(),
		Mobile:         ua.Mobile(),
		Fingerprint:    Fingerprint(userAgent, clientIP),
	}
}

// Fingerprint hashes the request metadata into a stable device handle.
func Fingerprint(userAgent, clientIP string) string {
	sum := sha256.Sum256([]byte(userAgent + "\x00" + clientIP))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}
