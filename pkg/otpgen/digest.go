package otpgen

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Digest returns the hex-encoded SHA-256 of s. It is the single one-way
// fingerprint used to store recovery codes, device tokens, and email
// codes, so plaintext never needs to be retained for comparison.
func Digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// DigestEqual compares two digests in constant time so comparison
// latency reveals nothing about where they diverge.
func DigestEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// MatchesDigest reports whether plaintext hashes to digest.
func MatchesDigest(plaintext, digest string) bool {
	return DigestEqual(Digest(plaintext), digest)
}
