// Package totp implements HMAC-based and time-based one-time passwords
// from first principles (RFC 4226, RFC 6238).
//
// HOTP computes a short numeric code from a shared secret and a counter;
// the time-based variants derive the counter from 30-second steps of wall
// clock time. Verification accepts codes within a configurable window of
// steps around the current one (default ±1) to absorb clock drift.
//
// The package also builds otpauth:// enrollment URIs for authenticator
// apps and seals secrets with AES-256-GCM for storage, since the shared
// secret is the one credential that cannot be reduced to a one-way digest.
//
// Typical enrollment flow:
//
//	secret, _ := totp.GenerateSecretKey()
//	uri, _ := totp.URI(totp.Params{Secret: secret, AccountName: email, Issuer: "HabitForge"})
//	// later, confirming the user's authenticator:
//	ok := totp.Verify(secret, submittedCode)
package totp
