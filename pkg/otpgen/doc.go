// Package otpgen generates the secondary credentials of the MFA service
// (recovery codes, trusted-device tokens, email one-time codes) from
// crypto/rand, and provides the SHA-256 digest used to store and compare
// all of them without retaining plaintext.
package otpgen
