// Package base32x implements the unpadded RFC 4648 base32 codec used for
// TOTP shared secrets in enrollment URIs.
//
// Unlike encoding/base32, decoding is deliberately forgiving: lowercase
// input, internal whitespace, trailing '=' padding, and stray characters
// are all tolerated because users retype secrets by hand. Decode never
// fails; characters outside the alphabet are skipped.
package base32x
