package base32x

import "strings"

// Alphabet is the RFC 4648 base32 alphabet used for TOTP secrets.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// decodeMap maps an input byte to its 5-bit value, or skip for bytes
// outside the alphabet.
var decodeMap [256]byte

const skip = 0xFF

func init() {
	for i := range decodeMap {
		decodeMap[i] = skip
	}
	for i := 0; i < len(Alphabet); i++ {
		decodeMap[Alphabet[i]] = byte(i)
		decodeMap[Alphabet[i]|0x20] = byte(i) // lowercase variants decode too
	}
}

// Encode returns the unpadded base32 encoding of src.
func Encode(src []byte) string {
	var sb strings.Builder
	sb.Grow((len(src)*8 + 4) / 5)

	var buf uint16
	var bits uint
	for _, b := range src {
		buf = buf<<8 | uint16(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			sb.WriteByte(Alphabet[buf>>bits&0x1F])
		}
	}
	if bits > 0 {
		sb.WriteByte(Alphabet[buf<<(5-bits)&0x1F])
	}
	return sb.String()
}

// Decode converts a base32 string back to bytes. It accepts lowercase
// input and silently skips padding, whitespace, and any other character
// outside the alphabet, so secrets retyped by users still decode.
// Malformed input yields fewer bytes rather than an error.
func Decode(s string) []byte {
	out := make([]byte, 0, len(s)*5/8)

	var buf uint16
	var bits uint
	for i := 0; i < len(s); i++ {
		v := decodeMap[s[i]]
		if v == skip {
			continue
		}
		buf = buf<<5 | uint16(v)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buf>>bits))
		}
	}
	return out
}
