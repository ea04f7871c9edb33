package otpgen

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// recoveryAlphabet holds the 33 symbols used for recovery codes. Glyphs
// that are easy to misread when printed or read aloud (0, O, 1, I, l,
// uppercase forms) are excluded.
const recoveryAlphabet = "abcdefghijkmnopqrstuvwxyz23456789"

const (
	recoveryCodeBytes = 10
	deviceTokenBytes  = 32
	emailCodeDigits   = 6
)

// RecoveryCode returns a one-time backup code in XXXX-XXXX-XX form,
// drawn from the unambiguous alphabet.
func RecoveryCode() (string, error) {
	buf := make([]byte, recoveryCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Join(ErrFailedToGenerateCode, err)
	}

	var sb strings.Builder
	sb.Grow(recoveryCodeBytes + 2)
	for i, b := range buf {
		if i == 4 || i == 8 {
			sb.WriteByte('-')
		}
		sb.WriteByte(recoveryAlphabet[int(b)%len(recoveryAlphabet)])
	}
	return sb.String(), nil
}

// DeviceToken returns a 256-bit bearer token as lowercase hex. The
// plaintext is handed to the caller exactly once; only its digest is
// ever persisted.
func DeviceToken() (string, error) {
	buf := make([]byte, deviceTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Join(ErrFailedToGenerateToken, err)
	}
	return hex.EncodeToString(buf), nil
}

// EmailCode returns a 6-digit numeric code for the email fallback
// channel, zero-padded.
func EmailCode() (string, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", errors.Join(ErrFailedToGenerateCode, err)
	}
	n := binary.BigEndian.Uint32(buf[:]) % 1_000_000
	return fmt.Sprintf("%0*d", emailCodeDigits, n), nil
}
