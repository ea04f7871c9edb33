package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/habitforge/mfa-service/pkg/base32x"
)

const (
	DefaultDigits = 6  // Standard 6-digit codes
	DefaultPeriod = 30 // 30-second time step (RFC 6238 standard)

	// DefaultWindow accepts codes one step either side of the current one,
	// tolerating ±30s of clock drift between server and authenticator.
	// Widening it trades security for usability.
	DefaultWindow = 1
)

// codeRegex is the only shape of candidate worth spending HMAC work on.
var codeRegex = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, DefaultDigits))

// Params describes a key for the otpauth:// Key Uri Format understood by
// authenticator apps:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
type Params struct {
	Secret      string // Base32-encoded shared secret (required)
	AccountName string // User identifier, typically an email (required)
	Issuer      string // Service name shown in the authenticator app (required)
	Digits      int    // Code length (optional, defaults to 6)
	Period      int    // Step length in seconds (optional, defaults to 30)
}

// Validate ensures all required URI parameters are present.
func (p Params) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// GenerateSecretKey returns a new base32-encoded 160-bit shared secret
// (RFC 4226 recommended strength).
func GenerateSecretKey() (string, error) {
	secret := make([]byte, 20)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return base32x.Encode(secret), nil
}

// URI builds the otpauth:// enrollment URI for p.
func URI(p Params) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}

	label := fmt.Sprintf("%s:%s", url.PathEscape(p.Issuer), url.PathEscape(p.AccountName))

	query := url.Values{}
	query.Set("secret", p.Secret)
	query.Set("issuer", p.Issuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", fmt.Sprintf("%d", p.Digits))
	query.Set("period", fmt.Sprintf("%d", p.Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// HOTP computes the RFC 4226 HMAC-based one-time password for a counter
// value, zero-padded to digits.
func HOTP(key []byte, counter uint64, digits int) string {
	var counterBytes [8]byte
	binary.BigEndian.PutUint64(counterBytes[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: the low nibble of the last byte picks a 4-byte
	// window; the top bit is cleared to avoid signedness ambiguity.
	offset := sum[len(sum)-1] & 0x0F
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7FFFFFFF

	return fmt.Sprintf("%0*d", digits, code%uint32(math.Pow10(digits)))
}

// Generate returns the code for the current time step.
func Generate(secret string) string {
	return GenerateAt(secret, time.Now())
}

// GenerateAt returns the code for the time step containing t. Useful for
// tests and for pre-computing codes for specific moments.
func GenerateAt(secret string, t time.Time) string {
	key := base32x.Decode(secret)
	counter := uint64(t.Unix() / DefaultPeriod)
	return HOTP(key, counter, DefaultDigits)
}

// Verify reports whether code is valid for secret at the current time,
// using the default ±1 step window.
func Verify(secret, code string) bool {
	return VerifyAt(secret, code, time.Now(), DefaultWindow)
}

// VerifyAt reports whether code is valid for secret at time t, accepting
// codes up to window steps away from the current one. Candidates that do
// not look like a code at all are rejected before any HMAC is computed.
func VerifyAt(secret, code string, t time.Time, window int) bool {
	code = strings.TrimSpace(code)
	if !codeRegex.MatchString(code) {
		return false
	}
	key := base32x.Decode(secret)
	if len(key) == 0 {
		return false
	}

	counter := t.Unix() / DefaultPeriod
	for i := -window; i <= window; i++ {
		c := counter + int64(i)
		if c < 0 {
			continue
		}
		if hmac.Equal([]byte(HOTP(key, uint64(c), DefaultDigits)), []byte(code)) {
			return true
		}
	}
	return false
}
