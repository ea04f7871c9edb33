package otpgen_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitforge/mfa-service/pkg/otpgen"
)

var (
	recoveryCodeRegex = regexp.MustCompile(`^[a-km-z2-9]{4}-[a-km-z2-9]{4}-[a-km-z2-9]{2}$`)
	deviceTokenRegex  = regexp.MustCompile(`^[0-9a-f]{64}$`)
	emailCodeRegex    = regexp.MustCompile(`^\d{6}$`)
)

func TestRecoveryCodeFormat(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		code, err := otpgen.RecoveryCode()
		require.NoError(t, err)
		assert.Regexp(t, recoveryCodeRegex, code)
		// Ambiguous glyphs never appear.
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "1")
		assert.NotContains(t, code, "l")
	}
}

func TestRecoveryCodesDistinct(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		code, err := otpgen.RecoveryCode()
		require.NoError(t, err)
		_, dup := seen[code]
		require.False(t, dup, "duplicate recovery code %q", code)
		seen[code] = struct{}{}
	}
}

func TestDeviceTokenFormat(t *testing.T) {
	t.Parallel()

	a, err := otpgen.DeviceToken()
	require.NoError(t, err)
	b, err := otpgen.DeviceToken()
	require.NoError(t, err)

	assert.Regexp(t, deviceTokenRegex, a)
	assert.NotEqual(t, a, b)
}

func TestEmailCodeFormat(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		code, err := otpgen.EmailCode()
		require.NoError(t, err)
		assert.Regexp(t, emailCodeRegex, code)
	}
}

func TestDigest(t *testing.T) {
	t.Parallel()

	// Known SHA-256 of "abc".
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		otpgen.Digest("abc"),
	)
	assert.Equal(t, otpgen.Digest("x"), otpgen.Digest("x"))
	assert.NotEqual(t, otpgen.Digest("x"), otpgen.Digest("y"))
}

func TestDigestEqual(t *testing.T) {
	t.Parallel()

	d := otpgen.Digest("secret")
	assert.True(t, otpgen.DigestEqual(d, otpgen.Digest("secret")))
	assert.False(t, otpgen.DigestEqual(d, otpgen.Digest("other")))
	assert.False(t, otpgen.DigestEqual(d, ""))
}

func TestMatchesDigest(t *testing.T) {
	t.Parallel()

	assert.True(t, otpgen.MatchesDigest("hunter2", otpgen.Digest("hunter2")))
	assert.False(t, otpgen.MatchesDigest("hunter3", otpgen.Digest("hunter2")))
}
