package totp_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitforge/mfa-service/pkg/base32x"
	"github.com/habitforge/mfa-service/pkg/totp"
)

func TestHOTPVectors(t *testing.T) {
	t.Parallel()

	// RFC 4226 Appendix D reference values for the ASCII secret
	// "12345678901234567890".
	key := []byte("12345678901234567890")
	want := []string{
		"755224", "287082", "359152", "969429", "338314",
		"254676", "287922", "162583", "399871", "520489",
	}

	for counter, code := range want {
		assert.Equal(t, code, totp.HOTP(key, uint64(counter), 6), "counter %d", counter)
	}
}

func TestHOTPZeroPadding(t *testing.T) {
	t.Parallel()

	key := []byte("12345678901234567890")
	for counter := uint64(0); counter < 200; counter++ {
		code := totp.HOTP(key, counter, 6)
		assert.Len(t, code, 6)
	}
}

func TestGenerateSecretKey(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)
	assert.Len(t, secret, 32) // 20 bytes -> 32 base32 chars
	assert.Len(t, base32x.Decode(secret), 20)
}

func TestVerifyAt(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)

	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	step := totp.DefaultPeriod * time.Second

	t.Run("current step accepted", func(t *testing.T) {
		t.Parallel()
		assert.True(t, totp.VerifyAt(secret, totp.GenerateAt(secret, now), now, 1))
	})

	t.Run("adjacent steps accepted within window", func(t *testing.T) {
		t.Parallel()
		assert.True(t, totp.VerifyAt(secret, totp.GenerateAt(secret, now.Add(-step)), now, 1))
		assert.True(t, totp.VerifyAt(secret, totp.GenerateAt(secret, now.Add(step)), now, 1))
	})

	t.Run("steps beyond window rejected", func(t *testing.T) {
		t.Parallel()
		assert.False(t, totp.VerifyAt(secret, totp.GenerateAt(secret, now.Add(-2*step)), now, 1))
		assert.False(t, totp.VerifyAt(secret, totp.GenerateAt(secret, now.Add(2*step)), now, 1))
	})

	t.Run("wider window accepts more drift", func(t *testing.T) {
		t.Parallel()
		assert.True(t, totp.VerifyAt(secret, totp.GenerateAt(secret, now.Add(-2*step)), now, 2))
	})

	t.Run("zero window accepts only current step", func(t *testing.T) {
		t.Parallel()
		assert.True(t, totp.VerifyAt(secret, totp.GenerateAt(secret, now), now, 0))
		assert.False(t, totp.VerifyAt(secret, totp.GenerateAt(secret, now.Add(step)), now, 0))
	})

	t.Run("whitespace around the code is tolerated", func(t *testing.T) {
		t.Parallel()
		assert.True(t, totp.VerifyAt(secret, "  "+totp.GenerateAt(secret, now)+"\n", now, 1))
	})
}

func TestVerifyAtRejectsMalformedCodes(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecretKey()
	require.NoError(t, err)
	now := time.Now()

	tests := []struct {
		name string
		code string
	}{
		{name: "empty", code: ""},
		{name: "too short", code: "12345"},
		{name: "too long", code: "1234567"},
		{name: "letters", code: "12345a"},
		{name: "internal space", code: "123 456"},
		{name: "unicode digits", code: "１２３４５６"},
		{name: "negative", code: "-12345"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.False(t, totp.VerifyAt(secret, tt.code, now, 1))
		})
	}
}

func TestVerifyAtEmptySecret(t *testing.T) {
	t.Parallel()
	assert.False(t, totp.VerifyAt("", "123456", time.Now(), 1))
}

func TestURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  totp.Params
		want    string
		wantErr error
	}{
		{
			name: "defaults applied",
			params: totp.Params{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "player@example.com",
				Issuer:      "HabitForge",
			},
			want: "otpauth://totp/HabitForge:player@example.com?algorithm=SHA1&digits=6&issuer=HabitForge&period=30&secret=ABCDEFGHIJKLMNOP",
		},
		{
			name: "missing secret",
			params: totp.Params{
				AccountName: "player@example.com",
				Issuer:      "HabitForge",
			},
			wantErr: totp.ErrMissingSecret,
		},
		{
			name: "missing account name",
			params: totp.Params{
				Secret: "ABCDEFGHIJKLMNOP",
				Issuer: "HabitForge",
			},
			wantErr: totp.ErrMissingAccountName,
		},
		{
			name: "missing issuer",
			params: totp.Params{
				Secret:      "ABCDEFGHIJKLMNOP",
				AccountName: "player@example.com",
			},
			wantErr: totp.ErrMissingIssuer,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := totp.URI(tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
