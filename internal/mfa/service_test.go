package mfa_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitforge/mfa-service/internal/mfa"
	"github.com/habitforge/mfa-service/pkg/audit"
	"github.com/habitforge/mfa-service/pkg/totp"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	mailer := &fakeMailer{}
	trail := audit.NewLogger(&memAuditStorage{})
	cfg := mfa.Config{SecretEncryptionKey: testKey()}

	tests := []struct {
		name string
		fn   func() (*mfa.Service, error)
	}{
		{name: "nil store", fn: func() (*mfa.Service, error) {
			return mfa.New(cfg, nil, mailer, trail)
		}},
		{name: "nil mailer", fn: func() (*mfa.Service, error) {
			return mfa.New(cfg, store, nil, trail)
		}},
		{name: "nil audit logger", fn: func() (*mfa.Service, error) {
			return mfa.New(cfg, store, mailer, nil)
		}},
		{name: "bad encryption key", fn: func() (*mfa.Service, error) {
			bad := cfg
			bad.SecretEncryptionKey = "not-base64!"
			return mfa.New(bad, store, mailer, trail)
		}},
		{name: "short encryption key", fn: func() (*mfa.Service, error) {
			short := cfg
			short.SecretEncryptionKey = "c2hvcnQ="
			return mfa.New(short, store, mailer, trail)
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.fn()
			require.Error(t, err)
		})
	}

	svc, err := mfa.New(cfg, store, mailer, trail)
	require.NoError(t, err)
	require.NotNil(t, svc)
}

func TestNew_RejectsShortKey(t *testing.T) {
	t.Parallel()

	cfg := mfa.Config{SecretEncryptionKey: "c2hvcnQ="}
	_, err := mfa.New(cfg, newMemStore(), &fakeMailer{}, audit.NewLogger(&memAuditStorage{}))
	require.ErrorIs(t, err, totp.ErrInvalidKeyLength)
}

func TestStatus_NothingEnrolled(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	status, err := env.svc.Status(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.False(t, status.TOTPEnabled)
	assert.False(t, status.TOTPPending)
	assert.False(t, status.EmailEnabled)
	assert.False(t, status.TrustedDevice)
	assert.Zero(t, status.RecoveryCodesRemaining)
}

func TestStatus_UnknownDeviceToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	userID := uuid.New()
	env.enrollTOTP(t, userID)

	status, err := env.svc.Status(context.Background(), userID, "deadbeef")
	require.NoError(t, err)
	assert.True(t, status.TOTPEnabled)
	assert.False(t, status.TrustedDevice)
}
