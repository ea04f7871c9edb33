package mfa_test

import (
	"context"
	"encoding/base64"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/habitforge/mfa-service/internal/mfa"
	"github.com/habitforge/mfa-service/pkg/audit"
	"github.com/habitforge/mfa-service/pkg/email"
	"github.com/habitforge/mfa-service/pkg/totp"
)

// totpCodeAt computes the authenticator-side code for the given moment.
func totpCodeAt(secret string, at time.Time) string {
	return totp.GenerateAt(secret, at)
}

var testStart = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// clock is a mutable time source shared by the service under test and
// the assertions.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock(t time.Time) *clock { return &clock{t: t} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// memStore is an in-memory mfa.Store with the same row-atomic semantics
// the postgres implementation provides.
type memStore struct {
	mu       sync.Mutex
	settings map[uuid.UUID]*mfa.TwoFactorSettings
	codes    map[uuid.UUID][]*mfa.RecoveryCode
	devices  map[uuid.UUID][]*mfa.TrustedDevice
}

func newMemStore() *memStore {
	return &memStore{
		settings: make(map[uuid.UUID]*mfa.TwoFactorSettings),
		codes:    make(map[uuid.UUID][]*mfa.RecoveryCode),
		devices:  make(map[uuid.UUID][]*mfa.TrustedDevice),
	}
}

func copySettings(s *mfa.TwoFactorSettings) *mfa.TwoFactorSettings {
	cp := *s
	if s.EmailCodeExpiresAt != nil {
		t := *s.EmailCodeExpiresAt
		cp.EmailCodeExpiresAt = &t
	}
	return &cp
}

func (m *memStore) GetSettings(_ context.Context, userID uuid.UUID) (*mfa.TwoFactorSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[userID]
	if !ok {
		return nil, mfa.ErrSettingsNotFound
	}
	return copySettings(s), nil
}

func (m *memStore) SaveSettings(_ context.Context, settings *mfa.TwoFactorSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[settings.UserID] = copySettings(settings)
	return nil
}

func (m *memStore) SetEmailCode(_ context.Context, userID uuid.UUID, codeHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[userID]
	if !ok {
		return mfa.ErrSettingsNotFound
	}
	s.EmailCodeHash = codeHash
	s.EmailCodeExpiresAt = &expiresAt
	s.EmailCodeAttempts = 0
	return nil
}

func (m *memStore) ClearEmailCode(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[userID]
	if !ok {
		return mfa.ErrSettingsNotFound
	}
	s.EmailCodeHash = ""
	s.EmailCodeExpiresAt = nil
	s.EmailCodeAttempts = 0
	return nil
}

func (m *memStore) ClaimEmailAttempt(_ context.Context, userID uuid.UUID, limit int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[userID]
	if !ok || s.EmailCodeAttempts >= limit {
		return false, nil
	}
	s.EmailCodeAttempts++
	return true, nil
}

func (m *memStore) emailAttempts(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.settings[userID]; ok {
		return s.EmailCodeAttempts
	}
	return 0
}

func (m *memStore) ReplaceRecoveryCodes(_ context.Context, userID uuid.UUID, codes []mfa.RecoveryCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]*mfa.RecoveryCode, 0, len(codes))
	for i := range codes {
		c := codes[i]
		rows = append(rows, &c)
	}
	m.codes[userID] = rows
	return nil
}

func (m *memStore) ConsumeRecoveryCode(_ context.Context, userID uuid.UUID, codeHash string, usedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes[userID] {
		if c.CodeHash == codeHash && c.UsedAt == nil {
			t := usedAt
			c.UsedAt = &t
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CountUnusedRecoveryCodes(_ context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.codes[userID] {
		if c.UsedAt == nil {
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteRecoveryCodes(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, userID)
	return nil
}

func (m *memStore) CreateTrustedDevice(_ context.Context, device *mfa.TrustedDevice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *device
	m.devices[device.UserID] = append(m.devices[device.UserID], &cp)
	return nil
}

func (m *memStore) FindTrustedDevice(_ context.Context, userID uuid.UUID, tokenHash string, now time.Time) (*mfa.TrustedDevice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *mfa.TrustedDevice
	for _, d := range m.devices[userID] {
		if d.TokenHash != tokenHash || d.Expired(now) {
			continue
		}
		if found == nil || d.CreatedAt.After(found.CreatedAt) {
			found = d
		}
	}
	if found == nil {
		return nil, mfa.ErrDeviceNotFound
	}
	cp := *found
	return &cp, nil
}

func (m *memStore) TouchTrustedDevice(_ context.Context, deviceID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, devices := range m.devices {
		for _, d := range devices {
			if d.ID == deviceID {
				d.LastUsedAt = at
				return nil
			}
		}
	}
	return mfa.ErrDeviceNotFound
}

func (m *memStore) ListTrustedDevices(_ context.Context, userID uuid.UUID) ([]mfa.TrustedDevice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mfa.TrustedDevice, 0, len(m.devices[userID]))
	for _, d := range m.devices[userID] {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) DeleteTrustedDevice(_ context.Context, userID uuid.UUID, deviceID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	devices := m.devices[userID]
	for i, d := range devices {
		if d.ID == deviceID {
			m.devices[userID] = append(devices[:i], devices[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) DeleteAllTrustedDevices(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.devices, userID)
	return nil
}

// fakeMailer records sent messages and can be told to fail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
	err  error
}

func (f *fakeMailer) SendEmail(_ context.Context, params email.SendEmailParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, params)
	return nil
}

func (f *fakeMailer) failWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeMailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

var digitsRe = regexp.MustCompile(`\d{6}`)

// lastCode extracts the 6-digit code from the most recent message body.
func (f *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no email was sent")
	code := digitsRe.FindString(f.sent[len(f.sent)-1].BodyHTML)
	require.Len(t, code, 6)
	return code
}

// memAuditStorage records audit events in order.
type memAuditStorage struct {
	mu     sync.Mutex
	events []audit.Event
}

func (m *memAuditStorage) Store(_ context.Context, event audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *memAuditStorage) byAction(action string) []audit.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []audit.Event
	for _, e := range m.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	svc    *mfa.Service
	store  *memStore
	mailer *fakeMailer
	trail  *memAuditStorage
	clock  *clock
	cfg    mfa.Config
}

func testKey() string {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return base64.StdEncoding.EncodeToString(key)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:  newMemStore(),
		mailer: &fakeMailer{},
		trail:  &memAuditStorage{},
		clock:  newClock(testStart),
		cfg: mfa.Config{
			Issuer:              "HabitForge",
			SecretEncryptionKey: testKey(),
			VerifyWindow:        1,
			EmailCodeTTL:        5 * time.Minute,
			EmailResendCooldown: time.Minute,
			EmailMaxAttempts:    5,
			TrustedDeviceTTL:    30 * 24 * time.Hour,
			RecoveryCodeCount:   10,
		},
	}

	auditLog := audit.NewLogger(env.trail, audit.WithClock(env.clock.Now))
	svc, err := mfa.New(env.cfg, env.store, env.mailer, auditLog, mfa.WithClock(env.clock.Now))
	require.NoError(t, err)
	env.svc = svc
	return env
}

// enrollTOTP drives a full TOTP enrollment and returns the shared secret
// and the recovery-code batch.
func (env *testEnv) enrollTOTP(t *testing.T, userID uuid.UUID) (string, []string) {
	t.Helper()
	ctx := context.Background()

	enrollment, err := env.svc.BeginEnroll(ctx, userID, "user@example.com")
	require.NoError(t, err)

	codes, err := env.svc.ConfirmEnroll(ctx, userID, totpCodeAt(enrollment.Secret, env.clock.Now()))
	require.NoError(t, err)
	return enrollment.Secret, codes
}

// enableEmail drives a full email-factor enrollment and returns the
// recovery-code batch (nil when TOTP was already active).
func (env *testEnv) enableEmail(t *testing.T, userID uuid.UUID) []string {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, env.svc.EnableEmail2FA(ctx, userID, "user@example.com"))
	codes, err := env.svc.ConfirmEmail2FA(ctx, userID, env.mailer.lastCode(t))
	require.NoError(t, err)
	return codes
}
