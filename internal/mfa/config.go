package mfa

import "time"

// Config is the env-driven service configuration. Defaults implement
// the product policy: 5-minute email codes with a 60-second resend
// cooldown and 5 attempts, 30-day trusted devices, batches of 10
// recovery codes, ±1 step TOTP verification window.
type Config struct {
	Issuer              string        `env:"MFA_ISSUER" envDefault:"HabitForge"`
	SecretEncryptionKey string        `env:"MFA_SECRET_ENCRYPTION_KEY,required"` // base64, 32 bytes decoded
	VerifyWindow        int           `env:"MFA_VERIFY_WINDOW" envDefault:"1"`
	EmailCodeTTL        time.Duration `env:"MFA_EMAIL_CODE_TTL" envDefault:"5m"`
	EmailResendCooldown time.Duration `env:"MFA_EMAIL_RESEND_COOLDOWN" envDefault:"60s"`
	EmailMaxAttempts    int           `env:"MFA_EMAIL_MAX_ATTEMPTS" envDefault:"5"`
	TrustedDeviceTTL    time.Duration `env:"MFA_TRUSTED_DEVICE_TTL" envDefault:"720h"` // 30 days
	RecoveryCodeCount   int           `env:"MFA_RECOVERY_CODE_COUNT" envDefault:"10"`
}
