package mfa

// Audit event types. One is appended for every enrollment, verification,
// and device or recovery lifecycle transition.
const (
	EventEnrollStarted       = "2fa_enroll_started"
	EventTOTPEnabled         = "2fa_totp_enabled"
	EventTOTPDisabled        = "2fa_totp_disabled"
	EventEmailCodeSent       = "2fa_email_code_sent"
	EventEmailEnabled        = "2fa_email_enabled"
	EventEmailDisabled       = "2fa_email_disabled"
	EventVerified            = "2fa_verified"
	EventFailedAttempt       = "2fa_failed_attempt"
	EventRecoveryRegenerated = "2fa_recovery_codes_regenerated"
	EventDeviceTrusted       = "2fa_device_trusted"
	EventDeviceRevoked       = "2fa_device_revoked"
	EventAllDevicesRevoked   = "2fa_all_devices_revoked"
)

// Verification methods recorded on EventVerified.
const (
	MethodTOTP     = "totp"
	MethodEmail    = "email"
	MethodRecovery = "recovery"
)
