package mfa

import "errors"

var (
	// ErrNotEnrolled means the action requires a factor that was never
	// set up for this user.
	ErrNotEnrolled = errors.New("two-factor authentication is not set up")
	// ErrInvalidCredential covers every non-matching proof: wrong,
	// expired, and already-used candidates answer identically so the
	// response leaks nothing about which it was.
	ErrInvalidCredential = errors.New("invalid verification code")
	// ErrRateLimited means the resend cooldown or the attempt cap was hit.
	ErrRateLimited = errors.New("too many attempts, try again later")
	// ErrDeliveryFailed means the email provider refused the message.
	ErrDeliveryFailed = errors.New("failed to deliver verification code")
	// ErrNoEmailAddress means the account has no address to send to.
	ErrNoEmailAddress = errors.New("account has no email address")
	// ErrDeviceNotFound means the referenced trusted device does not
	// exist for this user.
	ErrDeviceNotFound = errors.New("trusted device not found")
	// ErrSettingsNotFound is returned by stores when no settings row
	// exists yet.
	ErrSettingsNotFound = errors.New("two-factor settings not found")
)
