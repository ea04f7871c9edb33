// Package mfa implements second-factor verification for user accounts:
// authenticator-app TOTP, emailed one-time codes, single-use recovery
// codes, and long-lived trusted-device tokens.
//
// The Service is stateless between calls. All factor state, attempt
// counters, and one-time-use records live behind the Store interface, so
// rate limits and consumption guarantees hold across process restarts
// and concurrent instances. Secrets never leave the package in readable
// form: the TOTP shared secret is sealed with AES-256-GCM before
// storage, and email codes, recovery codes, and device tokens are stored
// only as SHA-256 digests.
//
// Every enrollment, verification, and credential lifecycle transition
// appends an event to the audit trail.
package mfa
