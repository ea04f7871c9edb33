// Package qrcode renders strings as QR code PNGs, used to hand otpauth
// enrollment URIs to authenticator apps.
package qrcode
