package otpgen

import "errors"

var (
	ErrFailedToGenerateCode  = errors.New("failed to generate code")
	ErrFailedToGenerateToken = errors.New("failed to generate token")
)
