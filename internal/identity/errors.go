package identity

import "errors"

var (
	// ErrUnauthorized wraps every resolution failure: malformed,
	// mis-signed, expired-and-unrefreshable tokens all answer the same.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRefreshFailed means the refresh endpoint rejected the exchange.
	ErrRefreshFailed = errors.New("token refresh failed")
)
