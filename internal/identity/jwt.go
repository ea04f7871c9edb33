package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config is the env-driven provider configuration. RefreshURL is
// optional; without it expired tokens are simply unauthorized.
type Config struct {
	SigningSecret string        `env:"IDENTITY_JWT_SECRET,required"`
	RefreshURL    string        `env:"IDENTITY_REFRESH_URL"`
	HTTPTimeout   time.Duration `env:"IDENTITY_HTTP_TIMEOUT" envDefault:"5s"`
}

// Claims is the token payload issued by the identity service.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTProvider verifies HS256 bearer tokens against the shared signing
// secret.
type JWTProvider struct {
	secret     []byte
	refreshURL string
	client     *http.Client
}

// NewJWTProvider creates a provider from cfg.
func NewJWTProvider(cfg Config) (*JWTProvider, error) {
	if cfg.SigningSecret == "" {
		return nil, errors.New("identity: signing secret is required")
	}
	return &JWTProvider{
		secret:     []byte(cfg.SigningSecret),
		refreshURL: cfg.RefreshURL,
		client:     &http.Client{Timeout: cfg.HTTPTimeout},
	}, nil
}

// Resolve verifies the token and returns the identity it names. An
// expired token is exchanged once against the refresh endpoint; any
// other failure, or a failed exchange, answers ErrUnauthorized.
func (p *JWTProvider) Resolve(ctx context.Context, token string) (*Identity, error) {
	ident, err := p.parse(token)
	if err == nil {
		return ident, nil
	}
	if !errors.Is(err, jwt.ErrTokenExpired) || p.refreshURL == "" {
		return nil, errors.Join(ErrUnauthorized, err)
	}

	refreshed, err := p.refresh(ctx, token)
	if err != nil {
		return nil, errors.Join(ErrUnauthorized, err)
	}
	ident, err = p.parse(refreshed)
	if err != nil {
		return nil, errors.Join(ErrUnauthorized, err)
	}
	return ident, nil
}

func (p *JWTProvider) parse(token string) (*Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}
	return &Identity{UserID: userID, Email: claims.Email}, nil
}

// refresh exchanges an expired token for a fresh one. One attempt, no
// retries beyond it.
func (p *JWTProvider) refresh(ctx context.Context, token string) (string, error) {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return "", errors.Join(ErrRefreshFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.refreshURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.Join(ErrRefreshFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", errors.Join(ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrRefreshFailed, resp.StatusCode)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", errors.Join(ErrRefreshFailed, err)
	}
	if payload.Token == "" {
		return "", fmt.Errorf("%w: empty token in response", ErrRefreshFailed)
	}
	return payload.Token, nil
}
