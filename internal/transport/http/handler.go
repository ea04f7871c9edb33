package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/habitforge/mfa-service/internal/identity"
	"github.com/habitforge/mfa-service/internal/mfa"
)

// Service is the slice of the domain service the transport needs.
type Service interface {
	Status(ctx context.Context, userID uuid.UUID, deviceToken string) (*mfa.StatusInfo, error)
	BeginEnroll(ctx context.Context, userID uuid.UUID, accountEmail string) (*mfa.Enrollment, error)
	ConfirmEnroll(ctx context.Context, userID uuid.UUID, code string) ([]string, error)
	Verify(ctx context.Context, userID uuid.UUID, req mfa.VerifyRequest) (*mfa.VerifyResult, error)
	DisableTOTP(ctx context.Context, userID uuid.UUID) error
	EnableEmail2FA(ctx context.Context, userID uuid.UUID, accountEmail string) error
	ConfirmEmail2FA(ctx context.Context, userID uuid.UUID, code string) ([]string, error)
	SendEmailCode(ctx context.Context, userID uuid.UUID, accountEmail string) error
	DisableEmail2FA(ctx context.Context, userID uuid.UUID) error
	RegenerateRecoveryCodes(ctx context.Context, userID uuid.UUID) ([]string, error)
	ListTrustedDevices(ctx context.Context, userID uuid.UUID) ([]mfa.TrustedDevice, error)
	RevokeTrustedDevice(ctx context.Context, userID, deviceID uuid.UUID) error
	RevokeAllTrustedDevices(ctx context.Context, userID uuid.UUID) error
}

// actionRequest is the union of every action's fields. Unused fields are
// simply ignored by the handlers that do not read them.
type actionRequest struct {
	Action       string `json:"action"`
	Code         string `json:"code"`
	TOTPCode     string `json:"totp_code"`
	EmailCode    string `json:"email_code"`
	RecoveryCode string `json:"recovery_code"`
	TrustDevice  bool   `json:"trust_device"`
	DeviceLabel  string `json:"device_label"`
	DeviceToken  string `json:"device_token"`
	DeviceID     string `json:"device_id"`
}

type handler struct {
	svc Service
	log *slog.Logger
}

type actionFunc func(ctx context.Context, ident *identity.Identity, req actionRequest) (any, error)

func (h *handler) actions() map[string]actionFunc {
	return map[string]actionFunc{
		"status":              h.status,
		"begin_enroll":        h.beginEnroll,
		"confirm_enroll":      h.confirmEnroll,
		"verify":              h.verify,
		"disable":             h.disableTOTP,
		"enable_email_2fa":    h.enableEmail,
		"confirm_email_2fa":   h.confirmEmail,
		"send_email_code":     h.sendEmailCode,
		"disable_email_2fa":   h.disableEmail,
		"regenerate_recovery": h.regenerateRecovery,
		"list_trusted":        h.listTrusted,
		"revoke_trusted":      h.revokeTrusted,
		"revoke_all_trusted":  h.revokeAllTrusted,
	}
}

func (h *handler) dispatch(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusUnprocessableEntity, "validation_error", "malformed JSON body")
		return
	}

	action, ok := h.actions()[req.Action]
	if !ok {
		writeErrorCode(w, http.StatusUnprocessableEntity, "validation_error", "unknown action")
		return
	}

	data, err := action(r.Context(), ident, req)
	if err != nil {
		h.logError(r.Context(), req.Action, err)
		writeError(w, err)
		return
	}
	writeData(w, data)
}

// logError keeps the full error server-side; clients only ever see the
// mapped sentinel.
func (h *handler) logError(ctx context.Context, action string, err error) {
	h.log.InfoContext(ctx, "2fa action failed", "action", action, "error", err)
}

type statusResponse struct {
	TOTPEnabled            bool `json:"totp_enabled"`
	TOTPPending            bool `json:"totp_pending"`
	EmailEnabled           bool `json:"email_enabled"`
	RecoveryCodesRemaining int  `json:"recovery_codes_remaining"`
	TrustedDevice          bool `json:"trusted_device"`
}

func (h *handler) status(ctx context.Context, ident *identity.Identity, req actionRequest) (any, error) {
	info, err := h.svc.Status(ctx, ident.UserID, req.DeviceToken)
	if err != nil {
		return nil, err
	}
	return statusResponse{
		TOTPEnabled:            info.TOTPEnabled,
		TOTPPending:            info.TOTPPending,
		EmailEnabled:           info.EmailEnabled,
		RecoveryCodesRemaining: info.RecoveryCodesRemaining,
		TrustedDevice:          info.TrustedDevice,
	}, nil
}

type enrollmentResponse struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	QRCode string `json:"qr_code"`
}

func (h *handler) beginEnroll(ctx context.Context, ident *identity.Identity, _ actionRequest) (any, error) {
	enrollment, err := h.svc.BeginEnroll(ctx, ident.UserID, ident.Email)
	if err != nil {
		return nil, err
	}
	return enrollmentResponse{
		Secret: enrollment.Secret,
		URI:    enrollment.URI,
		QRCode: enrollment.QRCode,
	}, nil
}

type recoveryCodesResponse struct {
	RecoveryCodes []string `json:"recovery_codes,omitempty"`
}

func (h *handler) confirmEnroll(ctx context.Context, ident *identity.Identity, req actionRequest) (any, error) {
	codes, err := h.svc.ConfirmEnroll(ctx, ident.UserID, req.Code)
	if err != nil {
		return nil, err
	}
	return recoveryCodesResponse{RecoveryCodes: codes}, nil
}

type verifyResponse struct {
	Method      string `json:"method"`
	DeviceToken string `json:"device_token,omitempty"`
}

func (h *handler) verify(ctx context.Context, ident *identity.Identity, req actionRequest) (any, error) {
	result, err := h.svc.Verify(ctx, ident.UserID, mfa.VerifyRequest{
		TOTPCode:     req.TOTPCode,
		EmailCode:    req.EmailCode,
		RecoveryCode: req.RecoveryCode,
		TrustDevice:  req.TrustDevice,
		DeviceLabel:  req.DeviceLabel,
	})
	if err != nil {
		return nil, err
	}
	return verifyResponse{Method: result.Method, DeviceToken: result.DeviceToken}, nil
}

type okResponse struct {
	OK bool `json:"ok"`
}

func (h *handler) disableTOTP(ctx context.Context, ident *identity.Identity, _ actionRequest) (any, error) {
	if err := h.svc.DisableTOTP(ctx, ident.UserID); err != nil {
		return nil, err
	}
	return okResponse{OK: true}, nil
}

func (h *handler) enableEmail(ctx context.Context, ident *identity.Identity, _ actionRequest) (any, error) {
	if err := h.svc.EnableEmail2FA(ctx, ident.UserID, ident.Email); err != nil {
		return nil, err
	}
	return okResponse{OK: true}, nil
}

func (h *handler) confirmEmail(ctx context.Context, ident *identity.Identity, req actionRequest) (any, error) {
	codes, err := h.svc.ConfirmEmail2FA(ctx, ident.UserID, req.Code)
	if err != nil {
		return nil, err
	}
	return recoveryCodesResponse{RecoveryCodes: codes}, nil
}

func (h *handler) sendEmailCode(ctx context.Context, ident *identity.Identity, _ actionRequest) (any, error) {
	if err := h.svc.SendEmailCode(ctx, ident.UserID, ident.Email); err != nil {
		return nil, err
	}
	return okResponse{OK: true}, nil
}

func (h *handler) disableEmail(ctx context.Context, ident *identity.Identity, _ actionRequest) (any, error) {
	if err := h.svc.DisableEmail2FA(ctx, ident.UserID); err != nil {
		return nil, err
	}
	return okResponse{OK: true}, nil
}

func (h *handler) regenerateRecovery(ctx context.Context, ident *identity.Identity, _ actionRequest) (any, error) {
	codes, err := h.svc.RegenerateRecoveryCodes(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	return recoveryCodesResponse{RecoveryCodes: codes}, nil
}

type deviceResponse struct {
	ID          string    `json:"id"`
	DeviceLabel string    `json:"device_label"`
	CreatedAt   time.Time `json:"created_at"`
	LastUsedAt  time.Time `json:"last_used_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type deviceListResponse struct {
	Devices []deviceResponse `json:"devices"`
}

func (h *handler) listTrusted(ctx context.Context, ident *identity.Identity, _ actionRequest) (any, error) {
	devices, err := h.svc.ListTrustedDevices(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}

	resp := deviceListResponse{Devices: make([]deviceResponse, 0, len(devices))}
	for _, d := range devices {
		// Token hashes stay server-side even though they are digests.
		resp.Devices = append(resp.Devices, deviceResponse{
			ID:          d.ID.String(),
			DeviceLabel: d.DeviceLabel,
			CreatedAt:   d.CreatedAt,
			LastUsedAt:  d.LastUsedAt,
			ExpiresAt:   d.ExpiresAt,
		})
	}
	return resp, nil
}

func (h *handler) revokeTrusted(ctx context.Context, ident *identity.Identity, req actionRequest) (any, error) {
	deviceID, err := uuid.Parse(req.DeviceID)
	if err != nil {
		return nil, mfa.ErrDeviceNotFound
	}
	if err := h.svc.RevokeTrustedDevice(ctx, ident.UserID, deviceID); err != nil {
		return nil, err
	}
	return okResponse{OK: true}, nil
}

func (h *handler) revokeAllTrusted(ctx context.Context, ident *identity.Identity, _ actionRequest) (any, error) {
	if err := h.svc.RevokeAllTrustedDevices(ctx, ident.UserID); err != nil {
		return nil, err
	}
	return okResponse{OK: true}, nil
}
