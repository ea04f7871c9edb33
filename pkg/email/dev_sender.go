package email

import (
	"context"
	"log/slog"
)

// DevSender implements EmailSender for local development by logging the
// message instead of delivering it. The body is logged verbatim, which
// is the point: local runs need to see the one-time codes somewhere.
type DevSender struct {
	log *slog.Logger
}

// NewDevSender returns a development sender writing to log.
func NewDevSender(log *slog.Logger) EmailSender {
	if log == nil {
		log = slog.Default()
	}
	return &DevSender{log: log}
}

func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	d.log.InfoContext(ctx, "dev email",
		"to", params.SendTo,
		"subject", params.Subject,
		"tag", params.Tag,
		"body", params.BodyHTML,
	)
	return nil
}
