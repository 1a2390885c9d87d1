package app

import (
	"context"
	"log/slog"
)

// Mailer delivers verification codes. The production deployment plugs in an
// SMTP implementation; development and tests use LogMailer.
type Mailer interface {
	SendCode(ctx context.Context, email, code string) error
}

// LogMailer writes codes to the log instead of sending mail.
type LogMailer struct{}

func (LogMailer) SendCode(ctx context.Context, email, code string) error {
	slog.InfoContext(ctx, "Email code issued", "email", email, "code", code)
	return nil
}
