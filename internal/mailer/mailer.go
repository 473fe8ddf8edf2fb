package mailer

import (
	"context"

	"github.com/Tetsu-is/social-graph/internal/domain"
	"go.uber.org/zap"
)

// LogMailer records password reset messages in the log instead of
// delivering them. Email transport is handled outside this service.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger.Named("mailer")}
}

func (m *LogMailer) SendPasswordReset(_ context.Context, account domain.Account, token string) error {
	m.logger.Info("password reset requested", zap.String("account_id", account.ID))
	// Debug only: the path carries a live reset token.
	m.logger.Debug("password reset link",
		zap.String("account_id", account.ID),
		zap.String("email", account.Email),
		zap.String("reset_path", "/auth/password/reset/"+token),
	)
	return nil
}
