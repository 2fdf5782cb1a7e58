package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/account"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"go.uber.org/zap"
)

// LogResetNotifier writes reset links to the application log. It stands in
// for mail delivery in development.
type LogResetNotifier struct {
	logger logger.ZapLogger
}

var _ account.ResetNotifier = (*LogResetNotifier)(nil)

func NewLogResetNotifier(log logger.ZapLogger) *LogResetNotifier {
	return &LogResetNotifier{logger: log}
}

func (n *LogResetNotifier) NotifyPasswordReset(_ context.Context, user *model.User, link string, expiresAt time.Time) error {
	n.logger.Info("password reset requested",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("link", link),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}
