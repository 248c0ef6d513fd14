package notify

import (
	"context"

	domain "github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/notify"
	"go.uber.org/zap"
)

// LogNotifier stands in when no SMTP server is configured. It never logs the
// code itself.
type LogNotifier struct {
	log *zap.Logger
}

var _ domain.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendCode(_ context.Context, msg domain.CodeMessage) error {
	n.log.Warn("email delivery disabled, code not sent",
		zap.String("kind", string(msg.Kind)),
		zap.Duration("valid_for", msg.ValidFor),
	)
	return nil
}
