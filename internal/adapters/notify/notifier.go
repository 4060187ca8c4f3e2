package notify

import (
	"context"
	"log/slog"

	"channelinvites/internal/domain"
)

// Notifier is the default MembershipNotifier and ChangeNotifier. It logs each
// signal; the production roster and presentation systems subscribe through
// their own implementations of the domain ports.
type Notifier struct {
	logger *slog.Logger
}

// New returns a Notifier that logs signals with the given logger.
func New(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

func (n *Notifier) MembershipGranted(ctx context.Context, event domain.MembershipEvent) {
	n.logger.InfoContext(ctx, "membership granted",
		"channel_id", event.ChannelID,
		"user_id", event.UserID,
		"invite_code", event.InviteCode,
	)
}

func (n *Notifier) PolicyChanged(ctx context.Context, channelID string) {
	n.logger.InfoContext(ctx, "invite policy changed", "channel_id", channelID)
}

func (n *Notifier) InviteChanged(ctx context.Context, channelID, code string) {
	n.logger.InfoContext(ctx, "invite state changed", "channel_id", channelID, "invite_code", code)
}
