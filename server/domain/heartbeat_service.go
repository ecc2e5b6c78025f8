package domain

import (
	"context"
	"log/slog"
	"time"
)

// HeartbeatService は定期的にpingメッセージを送信する死活監視サービスです。
type HeartbeatService struct {
	pingInterval time.Duration
	session      *Session
	writeCh      chan<- []byte
}

func NewHeartbeatService(pingInterval time.Duration, session *Session, writeCh chan<- []byte) *HeartbeatService {
	return &HeartbeatService{
		pingInterval: pingInterval,
		session:      session,
		writeCh:      writeCh,
	}
}

// Run はpingInterval間隔でpingメッセージをwriteChに送信します。
// writeChが満杯の場合はそのtickのpingを破棄します。ctxがキャンセルされると終了します。
func (h *HeartbeatService) Run(ctx context.Context) {
	if h.pingInterval <= 0 {
		return
	}
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case h.writeCh <- EncodePingMessage():
				slog.DebugContext(ctx, "heartbeat: ping sent", "sessionID", h.session.ID())
			default:
				slog.WarnContext(ctx, "heartbeat: writeCh full, ping dropped", "sessionID", h.session.ID())
			}
		}
	}
}
