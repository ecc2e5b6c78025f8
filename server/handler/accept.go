package handler

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	adapterwebsocket "nanobots/server/adapter/websocket"
	"nanobots/server/domain"
)

// AcceptHandler は /game への接続をwebsocketにアップグレードし、セッションを接続が閉じるまで実行します。
type AcceptHandler struct {
	pubsub      domain.PubSub
	roomManager domain.RoomManager
	cfg         domain.EndpointConfig
}

func NewAcceptHandler(pubsub domain.PubSub, roomManager domain.RoomManager, cfg domain.EndpointConfig) *AcceptHandler {
	return &AcceptHandler{pubsub: pubsub, roomManager: roomManager, cfg: cfg}
}

func (h *AcceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // 開発用: Origin チェックをスキップ
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to accept", "err", err)
		return
	}

	session := domain.NewSession()
	transport := adapterwebsocket.NewTransportFrom(conn)
	connection := domain.NewConnection(session.ID(), transport)
	endpoint, err := domain.NewSessionEndpoint(session, connection, h.pubsub, h.roomManager, h.cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create session endpoint", "err", err)
		connection.Close()
		return
	}
	slog.DebugContext(ctx, "accepted new connection", "sessionID", session.ID(), "remote", r.RemoteAddr)
	if err := endpoint.Run(); err != nil {
		slog.ErrorContext(ctx, "failed to run session endpoint", "sessionID", session.ID(), "err", err)
	}
}
