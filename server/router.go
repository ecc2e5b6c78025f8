package server

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"nanobots/server/domain"
	"nanobots/server/handler"
)

// Route は /game（websocket）と /health を公開するハンドラを返します。
func Route(pubsub domain.PubSub, roomManager domain.RoomManager, cfg domain.EndpointConfig) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/game", handler.NewAcceptHandler(pubsub, roomManager, cfg))
	mux.Handle("GET /health", handler.NewHealthHandler())
	return otelhttp.NewHandler(mux, "nanobots")
}
