package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hako/durafmt"
	"golang.org/x/time/rate"

	"nanobots/server"
	"nanobots/server/application"
	"nanobots/server/domain"
	"nanobots/utils"
)

func main() {
	level := utils.GetEnvLevel("LOG_LEVEL", slog.LevelInfo)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	startedAt := time.Now()

	addr := utils.GetEnvDefault("ADDR", "localhost")
	port := utils.GetEnvDefault("PORT", "9090")

	tickRate := utils.GetEnvInt("TICK_RATE", domain.DefaultTickRate)
	if tickRate <= 0 {
		slog.WarnContext(ctx, "invalid TICK_RATE, using default", "value", tickRate)
		tickRate = domain.DefaultTickRate
	}
	cfg := application.DefaultConfig()
	cfg.TickInterval = time.Second / time.Duration(tickRate)
	cfg.MinPlayerCount = utils.GetEnvInt("MIN_PLAYERS", cfg.MinPlayerCount)
	cfg.ParticleFloor = utils.GetEnvInt("PARTICLE_FLOOR", cfg.ParticleFloor)
	cfg.ParticleSeed = utils.GetEnvInt("PARTICLE_SEED", cfg.ParticleSeed)

	endpointCfg := domain.DefaultEndpointConfig()
	endpointCfg.IdleTimeout = utils.GetEnvDuration("IDLE_TIMEOUT", endpointCfg.IdleTimeout)
	endpointCfg.PingInterval = utils.GetEnvDuration("PING_INTERVAL", endpointCfg.PingInterval)
	endpointCfg.InputRate = rate.Limit(utils.GetEnvInt("INPUT_RATE", int(endpointCfg.InputRate)))

	// PubSub初期化
	pubsub := domain.NewSimplePubSub()

	// デフォルトルーム設定
	defaultRoomID := domain.RoomID("default")
	roomManager := domain.NewSimpleRoomManager(defaultRoomID)

	app := application.NewNanobotApplication(cfg, nil)
	room := domain.NewRoom(defaultRoomID, pubsub, app, domain.WithTickInterval(cfg.TickInterval))
	go func() {
		if err := room.Run(ctx); err != nil {
			slog.ErrorContext(ctx, "room error", "err", err)
		}
	}()

	handler := server.Route(pubsub, roomManager, endpointCfg)
	s := server.NewServer(fmt.Sprintf("%s:%s", addr, port), handler)

	go func() {
		if err := s.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()
	slog.InfoContext(ctx, "server listening",
		"addr", s.Addr(),
		"tickRate", tickRate,
		"minPlayers", cfg.MinPlayerCount,
		"particleFloor", cfg.ParticleFloor,
	)

	<-ctx.Done()
	slog.InfoContext(ctx, "shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "graceful shutdown failed", "error", err)
		if err := s.Close(); err != nil {
			slog.ErrorContext(ctx, "forced close failed", "error", err)
		}
	}
	slog.InfoContext(ctx, "server shutdown complete", "uptime", durafmt.Parse(time.Since(startedAt)).LimitFirstN(2).String())
}
