package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/remeh/sizedwaitgroup"

	"nanobots/server/application"
	"nanobots/server/domain"
	"nanobots/utils"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: utils.GetEnvLevel("LOG_LEVEL", slog.LevelInfo)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := utils.GetEnvDefault("ADDR", "localhost")
	port := utils.GetEnvDefault("PORT", "9090")
	botCount := utils.GetEnvInt("BOT_COUNT", 3)
	concurrency := utils.GetEnvInt("BOT_CONCURRENCY", 64)
	if botCount <= 0 || concurrency <= 0 {
		slog.Error("invalid bot settings", "count", botCount, "concurrency", concurrency)
		os.Exit(1)
	}

	serverURL := fmt.Sprintf("ws://%s:%s/game", addr, port)
	slog.Info("starting bots", "count", botCount, "concurrency", concurrency, "server", serverURL)

	swg := sizedwaitgroup.New(concurrency)
	for i := range botCount {
		if err := swg.AddWithContext(ctx); err != nil {
			break
		}
		go func(id int) {
			defer swg.Done()
			runBot(ctx, serverURL, id)
		}(i)
	}

	swg.Wait()
	slog.Info("all bots stopped")
}

func runBot(ctx context.Context, serverURL string, id int) {
	logger := slog.With("botID", id)

	for {
		if ctx.Err() != nil {
			return
		}
		err := botSession(ctx, serverURL, id, logger)
		if err != nil && ctx.Err() == nil {
			logger.Warn("bot session ended, reconnecting", "err", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func botSession(ctx context.Context, serverURL string, id int, logger *slog.Logger) error {
	conn, _, err := websocket.Dial(ctx, serverURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.CloseNow()

	logger.Info("connected")
	join := mustEncode(domain.EventJoin, application.JoinPayload{Name: fmt.Sprintf("LoadBot %d", id)})
	if err := conn.Write(ctx, websocket.MessageText, join); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	// 受信ループ: ping応答と吸収後の再参加。書き込みは websocket.Conn 側で直列化される
	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				readErr <- err
				return
			}
			env, err := domain.ParseEnvelope(data)
			if err != nil {
				continue
			}
			var reply []byte
			switch env.Type {
			case domain.EventPing:
				reply = domain.EncodePongMessage()
			case domain.EventInitialState:
				logger.Info("joined")
			case domain.EventPlayerConsumed:
				logger.Info("consumed, rejoining")
				reply = join
			}
			if reply == nil {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, reply); err != nil {
				readErr <- err
				return
			}
		}
	}()

	// 判断・送信ループ (10Hz): 角度のランダムウォーク
	ticker := time.NewTicker(time.Second / 10)
	defer ticker.Stop()
	angle := rand.Float64() * 2 * math.Pi

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "shutdown")
			return nil
		case err := <-readErr:
			return fmt.Errorf("read: %w", err)
		case <-ticker.C:
			angle += (rand.Float64() - 0.5) * 0.6
			move := mustEncode(domain.EventPlayerMovement, application.MovementPayload{Angle: &angle})
			if err := conn.Write(ctx, websocket.MessageText, move); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		}
	}
}

func mustEncode(eventType domain.EventType, payload any) []byte {
	data, err := domain.Encode(eventType, payload)
	if err != nil {
		panic(err)
	}
	return data
}
