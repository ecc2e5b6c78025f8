package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var (
	// ErrBackpressure は書き込みチャネルが満杯の場合に返されるエラーです。
	ErrBackpressure = errors.New("write channel is full, apply backpressure")
	// ErrInitializationFailed はセッションエンドポイントの初期化に失敗した場合に返されるエラーです。
	ErrInitializationFailed = errors.New("failed to initialize session endpoint")
)

// EndpointConfig はセッションエンドポイントの動作パラメータです。
type EndpointConfig struct {
	PingInterval time.Duration
	IdleTimeout  time.Duration
	WriteTimeout time.Duration
	InputRate    rate.Limit // 1秒あたりに受け付ける入力フレーム数
	InputBurst   int
	WriteBuffer  int
}

func DefaultEndpointConfig() EndpointConfig {
	return EndpointConfig{
		PingInterval: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Second,
		InputRate:    120,
		InputBurst:   60,
		WriteBuffer:  1024,
	}
}

type SessionEndpoint struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg         EndpointConfig
	session     *Session
	connection  *Connection
	pubsub      PubSub
	roomManager RoomManager
	roomID      RoomID // Run時にRoomManagerから取得
	limiter     *rate.Limiter

	ctrlCh  chan endpointEvent // 制御用チャネル
	writeCh chan []byte        // 書き込み用チャネル

	// lifecycle
	closed atomic.Bool
}

func NewSessionEndpoint(session *Session, connection *Connection, pubsub PubSub, roomManager RoomManager, cfg EndpointConfig) (*SessionEndpoint, error) {
	if session == nil || connection == nil || pubsub == nil || roomManager == nil {
		return nil, ErrInitializationFailed
	}
	if cfg.WriteBuffer <= 0 {
		cfg.WriteBuffer = DefaultEndpointConfig().WriteBuffer
	}
	if cfg.InputBurst <= 0 {
		cfg.InputBurst = 1
	}
	limit := cfg.InputRate
	if limit <= 0 {
		limit = rate.Inf
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionEndpoint{
		ctx:         ctx,
		cancel:      cancel,
		cfg:         cfg,
		session:     session,
		connection:  connection,
		pubsub:      pubsub,
		roomManager: roomManager,
		limiter:     rate.NewLimiter(limit, cfg.InputBurst),
		ctrlCh:      make(chan endpointEvent, 16),
		writeCh:     make(chan []byte, cfg.WriteBuffer),
	}, nil
}

// Run はルームに接続し、接続が閉じるまでブロックします。終了時には必ずルームから切断します。
func (se *SessionEndpoint) Run() error {
	roomID, err := se.roomManager.GetRoom(se.ctx, se.session.ID())
	if err != nil {
		se.close()
		return fmt.Errorf("resolve room: %w", err)
	}
	se.roomID = roomID

	// 自分宛のメッセージを購読
	sessionTopic := SessionTopic(se.session.ID())
	msgCh := se.pubsub.Subscribe(sessionTopic)
	defer se.pubsub.Unsubscribe(sessionTopic, msgCh)

	attach := Message{SessionID: se.session.ID(), Kind: MessageAttach}
	if err := se.pubsub.Deliver(se.ctx, RoomControlTopic(roomID), attach); err != nil {
		se.close()
		return fmt.Errorf("attach to room %s: %w", roomID, err)
	}
	defer se.detach()
	slog.InfoContext(se.ctx, "session attached to room", "sessionID", se.session.ID(), "roomID", roomID)

	heartbeat := NewHeartbeatService(se.cfg.PingInterval, se.session, se.writeCh)

	eg, ctx := errgroup.WithContext(se.ctx)
	eg.Go(func() error {
		se.ownerLoop(ctx)
		return nil
	})
	eg.Go(func() error {
		se.readLoop(ctx)
		return nil
	})
	eg.Go(func() error {
		se.writeLoop(ctx)
		return nil
	})
	eg.Go(func() error {
		se.subscribeLoop(ctx, msgCh)
		return nil
	})
	eg.Go(func() error {
		heartbeat.Run(ctx)
		return nil
	})
	return eg.Wait()
}

func (se *SessionEndpoint) Send(data []byte) error {
	select {
	case se.writeCh <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

func (se *SessionEndpoint) Close(ctx context.Context) {
	se.sendCtrlEvent(ctx, endpointEvent{kind: evClose})
}

func (se *SessionEndpoint) ForceClose() {
	se.close()
}

// ownerLoop は論理セッションの状態を監視し、必要に応じて接続の管理を行います。
func (se *SessionEndpoint) ownerLoop(ctx context.Context) {
	var idleC <-chan time.Time
	if se.cfg.IdleTimeout > 0 {
		ticker := time.NewTicker(min(time.Second, se.cfg.IdleTimeout))
		defer ticker.Stop()
		idleC = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-se.ctrlCh:
			se.handleControlEvent(ctx, ev)
		case <-idleC:
			// 読み込みもpongも途絶えた場合のみ切断する。書き込みはブロードキャストで常に更新される。
			_, reason := se.session.IsIdle(se.cfg.IdleTimeout)
			if reason.Has(IdleRead) && reason.Has(IdlePong) {
				se.handleControlEvent(ctx, endpointEvent{
					kind: evClose,
					err:  errors.New("idle: " + reason.String()),
				})
			}
		}
	}
}

func (se *SessionEndpoint) readLoop(ctx context.Context) {
	for {
		data, err := se.connection.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				se.sendCtrlEvent(ctx, endpointEvent{kind: evReadError, err: err})
			}
			return
		}
		se.session.TouchRead()
		se.handleData(ctx, data)
	}
}

func (se *SessionEndpoint) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-se.writeCh:
			if err := se.write(ctx, data); err != nil {
				se.sendCtrlEvent(ctx, endpointEvent{kind: evWriteError, err: err})
				return
			}
			se.session.TouchWrite()
		}
	}
}

func (se *SessionEndpoint) write(ctx context.Context, data []byte) error {
	if se.cfg.WriteTimeout <= 0 {
		return se.connection.Write(ctx, data)
	}
	wctx, cancel := context.WithTimeout(ctx, se.cfg.WriteTimeout)
	defer cancel()
	return se.connection.Write(wctx, data)
}

// subscribeLoop はpubsubからのメッセージをwriteChに転送します。
func (se *SessionEndpoint) subscribeLoop(ctx context.Context, msgCh <-chan Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			select {
			case se.writeCh <- msg.Data:
			default:
				slog.WarnContext(ctx, "subscribeLoop: writeCh full, message dropped", "sessionID", se.session.ID())
			}
		}
	}
}

func (se *SessionEndpoint) close() {
	if !se.closed.CompareAndSwap(false, true) {
		return
	}
	se.cancel()
	se.session.Close()
	se.connection.Close()
}

// detach はルームに切断を通知します。endpointのctxは既に終了しているため独立したctxを使います。
func (se *SessionEndpoint) detach() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg := Message{SessionID: se.session.ID(), Kind: MessageDetach}
	if err := se.pubsub.Deliver(ctx, RoomControlTopic(se.roomID), msg); err != nil {
		slog.ErrorContext(ctx, "failed to detach session from room", "sessionID", se.session.ID(), "roomID", se.roomID, "err", err)
		return
	}
	slog.InfoContext(ctx, "session detached from room", "sessionID", se.session.ID(), "roomID", se.roomID)
}

func (se *SessionEndpoint) handleData(ctx context.Context, data []byte) {
	env, err := ParseEnvelope(data)
	if err != nil {
		slog.WarnContext(ctx, "failed to parse frame", "sessionID", se.session.ID(), "err", err)
		return
	}
	if env.Type == EventPong {
		se.sendCtrlEvent(ctx, endpointEvent{kind: evPong})
		return
	}
	if !se.limiter.Allow() {
		slog.DebugContext(ctx, "input rate exceeded, frame dropped", "sessionID", se.session.ID(), "type", env.Type)
		return
	}
	msg := Message{SessionID: se.session.ID(), Kind: MessageData, Data: data}
	if err := se.pubsub.Publish(ctx, RoomTopic(se.roomID), msg); err != nil {
		slog.WarnContext(ctx, "failed to forward frame to room", "sessionID", se.session.ID(), "err", err)
	}
}

// handleControlEvent は制御チャネルからのイベントを処理し論理セッションの状態を更新する唯一の関数です。
func (se *SessionEndpoint) handleControlEvent(ctx context.Context, ev endpointEvent) {
	switch ev.kind {
	case evClose:
		slog.DebugContext(ctx, "closing session", "sessionID", se.session.ID(), "err", ev.err)
		se.close()
	case evPong:
		se.session.TouchPong()
	case evReadError:
		slog.DebugContext(ctx, "connection read failed", "sessionID", se.session.ID(), "err", ev.err)
		se.close()
	case evWriteError:
		slog.WarnContext(ctx, "connection write failed", "sessionID", se.session.ID(), "err", ev.err)
		se.close()
	default:
		slog.WarnContext(ctx, "unknown endpoint event kind", "kind", ev.kind)
	}
}

func (se *SessionEndpoint) sendCtrlEvent(ctx context.Context, ev endpointEvent) {
	select {
	case se.ctrlCh <- ev:
	case <-ctx.Done():
	}
}
