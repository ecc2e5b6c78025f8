package domain

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

const DefaultTickRate = 30

// Room はセッション集合とApplicationを所有し、固定レートのtickで全状態変更を直列化します。
type Room struct {
	ID       RoomID
	sessions map[SessionID]struct{}

	pubsub      PubSub
	application Application

	msgCh  <-chan Message
	ctrlCh <-chan Message

	tickInterval  time.Duration
	statsInterval time.Duration

	ticks     uint64
	sentBytes uint64
}

type RoomOption func(*Room)

// WithTickInterval はtick間隔を変更します。0以下は無視されます。
func WithTickInterval(d time.Duration) RoomOption {
	return func(r *Room) {
		if d > 0 {
			r.tickInterval = d
		}
	}
}

// WithStatsInterval は統計ログの出力間隔を変更します。0以下で無効になります。
func WithStatsInterval(d time.Duration) RoomOption {
	return func(r *Room) { r.statsInterval = d }
}

// NewRoom はルームを生成し、room宛とroom制御用のトピックを購読します。
// 購読はRunより前に行うため、Run開始前に届いたメッセージも失われません。
func NewRoom(id RoomID, pubsub PubSub, application Application, opts ...RoomOption) *Room {
	r := &Room{
		ID:            id,
		sessions:      make(map[SessionID]struct{}),
		pubsub:        pubsub,
		application:   application,
		tickInterval:  time.Second / DefaultTickRate,
		statsInterval: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.msgCh = pubsub.Subscribe(RoomTopic(id))
	r.ctrlCh = pubsub.Subscribe(RoomControlTopic(id))
	return r
}

func (r *Room) TickInterval() time.Duration { return r.tickInterval }

func (r *Room) Run(ctx context.Context) error {
	defer r.pubsub.Unsubscribe(RoomTopic(r.ID), r.msgCh)
	defer r.pubsub.Unsubscribe(RoomControlTopic(r.ID), r.ctrlCh)

	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	var statsC <-chan time.Time
	if r.statsInterval > 0 {
		statsTicker := time.NewTicker(r.statsInterval)
		defer statsTicker.Stop()
		statsC = statsTicker.C
	}

	slog.InfoContext(ctx, "room started", "roomID", r.ID, "tickInterval", r.tickInterval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-statsC:
			slog.InfoContext(ctx, "room stats",
				"roomID", r.ID,
				"sessions", len(r.sessions),
				"ticks", r.ticks,
				"sent", humanize.Bytes(r.sentBytes),
			)
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick は1フレーム分の処理を行います。
// 制御メッセージ（接続/切断）は必ず入力より先に処理されるため、切断済みセッションの入力が
// 同じtickでシミュレーションに届くことはありません。
func (r *Room) tick(ctx context.Context) {
	r.drainControl(ctx)
RECEIVE_LOOP:
	for {
		select {
		case msg := <-r.msgCh:
			if !r.isAttached(ctx, msg.SessionID) {
				slog.DebugContext(ctx, "dropping message from detached session", "sessionID", msg.SessionID)
				continue
			}
			deliveries, err := r.application.HandleMessage(ctx, msg.SessionID, msg.Data)
			if err != nil {
				slog.WarnContext(ctx, "room handle message failed", "sessionID", msg.SessionID, "err", err)
			}
			r.deliver(ctx, deliveries)
		default:
			break RECEIVE_LOOP
		}
	}
	r.deliver(ctx, r.application.Tick(ctx))
	r.ticks++
}

// drainControl は溜まっている制御メッセージを全て処理します。
func (r *Room) drainControl(ctx context.Context) {
CTRL_LOOP:
	for {
		select {
		case ctrl := <-r.ctrlCh:
			r.handleControlMessage(ctx, ctrl)
		default:
			break CTRL_LOOP
		}
	}
}

// isAttached はセッションが接続済みかを返します。
// エンドポイントは接続通知を送り終えてから入力を読み始めるため、未知のセッションの入力が届いた場合は
// その接続通知が制御チャネルに届いているはずです。制御チャネルを処理し直してから判定します。
func (r *Room) isAttached(ctx context.Context, sessionID SessionID) bool {
	if _, ok := r.sessions[sessionID]; ok {
		return true
	}
	r.drainControl(ctx)
	_, ok := r.sessions[sessionID]
	return ok
}

func (r *Room) handleControlMessage(ctx context.Context, msg Message) {
	switch msg.Kind {
	case MessageAttach:
		r.sessions[msg.SessionID] = struct{}{}
		slog.DebugContext(ctx, "session attached", "roomID", r.ID, "sessionID", msg.SessionID)
	case MessageDetach:
		if _, ok := r.sessions[msg.SessionID]; !ok {
			return
		}
		delete(r.sessions, msg.SessionID)
		r.deliver(ctx, r.application.Detach(ctx, msg.SessionID))
		slog.DebugContext(ctx, "session detached", "roomID", r.ID, "sessionID", msg.SessionID)
	default:
		slog.WarnContext(ctx, "unknown room control message", "kind", msg.Kind)
	}
}

func (r *Room) deliver(ctx context.Context, deliveries []Delivery) {
	for _, d := range deliveries {
		if d.SessionID.IsEmpty() {
			r.Broadcast(ctx, d.Data)
			continue
		}
		r.SendTo(ctx, d.SessionID, d.Data)
	}
}

// Broadcast は全セッションに送信します。遅いクライアントの分は破棄され、tickは止まりません。
func (r *Room) Broadcast(ctx context.Context, data []byte) {
	for sessionID := range r.sessions {
		r.SendTo(ctx, sessionID, data)
	}
}

func (r *Room) SendTo(ctx context.Context, sessionID SessionID, data []byte) {
	if err := r.pubsub.Publish(ctx, SessionTopic(sessionID), Message{SessionID: sessionID, Data: data}); err != nil {
		slog.DebugContext(ctx, "room send dropped", "sessionID", sessionID, "err", err)
		return
	}
	r.sentBytes += uint64(len(data))
}
