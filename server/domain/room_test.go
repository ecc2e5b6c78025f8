package domain

import (
	"context"
	"testing"
	"time"
)

func newTestRoom(t *testing.T, app Application) (*Room, *SimplePubSub) {
	t.Helper()
	ps := NewSimplePubSub()
	r := NewRoom("default", ps, app, WithTickInterval(5*time.Millisecond), WithStatsInterval(0))
	return r, ps
}

func recv(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestRoom_EchoBroadcastsToAttachedSessions(t *testing.T) {
	r, ps := newTestRoom(t, NewEchoApplication())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	a, b := SessionID("a"), SessionID("b")
	aCh := ps.Subscribe(SessionTopic(a))
	bCh := ps.Subscribe(SessionTopic(b))

	_ = ps.Deliver(ctx, RoomControlTopic("default"), Message{SessionID: a, Kind: MessageAttach})
	_ = ps.Deliver(ctx, RoomControlTopic("default"), Message{SessionID: b, Kind: MessageAttach})
	_ = ps.Publish(ctx, RoomTopic("default"), Message{SessionID: a, Data: []byte("hello")})

	if got := recv(t, aCh); string(got.Data) != "hello" {
		t.Errorf("a got %q, want hello", got.Data)
	}
	if got := recv(t, bCh); string(got.Data) != "hello" {
		t.Errorf("b got %q, want hello", got.Data)
	}
}

func TestRoom_DropsMessagesFromDetachedSession(t *testing.T) {
	app := NewEchoApplication()
	r, _ := newTestRoom(t, app)
	ctx := context.Background()

	r.handleControlMessage(ctx, Message{SessionID: "a", Kind: MessageAttach})
	r.handleControlMessage(ctx, Message{SessionID: "a", Kind: MessageDetach})

	if len(app.detached) != 1 || app.detached[0] != "a" {
		t.Fatalf("detached = %v, want [a]", app.detached)
	}

	// detach後に届いた入力はアプリケーションに渡らない
	_ = r.pubsub.Publish(ctx, RoomTopic("default"), Message{SessionID: "a", Data: []byte("late")})
	r.tick(ctx)
	if len(app.pendingData) != 0 {
		t.Errorf("pendingData = %d, want 0", len(app.pendingData))
	}
}

func TestRoom_ControlBeforeInputWithinTick(t *testing.T) {
	app := NewEchoApplication()
	r, ps := newTestRoom(t, app)
	ctx := context.Background()
	ch := ps.Subscribe(SessionTopic("a"))

	// 入力がattachより先にキューに入っていても、同じtickでは制御が先に処理される
	_ = ps.Publish(ctx, RoomTopic("default"), Message{SessionID: "a", Data: []byte("first")})
	_ = ps.Publish(ctx, RoomControlTopic("default"), Message{SessionID: "a", Kind: MessageAttach})
	r.tick(ctx)

	if got := recv(t, ch); string(got.Data) != "first" {
		t.Errorf("got %q, want first", got.Data)
	}
	if r.ticks != 1 {
		t.Errorf("ticks = %d, want 1", r.ticks)
	}
}

// lateAttachApplication はaの入力を処理している最中にbの接続と入力を到着させます。
type lateAttachApplication struct {
	EchoApplication
	pubsub  PubSub
	handled []SessionID
}

func (l *lateAttachApplication) HandleMessage(ctx context.Context, sessionID SessionID, data []byte) ([]Delivery, error) {
	l.handled = append(l.handled, sessionID)
	if sessionID == "a" {
		_ = l.pubsub.Deliver(ctx, RoomControlTopic("default"), Message{SessionID: "b", Kind: MessageAttach})
		_ = l.pubsub.Publish(ctx, RoomTopic("default"), Message{SessionID: "b", Data: []byte("join")})
	}
	return nil, nil
}

func TestRoom_AttachArrivingDuringReceiveKeepsInput(t *testing.T) {
	ps := NewSimplePubSub()
	app := &lateAttachApplication{pubsub: ps}
	r := NewRoom("default", ps, app, WithTickInterval(5*time.Millisecond), WithStatsInterval(0))
	ctx := context.Background()

	_ = ps.Deliver(ctx, RoomControlTopic("default"), Message{SessionID: "a", Kind: MessageAttach})
	_ = ps.Publish(ctx, RoomTopic("default"), Message{SessionID: "a", Data: []byte("join")})
	r.tick(ctx)

	if len(app.handled) != 2 || app.handled[0] != "a" || app.handled[1] != "b" {
		t.Fatalf("handled = %v, want [a b]", app.handled)
	}
	if _, ok := r.sessions["b"]; !ok {
		t.Error("b should be attached")
	}
}

func TestRoom_DetachUnknownSessionIgnored(t *testing.T) {
	app := NewEchoApplication()
	r, _ := newTestRoom(t, app)
	r.handleControlMessage(context.Background(), Message{SessionID: "ghost", Kind: MessageDetach})
	if len(app.detached) != 0 {
		t.Errorf("detached = %v, want none", app.detached)
	}
}

func TestRoom_StopsOnContextCancel(t *testing.T) {
	r, _ := newTestRoom(t, NewEchoApplication())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("room did not stop after context cancel")
	}
}
