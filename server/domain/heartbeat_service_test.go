package domain_test

import (
	"context"
	"testing"
	"time"

	domain "nanobots/server/domain"
)

func TestHeartbeatService_SendsPingToWriteCh(t *testing.T) {
	session := domain.NewSession()
	writeCh := make(chan []byte, 16)

	hb := domain.NewHeartbeatService(50*time.Millisecond, session, writeCh)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	go hb.Run(ctx)

	select {
	case msg := <-writeCh:
		env, err := domain.ParseEnvelope(msg)
		if err != nil {
			t.Fatalf("ping frame does not parse: %v", err)
		}
		if env.Type != domain.EventPing {
			t.Fatalf("type = %s, want ping", env.Type)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for ping message")
	}
}

func TestHeartbeatService_StopsOnContextCancel(t *testing.T) {
	session := domain.NewSession()
	writeCh := make(chan []byte, 16)

	hb := domain.NewHeartbeatService(50*time.Millisecond, session, writeCh)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		hb.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("HeartbeatService did not stop after context cancel")
	}
}

func TestHeartbeatService_DropsWhenWriteChFull(t *testing.T) {
	session := domain.NewSession()
	// バッファサイズ0でwriteChが常に満杯になるようにする
	writeCh := make(chan []byte)

	hb := domain.NewHeartbeatService(50*time.Millisecond, session, writeCh)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		hb.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("HeartbeatService blocked on full writeCh")
	}
}

func TestHeartbeatService_DisabledInterval(t *testing.T) {
	hb := domain.NewHeartbeatService(0, domain.NewSession(), make(chan []byte, 1))
	done := make(chan struct{})
	go func() {
		hb.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled heartbeat should return immediately")
	}
}
