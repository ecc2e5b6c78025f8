package server

import (
	"context"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"nanobots/server/application"
	"nanobots/server/domain"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pubsub := domain.NewSimplePubSub()
	roomID := domain.RoomID("default")
	app := application.NewNanobotApplication(application.DefaultConfig(), rand.New(rand.NewPCG(1, 2)))
	room := domain.NewRoom(roomID, pubsub, app, domain.WithTickInterval(5*time.Millisecond), domain.WithStatsInterval(0))
	go func() { _ = room.Run(ctx) }()

	srv := httptest.NewServer(Route(pubsub, domain.NewSimpleRoomManager(roomID), domain.DefaultEndpointConfig()))
	t.Cleanup(srv.Close)
	return srv
}

func TestRoute_Health(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

// readUntil は指定イベントのフレームが届くまで読み進めます。
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, want domain.EventType) *domain.Envelope {
	t.Helper()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("waiting for %s: %v", want, err)
		}
		env, err := domain.ParseEnvelope(data)
		if err != nil {
			t.Fatalf("ParseEnvelope: %v", err)
		}
		if env.Type == want {
			return env
		}
	}
}

func TestRoute_GameJoinAndUpdate(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.CloseNow()

	join := `{"type":"join","payload":{"name":"alice","color":"#ff00ff"}}`
	if err := conn.Write(ctx, websocket.MessageText, []byte(join)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	env := readUntil(t, ctx, conn, domain.EventInitialState)
	var init application.InitialStatePayload
	if err := env.DecodePayload(&init); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	self, ok := init.GameState.Players[init.PlayerID]
	if !ok || self.Name != "alice" {
		t.Fatalf("initialState players[%s] = %+v", init.PlayerID, self)
	}

	env = readUntil(t, ctx, conn, domain.EventGameUpdate)
	var gs application.GameState
	if err := env.DecodePayload(&gs); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if gs.Tick == 0 {
		t.Error("gameUpdate tick = 0")
	}
	if len(gs.EnergyParticles) < 100 {
		t.Errorf("energyParticles = %d, want >= 100", len(gs.EnergyParticles))
	}
}
