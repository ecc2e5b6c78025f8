package application

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dustin/go-humanize"

	"nanobots/server/domain"
	"nanobots/utils"
)

const statsPeriod = 10 * time.Second

// NanobotApplication はナノボットアリーナのゲームロジックです。
// ルームのtickループから呼ばれ、World を単独で所有します。
type NanobotApplication struct {
	world *World

	statsEvery   uint64
	lastSnapshot int
}

var _ domain.Application = (*NanobotApplication)(nil)

func NewNanobotApplication(cfg Config, rng *rand.Rand) *NanobotApplication {
	every := uint64(1)
	if cfg.TickInterval > 0 {
		every = max(1, uint64(statsPeriod/cfg.TickInterval))
	}
	return &NanobotApplication{
		world:      NewWorld(cfg, rng),
		statsEvery: every,
	}
}

func (a *NanobotApplication) World() *World { return a.world }

func (a *NanobotApplication) HandleMessage(ctx context.Context, sessionID domain.SessionID, data []byte) ([]domain.Delivery, error) {
	env, err := domain.ParseEnvelope(data)
	if err != nil {
		return nil, err
	}
	id := sessionID.String()

	switch env.Type {
	case domain.EventJoin:
		var p JoinPayload
		if err := env.DecodePayload(&p); err != nil {
			return nil, err
		}
		return a.join(ctx, sessionID, p)

	case domain.EventPlayerMovement:
		var p MovementPayload
		if err := env.DecodePayload(&p); err != nil {
			return nil, err
		}
		// 両方の形が含まれる場合は角度→位置の順に両方適用する
		applied := false
		if p.Angle != nil && utils.Finite(*p.Angle) {
			a.world.SetHeading(id, *p.Angle)
			applied = true
		}
		if p.X != nil && p.Y != nil && utils.Finite(*p.X, *p.Y) {
			a.world.SetPosition(id, *p.X, *p.Y)
			applied = true
		}
		if !applied {
			return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, env.Type)
		}
		return nil, nil

	case domain.EventPlayerAction:
		var p ActionPayload
		if err := env.DecodePayload(&p); err != nil {
			return nil, err
		}
		if p.AbilityIndex == nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, env.Type)
		}
		if t, ok := a.world.ActivateAbility(id, *p.AbilityIndex); ok {
			slog.DebugContext(ctx, "ability activated", "sessionID", sessionID, "ability", t)
		}
		return nil, nil

	case domain.EventPlayerSplit:
		if !a.world.CanSplit(id) {
			return nil, nil
		}
		if child, ok := a.world.Split(id); ok {
			slog.DebugContext(ctx, "player split", "sessionID", sessionID, "childID", child.ID)
		}
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, env.Type)
}

func (a *NanobotApplication) join(ctx context.Context, sessionID domain.SessionID, p JoinPayload) ([]domain.Delivery, error) {
	if a.world.ReseedIfEmpty() {
		slog.InfoContext(ctx, "energy particles reseeded", "count", len(a.world.Particles()))
	}
	player := a.world.AddPlayer(sessionID.String(), p.Name, p.Color)
	a.world.AdjustBots()

	data, err := domain.Encode(domain.EventInitialState, InitialStatePayload{
		PlayerID:  player.ID,
		GameState: a.world.Snapshot(),
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "player joined", "sessionID", sessionID, "name", player.Name, "humans", a.world.HumanCount())
	return []domain.Delivery{domain.SendTo(sessionID, data)}, nil
}

// Detach は切断を処理します。次のtickより前に呼ばれるため、削除済みエンティティは解決されません。
func (a *NanobotApplication) Detach(ctx context.Context, sessionID domain.SessionID) []domain.Delivery {
	if !a.world.RemovePlayer(sessionID.String()) {
		return nil
	}
	a.world.AdjustBots()
	slog.InfoContext(ctx, "player left", "sessionID", sessionID, "humans", a.world.HumanCount())

	data, err := domain.Encode(domain.EventPlayerDisconnected, DisconnectedPayload{PlayerID: sessionID.String()})
	if err != nil {
		slog.ErrorContext(ctx, "encode playerDisconnected", "err", err)
		return nil
	}
	return []domain.Delivery{domain.Broadcast(data)}
}

// Tick はパイプラインを1回進め、吸収通知と全状態のスナップショットを返します。
func (a *NanobotApplication) Tick(ctx context.Context) []domain.Delivery {
	res := a.world.Step()

	var out []domain.Delivery
	for _, c := range res.Consumed {
		if c.OwnerID == "" {
			continue
		}
		data, err := domain.Encode(domain.EventPlayerConsumed, ConsumedPayload{PlayerID: c.VictimID, By: c.EaterID})
		if err != nil {
			slog.ErrorContext(ctx, "encode playerConsumed", "err", err)
			continue
		}
		out = append(out, domain.SendTo(domain.SessionID(c.OwnerID), data))
	}

	data, err := domain.Encode(domain.EventGameUpdate, a.world.Snapshot())
	if err != nil {
		slog.ErrorContext(ctx, "encode gameUpdate", "err", err)
		return out
	}
	a.lastSnapshot = len(data)
	out = append(out, domain.Broadcast(data))

	if res.Tick%a.statsEvery == 0 {
		slog.DebugContext(ctx, "world stats",
			"tick", res.Tick,
			"humans", a.world.HumanCount(),
			"bots", len(a.world.Bots()),
			"particles", len(a.world.Particles()),
			"snapshot", humanize.Bytes(uint64(a.lastSnapshot)),
		)
	}
	return out
}
