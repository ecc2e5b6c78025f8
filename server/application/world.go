package application

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// World は全エンティティと粒子を保持するストアです。
// 所有者（ルームのtickループ）の単一goroutineからのみ操作されます。
// 列挙順は常にプレイヤーの挿入順→ボットの順で安定しています。
type World struct {
	cfg Config
	rng *rand.Rand

	players     map[string]*Entity
	playerOrder []string
	bots        []*Entity
	brains      map[string]*botBrain
	particles   []*Particle

	tick           uint64
	nextBotID      uint64
	nextParticleID uint64
	nextSplitID    uint64
}

// NewWorld はワールドを生成し、初期粒子を配置します。
func NewWorld(cfg Config, rng *rand.Rand) *World {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	w := &World{
		cfg:     cfg,
		rng:     rng,
		players: make(map[string]*Entity),
		brains:  make(map[string]*botBrain),
	}
	w.spawnParticles(cfg.ParticleSeed)
	return w
}

func (w *World) Config() Config { return w.cfg }
func (w *World) Tick() uint64   { return w.tick }

// AddPlayer は人間プレイヤーを生成します。既に存在する場合は分裂体を除いて初期状態に戻します。
func (w *World) AddPlayer(id, name, color string) *Entity {
	if name == "" {
		name = "Player " + id[:min(5, len(id))]
	}
	if color == "" {
		color = "#00aaff"
	}
	if _, ok := w.players[id]; ok {
		w.removeOffspring(id)
	} else {
		w.playerOrder = append(w.playerOrder, id)
	}
	margin := w.cfg.SpawnMargin
	p := &Entity{
		ID:   id,
		Kind: KindHuman,
		Position: Vec2{
			X: margin + w.rng.Float64()*(w.cfg.WorldWidth-2*margin),
			Y: margin + w.rng.Float64()*(w.cfg.WorldHeight-2*margin),
		},
		Size:    w.cfg.PlayerStartSize,
		Energy:  w.cfg.PlayerStartEnergy,
		Color:   color,
		Name:    name,
		Modules: DefaultLoadout(),
	}
	w.players[id] = p
	return p
}

// RemovePlayer はプレイヤーと分裂体を削除します。
func (w *World) RemovePlayer(id string) bool {
	if _, ok := w.players[id]; !ok {
		return false
	}
	w.removeOffspring(id)
	w.removeEntity(id)
	return true
}

// Player は人間が操作する元エンティティを返します。分裂体は対象外です。
func (w *World) Player(id string) (*Entity, bool) {
	p, ok := w.players[id]
	if !ok || p.ParentID != "" {
		return nil, false
	}
	return p, true
}

// Entity はプレイヤー、分裂体、ボットの中からIDで検索します。
func (w *World) Entity(id string) (*Entity, bool) {
	if p, ok := w.players[id]; ok {
		return p, true
	}
	for _, b := range w.bots {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// Entities は安定した列挙順で全エンティティを返します。
func (w *World) Entities() []*Entity {
	out := make([]*Entity, 0, len(w.playerOrder)+len(w.bots))
	for _, id := range w.playerOrder {
		out = append(out, w.players[id])
	}
	return append(out, w.bots...)
}

// Players は分裂体を含む人間側エンティティを挿入順で返します。
func (w *World) Players() []*Entity {
	out := make([]*Entity, 0, len(w.playerOrder))
	for _, id := range w.playerOrder {
		out = append(out, w.players[id])
	}
	return out
}

func (w *World) Bots() []*Entity { return w.bots }

func (w *World) Particles() []*Particle { return w.particles }

// HumanCount は接続中の人間プレイヤー数です。分裂体は数えません。
func (w *World) HumanCount() int {
	n := 0
	for _, p := range w.players {
		if p.ParentID == "" {
			n++
		}
	}
	return n
}

func (w *World) insertPlayerEntity(e *Entity) {
	if _, ok := w.players[e.ID]; !ok {
		w.playerOrder = append(w.playerOrder, e.ID)
	}
	w.players[e.ID] = e
}

func (w *World) removeEntity(id string) {
	if _, ok := w.players[id]; !ok {
		return
	}
	delete(w.players, id)
	w.playerOrder = slices.DeleteFunc(w.playerOrder, func(s string) bool { return s == id })
}

func (w *World) removeOffspring(parentID string) {
	for _, p := range w.Players() {
		if p.ParentID == parentID {
			w.removeEntity(p.ID)
		}
	}
}

func (w *World) randomPosition() Vec2 {
	return Vec2{
		X: w.rng.Float64() * w.cfg.WorldWidth,
		Y: w.rng.Float64() * w.cfg.WorldHeight,
	}
}

func (w *World) randomRange(lo, hi float64) float64 {
	return lo + w.rng.Float64()*(hi-lo)
}

func (w *World) randomColor() string {
	return fmt.Sprintf("#%06x", w.rng.IntN(0x1000000))
}

func (w *World) clampToBounds(p Vec2) Vec2 {
	return Vec2{
		X: clamp(p.X, 0, w.cfg.WorldWidth),
		Y: clamp(p.Y, 0, w.cfg.WorldHeight),
	}
}
