package application

import "fmt"

// botBrain はAIだけが持つ意思決定の状態です。
type botBrain struct {
	velocity Vec2 // 前回決めた速度（サイズ補正済み）
}

// RequiredBots は人間の数に対して必要なボット数です。
func (w *World) RequiredBots(humans int) int {
	return max(0, w.cfg.MinPlayerCount-humans)
}

// AdjustBots はボット数を目標値に合わせます。余剰は末尾から切り捨て、不足分は新規生成します。
func (w *World) AdjustBots() (added, removed int) {
	required := w.RequiredBots(w.HumanCount())
	if len(w.bots) > required {
		for _, b := range w.bots[required:] {
			delete(w.brains, b.ID)
		}
		removed = len(w.bots) - required
		clear(w.bots[required:])
		w.bots = w.bots[:required]
		return 0, removed
	}
	for len(w.bots) < required {
		w.bots = append(w.bots, w.newBot())
		added++
	}
	return added, 0
}

func (w *World) newBot() *Entity {
	w.nextBotID++
	id := fmt.Sprintf("ai-%d", w.nextBotID)
	b := &Entity{
		ID:       id,
		Kind:     KindAI,
		Position: w.randomPosition(),
		Size:     w.randomRange(w.cfg.BotSizeMin, w.cfg.BotSizeMax),
		Energy:   w.randomRange(w.cfg.BotEnergyMin, w.cfg.BotEnergyMax),
		Color:    w.randomColor(),
		Name:     fmt.Sprintf("NanoBot %d", w.nextBotID),
		Modules:  []Ability{},
	}
	w.brains[id] = &botBrain{}
	return b
}

// resetBot は吸収されたボットを同じスロットで新しいボットとして生成し直します。
func (w *World) resetBot(b *Entity) {
	delete(w.brains, b.ID)
	*b = *w.newBot()
}

// botSpeed はサイズが大きいほど遅くなる移動速度です。
func botSpeed(size float64) float64 {
	return max(1, 5-size/50)
}

// decideBots は慣性付きランダムウォークで各ボットの速度を決めます。
// 慣性項にはサイズ補正済みの前回速度を使います。
func (w *World) decideBots() {
	for _, b := range w.bots {
		brain, ok := w.brains[b.ID]
		if !ok {
			brain = &botBrain{}
			w.brains[b.ID] = brain
		}
		jitter := Vec2{X: w.rng.Float64() - 0.5, Y: w.rng.Float64() - 0.5}.Scale(w.cfg.BotJitter)
		heading := brain.velocity.Scale(w.cfg.BotInertia).Add(jitter).Normalize()
		brain.velocity = heading.Scale(botSpeed(b.Size))
		b.Velocity = brain.velocity
	}
}
