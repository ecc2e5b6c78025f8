package application

// Consumption は1回の吸収イベントです。
type Consumption struct {
	EaterID    string
	VictimID   string
	VictimKind EntityKind
	OwnerID    string // 吸収された人間側エンティティの所有セッション。AIの場合は空
}

// resolveParticles はエンティティと粒子の接触を処理し、取得数を返します。
// 取得1個につき1個をその場で補充します（下限補充とは別経路）。
func (w *World) resolveParticles() int {
	eaten := 0
	for _, e := range w.Entities() {
		if e.abilityActive(AbilityMagnet) {
			w.pullParticles(e)
		}
		kept := w.particles[:0]
		for _, p := range w.particles {
			if e.Position.Dist(p.Position) < e.Size+p.Size {
				e.grow(p.Size*w.cfg.ParticleGrowth, p.Energy)
				eaten++
				continue
			}
			kept = append(kept, p)
		}
		clear(w.particles[len(kept):])
		w.particles = kept
	}
	w.spawnParticles(eaten)
	return eaten
}

// pullParticles は磁力範囲内の粒子を e に向かって引き寄せます。通り過ぎることはありません。
func (w *World) pullParticles(e *Entity) {
	for _, p := range w.particles {
		d := e.Position.Dist(p.Position)
		if d == 0 || d > w.cfg.MagnetRadius {
			continue
		}
		step := min(w.cfg.MagnetPull, d)
		p.Position = p.Position.Add(e.Position.Sub(p.Position).Normalize().Scale(step))
	}
}

// resolveEntities はエンティティ同士の接触を列挙順の非順序ペアごとに一度ずつ処理します。
// 先に処理したペアの結果（位置やサイズ）は後のペアから観測されます。
func (w *World) resolveEntities() []Consumption {
	var out []Consumption
	ents := w.Entities()
	gone := make(map[*Entity]bool)
	for i := 0; i < len(ents); i++ {
		for j := i + 1; j < len(ents); j++ {
			a, b := ents[i], ents[j]
			if gone[a] || gone[b] || !a.overlaps(b) {
				continue
			}
			switch {
			case a.Size > b.Size*w.cfg.DominanceRatio && !b.abilityActive(AbilityShield):
				out = append(out, w.absorb(a, b, gone))
			case b.Size > a.Size*w.cfg.DominanceRatio && !a.abilityActive(AbilityShield):
				out = append(out, w.absorb(b, a, gone))
			default:
				w.bounce(a, b)
			}
		}
	}
	return out
}

func (w *World) absorb(eater, victim *Entity, gone map[*Entity]bool) Consumption {
	eater.grow(victim.Size*w.cfg.AbsorbSizeRatio, victim.Energy*w.cfg.AbsorbEnergyRatio)
	c := Consumption{EaterID: eater.ID, VictimID: victim.ID, VictimKind: victim.Kind}
	if victim.IsAI() {
		w.resetBot(victim)
		return c
	}
	// 人間側は削除を人口調整段階に任せ、このtickの残りのペアからは外す
	c.OwnerID = victim.Owner()
	gone[victim] = true
	return c
}

// bounce は重なりの半分ずつ法線方向に押し離し、境界内にクランプします。
// 壁際でクランプにより重なりが残る場合は、もう一方を法線方向にずらして離します。
// エネルギーの移動はありません。
func (w *World) bounce(a, b *Entity) {
	delta := b.Position.Sub(a.Position)
	d := delta.Len()
	normal := Vec2{X: 1}
	if d > 0 {
		normal = delta.Scale(1 / d)
	}
	need := a.Size + b.Size
	push := normal.Scale((need - d) / 2)
	a.Position = w.clampToBounds(a.Position.Sub(push))
	b.Position = w.clampToBounds(b.Position.Add(push))
	if a.overlaps(b) {
		b.Position = w.clampToBounds(a.Position.Add(normal.Scale(need)))
	}
	if a.overlaps(b) {
		a.Position = w.clampToBounds(b.Position.Sub(normal.Scale(need)))
	}
}

// applyPulse は src の周囲のエンティティを外向きに瞬時に押し出します。
func (w *World) applyPulse(src *Entity) int {
	pushed := 0
	for _, e := range w.Entities() {
		if e == src {
			continue
		}
		delta := e.Position.Sub(src.Position)
		d := delta.Len()
		if d > w.cfg.PulseRadius {
			continue
		}
		dir := Vec2{X: 1}
		if d > 0 {
			dir = delta.Scale(1 / d)
		}
		e.Position = w.clampToBounds(e.Position.Add(dir.Scale(w.cfg.PulsePush)))
		pushed++
	}
	return pushed
}
