package application

// TickResult は1tick分のパイプラインの結果です。
type TickResult struct {
	Tick             uint64
	Consumed         []Consumption
	ParticlesEaten   int
	ParticlesSpawned int
	BotsAdded        int
	BotsRemoved      int
}

// Step はパイプラインを固定順で1回実行します。
// モジュールのカウントダウン → AIの意思決定 → 移動 → 粒子衝突 → エンティティ衝突 → 人口調整。
func (w *World) Step() TickResult {
	elapsed := w.cfg.elapsedMillis()
	for _, e := range w.Entities() {
		e.tickAbilities(elapsed)
	}

	w.decideBots()
	w.integrate()

	res := TickResult{}
	res.ParticlesEaten = w.resolveParticles()
	res.ParticlesSpawned = res.ParticlesEaten
	res.Consumed = w.resolveEntities()

	for _, c := range res.Consumed {
		if c.VictimKind != KindHuman {
			continue
		}
		if c.VictimID == c.OwnerID {
			w.RemovePlayer(c.VictimID)
		} else {
			w.removeEntity(c.VictimID)
		}
	}
	res.BotsAdded, res.BotsRemoved = w.AdjustBots()
	res.ParticlesSpawned += w.topUpParticles()

	w.tick++
	res.Tick = w.tick
	return res
}
