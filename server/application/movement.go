package application

// SetHeading は角度入力をプレイヤーの速度に変換します。存在しないIDは無視します。
func (w *World) SetHeading(id string, angle float64) bool {
	p, ok := w.Player(id)
	if !ok {
		return false
	}
	p.Velocity = fromAngle(angle).Scale(w.cfg.PlayerSpeed)
	return true
}

// SetPosition は位置を直接上書きします（クライアントの報告をそのまま信頼する）。
func (w *World) SetPosition(id string, x, y float64) bool {
	p, ok := w.Player(id)
	if !ok {
		return false
	}
	p.Position = w.clampToBounds(Vec2{X: x, Y: y})
	return true
}

func (w *World) speedMultiplier(e *Entity) float64 {
	if e.abilityActive(AbilitySpeedBoost) {
		return w.cfg.SpeedBoostFactor
	}
	return 1
}

// integrate は速度を位置に反映し、全エンティティをワールド境界にクランプします。
func (w *World) integrate() {
	for _, e := range w.Entities() {
		if !e.Velocity.IsZero() {
			e.Position = e.Position.Add(e.Velocity.Scale(w.speedMultiplier(e)))
		}
		e.Position = w.clampToBounds(e.Position)
	}
}
