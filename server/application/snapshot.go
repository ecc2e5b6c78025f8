package application

// EntityState はクライアントに送るエンティティの表現です。
type EntityState struct {
	ID       string        `json:"id"`
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
	Velocity Vec2          `json:"velocity"`
	Size     float64       `json:"size"`
	Energy   float64       `json:"energy"`
	Color    string        `json:"color"`
	Name     string        `json:"name"`
	IsAI     bool          `json:"isAI"`
	Modules  []ModuleState `json:"modules"`
	ParentID string        `json:"parentId,omitempty"`
}

type ModuleState struct {
	Type     AbilityType `json:"type"`
	Active   bool        `json:"active"`
	Duration float64     `json:"duration"`
	Cooldown float64     `json:"cooldown"`
}

type ParticleState struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Size   float64 `json:"size"`
	Energy float64 `json:"energy"`
	Color  string  `json:"color"`
}

// GameState はある時点のワールド全体のコピーです。World への参照は持ちません。
type GameState struct {
	Players         map[string]EntityState `json:"players"`
	AIPlayers       []EntityState          `json:"aiPlayers"`
	EnergyParticles []ParticleState        `json:"energyParticles"`
	Tick            uint64                 `json:"tick"`
}

func entityState(e *Entity) EntityState {
	modules := make([]ModuleState, 0, len(e.Modules))
	for _, m := range e.Modules {
		modules = append(modules, ModuleState(m))
	}
	return EntityState{
		ID:       e.ID,
		X:        e.Position.X,
		Y:        e.Position.Y,
		Velocity: e.Velocity,
		Size:     e.Size,
		Energy:   e.Energy,
		Color:    e.Color,
		Name:     e.Name,
		IsAI:     e.IsAI(),
		Modules:  modules,
		ParentID: e.ParentID,
	}
}

// Snapshot は現在の状態をコピーします。World は変更しません。
func (w *World) Snapshot() GameState {
	gs := GameState{
		Players:         make(map[string]EntityState, len(w.players)),
		AIPlayers:       make([]EntityState, 0, len(w.bots)),
		EnergyParticles: make([]ParticleState, 0, len(w.particles)),
		Tick:            w.tick,
	}
	for _, p := range w.Players() {
		gs.Players[p.ID] = entityState(p)
	}
	for _, b := range w.bots {
		gs.AIPlayers = append(gs.AIPlayers, entityState(b))
	}
	for _, p := range w.particles {
		gs.EnergyParticles = append(gs.EnergyParticles, ParticleState{
			ID:     p.ID,
			X:      p.Position.X,
			Y:      p.Position.Y,
			Size:   p.Size,
			Energy: p.Energy,
			Color:  p.Color,
		})
	}
	return gs
}
