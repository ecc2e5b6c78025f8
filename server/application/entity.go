package application

// EntityKind は操作主体の種別です。人間とAIは同じEntityレコードを共有し、
// AI固有の状態は World の botBrain に保持します。
type EntityKind uint8

const (
	KindHuman EntityKind = iota
	KindAI
)

func (k EntityKind) String() string {
	if k == KindAI {
		return "ai"
	}
	return "human"
}

// Entity はアリーナ上のナノボット（プレイヤーまたはAI）です。
// Size は半径として衝突判定に使います。
type Entity struct {
	ID       string
	Kind     EntityKind
	Position Vec2
	Velocity Vec2
	Size     float64
	Energy   float64
	Color    string
	Name     string
	Modules  []Ability
	ParentID string // 分裂で生まれた場合の親ID
}

func (e *Entity) IsAI() bool { return e.Kind == KindAI }

// Owner はこのエンティティを操作するセッションのIDです。分裂体は親の所有になります。
func (e *Entity) Owner() string {
	if e.ParentID != "" {
		return e.ParentID
	}
	return e.ID
}

func (e *Entity) overlaps(o *Entity) bool {
	return e.Position.Dist(o.Position) < e.Size+o.Size
}

// grow はサイズとエネルギーを加算します。どちらも負にはなりません。
func (e *Entity) grow(size, energy float64) {
	e.Size = max(0, e.Size+size)
	e.Energy = max(0, e.Energy+energy)
}
