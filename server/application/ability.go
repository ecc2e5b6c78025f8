package application

// AbilityType はモジュールの種類です。
type AbilityType string

const (
	AbilitySpeedBoost AbilityType = "speed_boost"
	AbilityShield     AbilityType = "shield"
	AbilityMagnet     AbilityType = "magnet"
	AbilityPulse      AbilityType = "pulse"
	AbilityTrap       AbilityType = "trap"
)

// Ability は1スロット分のモジュール状態です。Duration/Cooldown は残りミリ秒です。
type Ability struct {
	Type     AbilityType
	Active   bool
	Duration float64
	Cooldown float64
}

type abilitySpec struct {
	duration float64 // 0 は即時効果
	cooldown float64
}

var abilitySpecs = map[AbilityType]abilitySpec{
	AbilitySpeedBoost: {duration: 3000, cooldown: 10000},
	AbilityShield:     {duration: 2000, cooldown: 15000},
	AbilityMagnet:     {duration: 5000, cooldown: 12000},
	AbilityPulse:      {cooldown: 8000},
	AbilityTrap:       {cooldown: 20000},
}

// DefaultLoadout はプレイヤーが参加時に持つモジュール構成です。
func DefaultLoadout() []Ability {
	return []Ability{
		{Type: AbilitySpeedBoost},
		{Type: AbilityShield},
		{Type: AbilityMagnet},
		{Type: AbilityPulse},
		{Type: AbilityTrap},
	}
}

// activate は index のモジュールを発動します。存在しないかクールダウン中なら false です。
func (e *Entity) activate(index int) (AbilityType, bool) {
	if index < 0 || index >= len(e.Modules) {
		return "", false
	}
	m := &e.Modules[index]
	if m.Cooldown > 0 {
		return "", false
	}
	spec, ok := abilitySpecs[m.Type]
	if !ok {
		return "", false
	}
	if spec.duration > 0 {
		m.Active = true
		m.Duration = spec.duration
	}
	m.Cooldown = spec.cooldown
	return m.Type, true
}

// tickAbilities は経過時間だけ残り時間を減らします。0で止まり、持続が切れたら非アクティブにします。
func (e *Entity) tickAbilities(elapsedMs float64) {
	for i := range e.Modules {
		m := &e.Modules[i]
		m.Cooldown = max(0, m.Cooldown-elapsedMs)
		if !m.Active {
			continue
		}
		m.Duration = max(0, m.Duration-elapsedMs)
		if m.Duration == 0 {
			m.Active = false
		}
	}
}

func (e *Entity) abilityActive(t AbilityType) bool {
	for _, m := range e.Modules {
		if m.Type == t && m.Active {
			return true
		}
	}
	return false
}
