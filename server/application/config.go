package application

import "time"

// Config はシミュレーションの定数をまとめたものです。
type Config struct {
	WorldWidth  float64
	WorldHeight float64
	SpawnMargin float64 // プレイヤーの出現位置を境界から離す距離

	TickInterval time.Duration

	// AI
	MinPlayerCount int
	BotSizeMin     float64
	BotSizeMax     float64
	BotEnergyMin   float64
	BotEnergyMax   float64
	BotInertia     float64 // 前回の進行方向を残す割合
	BotJitter      float64 // ランダム成分の振れ幅

	// Player
	PlayerSpeed       float64 // 角度入力時の速度（world units / tick）
	PlayerStartSize   float64
	PlayerStartEnergy float64
	SpeedBoostFactor  float64
	SplitMinSize      float64

	// Energy particles
	ParticleSeed      int
	ParticleFloor     int
	ParticleBatch     int
	ParticleSizeMin   float64
	ParticleSizeMax   float64
	ParticleEnergyMin float64
	ParticleEnergyMax float64
	ParticleGrowth    float64 // 粒子サイズに対する成長率

	// Entity collisions
	DominanceRatio    float64
	AbsorbEnergyRatio float64
	AbsorbSizeRatio   float64

	// Abilities
	MagnetRadius float64
	MagnetPull   float64
	PulseRadius  float64
	PulsePush    float64
}

func DefaultConfig() Config {
	return Config{
		WorldWidth:  3000,
		WorldHeight: 3000,
		SpawnMargin: 100,

		TickInterval: time.Second / 30,

		MinPlayerCount: 5,
		BotSizeMin:     20,
		BotSizeMax:     50,
		BotEnergyMin:   100,
		BotEnergyMax:   300,
		BotInertia:     0.8,
		BotJitter:      0.4,

		PlayerSpeed:       5,
		PlayerStartSize:   20,
		PlayerStartEnergy: 100,
		SpeedBoostFactor:  1.5,
		SplitMinSize:      40,

		ParticleSeed:      200,
		ParticleFloor:     100,
		ParticleBatch:     20,
		ParticleSizeMin:   5,
		ParticleSizeMax:   10,
		ParticleEnergyMin: 10,
		ParticleEnergyMax: 30,
		ParticleGrowth:    0.1,

		DominanceRatio:    1.1,
		AbsorbEnergyRatio: 0.8,
		AbsorbSizeRatio:   0.2,

		MagnetRadius: 200,
		MagnetPull:   4,
		PulseRadius:  150,
		PulsePush:    60,
	}
}

// elapsedMillis は1tickあたりの経過ミリ秒です。
func (c Config) elapsedMillis() float64 {
	return float64(c.TickInterval) / float64(time.Millisecond)
}
