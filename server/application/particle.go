package application

import "fmt"

// Particle は取得するとエネルギーと成長を与えるエネルギー粒子です。
type Particle struct {
	ID       string
	Position Vec2
	Size     float64
	Energy   float64
	Color    string
}

const particleColor = "#00ffff"

func (w *World) newParticle() *Particle {
	w.nextParticleID++
	return &Particle{
		ID:       fmt.Sprintf("e-%d", w.nextParticleID),
		Position: w.randomPosition(),
		Size:     w.randomRange(w.cfg.ParticleSizeMin, w.cfg.ParticleSizeMax),
		Energy:   w.randomRange(w.cfg.ParticleEnergyMin, w.cfg.ParticleEnergyMax),
		Color:    particleColor,
	}
}

func (w *World) spawnParticles(n int) {
	for range n {
		w.particles = append(w.particles, w.newParticle())
	}
}

// topUpParticles は下限を下回った場合に1バッチ分補充します。
// 取得ごとの1個補充（resolveParticles）とは独立した補充経路です。
func (w *World) topUpParticles() int {
	if len(w.particles) >= w.cfg.ParticleFloor {
		return 0
	}
	w.spawnParticles(w.cfg.ParticleBatch)
	return w.cfg.ParticleBatch
}

// ReseedIfEmpty は粒子が1つもない場合に初期数を配置し直します。
func (w *World) ReseedIfEmpty() bool {
	if len(w.particles) > 0 {
		return false
	}
	w.spawnParticles(w.cfg.ParticleSeed)
	return true
}
