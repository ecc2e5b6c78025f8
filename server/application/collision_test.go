package application

import "testing"

func TestResolveParticles_ConsumesAndReplenishes(t *testing.T) {
	w := emptyWorld(t)
	a := w.AddPlayer("a", "", "")
	a.Position = Vec2{}
	a.Size = 20
	startEnergy := a.Energy

	p := &Particle{ID: "target", Position: Vec2{X: 5}, Size: 5, Energy: 17}
	w.particles = []*Particle{p}

	if got := w.resolveParticles(); got != 1 {
		t.Fatalf("eaten = %d, want 1", got)
	}
	if len(w.particles) != 1 {
		t.Fatalf("particles = %d, want 1 replacement", len(w.particles))
	}
	if w.particles[0].ID == "target" {
		t.Error("consumed particle still present")
	}
	if a.Energy != startEnergy+17 {
		t.Errorf("Energy = %f, want %f", a.Energy, startEnergy+17)
	}
	if a.Size != 20.5 {
		t.Errorf("Size = %f, want 20.5", a.Size)
	}
}

func TestResolveParticles_NoContact(t *testing.T) {
	w := emptyWorld(t)
	a := w.AddPlayer("a", "", "")
	a.Position = Vec2{}
	w.particles = []*Particle{{ID: "far", Position: Vec2{X: 25}, Size: 5}}

	if got := w.resolveParticles(); got != 0 {
		t.Errorf("eaten = %d, want 0 (distance == radius sum)", got)
	}
}

func TestResolveParticles_Magnet(t *testing.T) {
	w := emptyWorld(t)
	a := w.AddPlayer("a", "", "")
	a.Position = Vec2{X: 1000, Y: 1000}
	p := &Particle{ID: "p", Position: Vec2{X: 1100, Y: 1000}, Size: 5}
	w.particles = []*Particle{p}
	w.ActivateAbility("a", 2)

	w.resolveParticles()
	if p.Position.X != 1096 {
		t.Errorf("particle X = %f, want 1096", p.Position.X)
	}
}

func TestResolveEntities_DominanceAbsorbsBot(t *testing.T) {
	w := emptyWorld(t)
	a := w.AddPlayer("a", "", "")
	a.Position = Vec2{X: 1000, Y: 1000}
	a.Size, a.Energy = 30, 100

	w.AdjustBots()
	w.bots = w.bots[:1]
	b := w.bots[0]
	oldID := b.ID
	b.Position = Vec2{X: 1010, Y: 1000}
	b.Size, b.Energy = 20, 150

	got := w.resolveEntities()
	if len(got) != 1 {
		t.Fatalf("consumptions = %d, want 1", len(got))
	}
	if got[0].EaterID != "a" || got[0].VictimID != oldID || got[0].OwnerID != "" {
		t.Errorf("consumption = %+v", got[0])
	}
	if a.Size != 34 {
		t.Errorf("a.Size = %f, want 34", a.Size)
	}
	if a.Energy != 220 {
		t.Errorf("a.Energy = %f, want 220", a.Energy)
	}
	if b.ID == oldID {
		t.Error("bot was not regenerated")
	}
	if b.Size < 20 || b.Size >= 50 || b.Energy < 100 || b.Energy >= 300 {
		t.Errorf("regenerated bot size/energy = %f/%f", b.Size, b.Energy)
	}
	if _, ok := w.brains[oldID]; ok {
		t.Error("old brain not removed")
	}
}

func TestResolveEntities_DominanceOverHuman(t *testing.T) {
	w := emptyWorld(t)
	big := w.AddPlayer("big", "", "")
	big.Position, big.Size = Vec2{X: 500, Y: 500}, 40
	small := w.AddPlayer("small", "", "")
	small.Position, small.Size = Vec2{X: 510, Y: 500}, 20

	got := w.resolveEntities()
	if len(got) != 1 || got[0].VictimID != "small" || got[0].OwnerID != "small" {
		t.Fatalf("consumptions = %+v", got)
	}
	// 人間は人口調整段階で削除される
	if _, ok := w.Player("small"); !ok {
		t.Error("resolver must not remove human victims")
	}
}

func TestResolveEntities_SymmetricBounce(t *testing.T) {
	w := emptyWorld(t)
	a := w.AddPlayer("a", "", "")
	a.Position, a.Size = Vec2{X: 0, Y: 0}, 20
	b := w.AddPlayer("b", "", "")
	b.Position, b.Size = Vec2{X: 10, Y: 0}, 20
	ea, eb := a.Energy, b.Energy

	if got := w.resolveEntities(); len(got) != 0 {
		t.Fatalf("consumptions = %d, want 0", len(got))
	}
	if d := a.Position.Dist(b.Position); d < 40 {
		t.Errorf("distance = %f, want >= 40", d)
	}
	if a.Energy != ea || b.Energy != eb {
		t.Error("bounce must not transfer energy")
	}
}

func TestResolveEntities_BounceCoincident(t *testing.T) {
	w := emptyWorld(t)
	a := w.AddPlayer("a", "", "")
	a.Position, a.Size = Vec2{X: 100, Y: 100}, 20
	b := w.AddPlayer("b", "", "")
	b.Position, b.Size = Vec2{X: 100, Y: 100}, 20

	w.resolveEntities()
	if d := a.Position.Dist(b.Position); d < 40 {
		t.Errorf("distance = %f, want >= 40", d)
	}
}

func TestResolveEntities_BounceNearWallStaysInBounds(t *testing.T) {
	w := emptyWorld(t)
	a := w.AddPlayer("a", "", "")
	a.Position, a.Size = Vec2{X: 2995, Y: 1500}, 20
	b := w.AddPlayer("b", "", "")
	b.Position, b.Size = Vec2{X: 3000, Y: 1500}, 20

	w.resolveEntities()
	for _, e := range []*Entity{a, b} {
		if e.Position.X < 0 || e.Position.X > 3000 || e.Position.Y < 0 || e.Position.Y > 3000 {
			t.Errorf("%s at %+v out of bounds", e.ID, e.Position)
		}
	}
	if d := a.Position.Dist(b.Position); d < 40 {
		t.Errorf("distance = %f, want >= 40", d)
	}
}

func TestResolveEntities_ShieldBlocksAbsorb(t *testing.T) {
	w := emptyWorld(t)
	big := w.AddPlayer("big", "", "")
	big.Position, big.Size = Vec2{X: 500, Y: 500}, 40
	small := w.AddPlayer("small", "", "")
	small.Position, small.Size = Vec2{X: 510, Y: 500}, 20
	w.ActivateAbility("small", 1)

	if got := w.resolveEntities(); len(got) != 0 {
		t.Fatalf("consumptions = %+v, want none with shield", got)
	}
	if d := big.Position.Dist(small.Position); d < 60 {
		t.Errorf("distance = %f, want >= 60", d)
	}
}

func TestApplyPulse(t *testing.T) {
	w := emptyWorld(t)
	src := w.AddPlayer("src", "", "")
	src.Position = Vec2{X: 1000, Y: 1000}
	near := w.AddPlayer("near", "", "")
	near.Position = Vec2{X: 1100, Y: 1000}
	far := w.AddPlayer("far", "", "")
	far.Position = Vec2{X: 1500, Y: 1000}

	if got := w.applyPulse(src); got != 1 {
		t.Errorf("pushed = %d, want 1", got)
	}
	if near.Position.X != 1160 {
		t.Errorf("near X = %f, want 1160", near.Position.X)
	}
	if far.Position.X != 1500 {
		t.Errorf("far X = %f, want 1500", far.Position.X)
	}
}
