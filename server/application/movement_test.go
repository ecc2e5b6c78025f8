package application

import (
	"math"
	"testing"
)

func TestWorld_SetHeading(t *testing.T) {
	w := newTestWorld(t)
	w.AddPlayer("p1", "", "")

	if !w.SetHeading("p1", math.Pi/2) {
		t.Fatal("SetHeading returned false")
	}
	p, _ := w.Player("p1")
	if math.Abs(p.Velocity.X) > 1e-9 || math.Abs(p.Velocity.Y-5) > 1e-9 {
		t.Errorf("Velocity = %+v, want (0,5)", p.Velocity)
	}
	if w.SetHeading("gone", 0) {
		t.Error("SetHeading on unknown id should return false")
	}
}

func TestWorld_SetPositionClamps(t *testing.T) {
	w := newTestWorld(t)
	w.AddPlayer("p1", "", "")

	w.SetPosition("p1", -10, 4000)
	p, _ := w.Player("p1")
	if p.Position != (Vec2{X: 0, Y: 3000}) {
		t.Errorf("Position = %+v, want (0,3000)", p.Position)
	}
	if w.SetPosition("gone", 1, 1) {
		t.Error("SetPosition on unknown id should return false")
	}
}

func TestWorld_IntegrateClamps(t *testing.T) {
	w := newTestWorld(t)
	p := w.AddPlayer("p1", "", "")
	p.Position = Vec2{X: 2998, Y: 1}
	p.Velocity = Vec2{X: 5, Y: -5}

	w.integrate()
	if p.Position != (Vec2{X: 3000, Y: 0}) {
		t.Errorf("Position = %+v, want (3000,0)", p.Position)
	}
}

func TestWorld_IntegrateSpeedBoost(t *testing.T) {
	w := newTestWorld(t)
	p := w.AddPlayer("p1", "", "")
	p.Position = Vec2{X: 1000, Y: 1000}
	p.Velocity = Vec2{X: 5}
	if _, ok := w.ActivateAbility("p1", 0); !ok {
		t.Fatal("speed_boost activation failed")
	}

	w.integrate()
	if p.Position.X != 1007.5 {
		t.Errorf("X = %f, want 1007.5", p.Position.X)
	}
}
