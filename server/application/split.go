package application

import (
	"fmt"
	"math"
)

// Split は id のプレイヤーを分裂させ、生まれたエンティティを同じ所有者の人間側として登録します。
// サイズ条件の確認は呼び出し側（メッセージハンドラ）で行います。
func (w *World) Split(id string) (*Entity, bool) {
	p, ok := w.Player(id)
	if !ok {
		return nil, false
	}
	p.Size *= 0.7
	p.Energy *= 0.7

	w.nextSplitID++
	offset := fromAngle(w.rng.Float64() * 2 * math.Pi).Scale(p.Size * 2)
	child := &Entity{
		ID:       fmt.Sprintf("%s-split-%d", id, w.nextSplitID),
		Kind:     KindHuman,
		Position: w.clampToBounds(p.Position.Add(offset)),
		Velocity: p.Velocity.Neg(),
		Size:     p.Size * 0.6,
		Energy:   p.Energy * 0.3,
		Color:    p.Color,
		Name:     p.Name,
		Modules:  []Ability{},
		ParentID: id,
	}
	w.insertPlayerEntity(child)
	return child, true
}

// CanSplit は分裂の前提条件（サイズ）を満たすかを返します。
func (w *World) CanSplit(id string) bool {
	p, ok := w.Player(id)
	return ok && p.Size > w.cfg.SplitMinSize
}

// ActivateAbility は index のモジュールを発動し、即時効果があれば適用します。
func (w *World) ActivateAbility(id string, index int) (AbilityType, bool) {
	p, ok := w.Player(id)
	if !ok {
		return "", false
	}
	t, ok := p.activate(index)
	if !ok {
		return "", false
	}
	if t == AbilityPulse {
		w.applyPulse(p)
	}
	return t, true
}
