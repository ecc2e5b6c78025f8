package application

import "errors"

var (
	ErrUnknownMessage   = errors.New("unknown message type")
	ErrMalformedPayload = errors.New("malformed payload")
)

type JoinPayload struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// MovementPayload は角度入力 {angle} と絶対位置入力 {x,y,energy} の両方を受けます。
type MovementPayload struct {
	Angle  *float64 `json:"angle,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Energy *float64 `json:"energy,omitempty"` // 受け取るが使わない（エネルギーはサーバーが決める）
}

type ActionPayload struct {
	AbilityIndex *int `json:"abilityIndex"`
}

type InitialStatePayload struct {
	PlayerID  string    `json:"playerId"`
	GameState GameState `json:"gameState"`
}

type DisconnectedPayload struct {
	PlayerID string `json:"playerId"`
}

type ConsumedPayload struct {
	PlayerID string `json:"playerId"`
	By       string `json:"by"`
}
