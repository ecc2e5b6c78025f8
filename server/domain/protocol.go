package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EventType はフレームのイベント名です。
type EventType string

const (
	// inbound
	EventJoin           EventType = "join"
	EventPlayerMovement EventType = "playerMovement"
	EventPlayerAction   EventType = "playerAction"
	EventPlayerSplit    EventType = "playerSplit"
	EventPong           EventType = "pong"

	// outbound
	EventInitialState       EventType = "initialState"
	EventGameUpdate         EventType = "gameUpdate"
	EventPlayerDisconnected EventType = "playerDisconnected"
	EventPlayerConsumed     EventType = "playerConsumed"
	EventPing               EventType = "ping"
)

// Envelope は全フレーム共通の外形です。
//
//	{"type": "playerMovement", "payload": {"angle": 1.57}}
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var (
	ErrEmptyFrame   = errors.New("protocol: empty frame")
	ErrMissingType  = errors.New("protocol: frame has no type")
	ErrInvalidFrame = errors.New("protocol: invalid frame")
)

// ParseEnvelope はフレームをパースします。payload はデコードしません。
func ParseEnvelope(data []byte) (*Envelope, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	if env.Type == "" {
		return nil, ErrMissingType
	}
	return &env, nil
}

// DecodePayload は payload を v にデコードします。payload が無い場合は v をそのままにします。
func (e *Envelope) DecodePayload(v any) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrInvalidFrame, e.Type, err)
	}
	return nil
}

// Encode はイベントをフレームにエンコードします。payload が nil の場合は省略されます。
func Encode(eventType EventType, payload any) ([]byte, error) {
	env := Envelope{Type: eventType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("protocol: encode %s: %w", eventType, err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

// EncodePingMessage は死活確認用の ping フレームです。
func EncodePingMessage() []byte {
	return []byte(`{"type":"ping"}`)
}

// EncodePongMessage は ping への応答フレームです。
func EncodePongMessage() []byte {
	return []byte(`{"type":"pong"}`)
}
