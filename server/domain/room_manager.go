package domain

import "context"

//go:generate go tool mockgen -destination=./mocks/room_manager_mock.go -package=mocks . RoomManager

type RoomID string

func (id RoomID) String() string { return string(id) }
func (id RoomID) IsEmpty() bool  { return id == "" }

// RoomManager はセッションが所属するルームを決定します。
type RoomManager interface {
	GetRoom(ctx context.Context, sessionID SessionID) (RoomID, error)
}

// SimpleRoomManager は全セッションを単一のデフォルトルームに割り当てます。
type SimpleRoomManager struct {
	defaultRoom RoomID
}

func NewSimpleRoomManager(defaultRoom RoomID) *SimpleRoomManager {
	return &SimpleRoomManager{defaultRoom: defaultRoom}
}

func (m *SimpleRoomManager) GetRoom(ctx context.Context, sessionID SessionID) (RoomID, error) {
	return m.defaultRoom, nil
}
