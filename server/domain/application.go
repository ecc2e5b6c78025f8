package domain

import "context"

// Delivery はアプリケーションがルームに配送を依頼するフレームです。
// SessionID が空の場合は全セッションへのブロードキャストになります。
type Delivery struct {
	SessionID SessionID
	Data      []byte
}

func Broadcast(data []byte) Delivery { return Delivery{Data: data} }

func SendTo(sessionID SessionID, data []byte) Delivery {
	return Delivery{SessionID: sessionID, Data: data}
}

// Application はルームのtickループ上で実行されるゲームロジックです。
// 全メソッドはルームの単一goroutineから呼ばれます。
type Application interface {
	HandleMessage(ctx context.Context, sessionID SessionID, data []byte) ([]Delivery, error)
	Detach(ctx context.Context, sessionID SessionID) []Delivery
	Tick(ctx context.Context) []Delivery
}
