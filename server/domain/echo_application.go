package domain

import "context"

// EchoApplication は受信したメッセージを次のtickでそのままブロードキャストするテスト用Application。
type EchoApplication struct {
	pendingData [][]byte
	detached    []SessionID
}

var _ Application = (*EchoApplication)(nil)

func NewEchoApplication() *EchoApplication {
	return &EchoApplication{}
}

func (e *EchoApplication) HandleMessage(ctx context.Context, sessionID SessionID, data []byte) ([]Delivery, error) {
	e.pendingData = append(e.pendingData, data)
	return nil, nil
}

func (e *EchoApplication) Detach(ctx context.Context, sessionID SessionID) []Delivery {
	e.detached = append(e.detached, sessionID)
	return nil
}

func (e *EchoApplication) Tick(ctx context.Context) []Delivery {
	if len(e.pendingData) == 0 {
		return nil
	}
	out := make([]Delivery, 0, len(e.pendingData))
	for _, data := range e.pendingData {
		out = append(out, Broadcast(data))
	}
	e.pendingData = e.pendingData[:0]
	return out
}
