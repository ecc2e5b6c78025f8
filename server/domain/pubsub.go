package domain

import (
	"context"
	"errors"
	"sync"
)

//go:generate go tool mockgen -destination=./mocks/pubsub_mock.go -package=mocks . PubSub

// ErrTopicFull は購読者のチャネルが満杯でメッセージを破棄した場合に返されます。
var ErrTopicFull = errors.New("pubsub: subscriber channel is full, message dropped")

type Topic string

func SessionTopic(id SessionID) Topic { return Topic("session:" + id.String()) }
func RoomTopic(id RoomID) Topic       { return Topic("room:" + id.String()) }
func RoomControlTopic(id RoomID) Topic {
	return Topic("room:" + id.String() + ":ctrl")
}

// MessageKind はルームに届くメッセージの種別です。
type MessageKind uint8

const (
	MessageData   MessageKind = iota // クライアントからのフレーム
	MessageAttach                    // セッションがルームに接続した
	MessageDetach                    // セッションが切断した
)

type Message struct {
	SessionID SessionID
	Kind      MessageKind
	Data      []byte
}

// PubSub はセッションとルームの間のメッセージ配送を担当します。
type PubSub interface {
	// Publish は購読者ごとにノンブロッキングで配送し、満杯の購読者には破棄します。
	Publish(ctx context.Context, topic Topic, msg Message) error
	// Deliver は全購読者に届くまで、または ctx が終了するまでブロックします。
	Deliver(ctx context.Context, topic Topic, msg Message) error
	Subscribe(topic Topic) <-chan Message
	Unsubscribe(topic Topic, ch <-chan Message)
}

type SimplePubSub struct {
	mu         sync.RWMutex
	subs       map[Topic][]chan Message
	bufferSize int
}

var _ PubSub = (*SimplePubSub)(nil)

func NewSimplePubSub() *SimplePubSub {
	return &SimplePubSub{
		subs:       make(map[Topic][]chan Message),
		bufferSize: 1024,
	}
}

func (p *SimplePubSub) Subscribe(topic Topic) <-chan Message {
	ch := make(chan Message, p.bufferSize)
	p.mu.Lock()
	p.subs[topic] = append(p.subs[topic], ch)
	p.mu.Unlock()
	return ch
}

// Unsubscribe は購読を解除します。送信側との競合を避けるためチャネルは close しません。
func (p *SimplePubSub) Unsubscribe(topic Topic, ch <-chan Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	subs := p.subs[topic]
	for i, c := range subs {
		if c == ch {
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(p.subs, topic)
		return
	}
	p.subs[topic] = subs
}

func (p *SimplePubSub) Publish(ctx context.Context, topic Topic, msg Message) error {
	var err error
	for _, ch := range p.subscribers(topic) {
		select {
		case ch <- msg:
		default:
			err = ErrTopicFull
		}
	}
	return err
}

func (p *SimplePubSub) Deliver(ctx context.Context, topic Topic, msg Message) error {
	for _, ch := range p.subscribers(topic) {
		select {
		case ch <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (p *SimplePubSub) subscribers(topic Topic) []chan Message {
	p.mu.RLock()
	defer p.mu.RUnlock()
	subs := p.subs[topic]
	out := make([]chan Message, len(subs))
	copy(out, subs)
	return out
}
