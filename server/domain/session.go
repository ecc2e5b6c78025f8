package domain

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// SessionID は1接続の論理セッションを識別します。プレイヤーIDとしても使われます。
type SessionID string

func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

func (id SessionID) String() string { return string(id) }
func (id SessionID) IsEmpty() bool  { return id == "" }

// IdleReason はセッションがアイドルと判定された理由のビットマスクです。
type IdleReason uint8

const (
	IdleNone     IdleReason = 0
	IdleRead     IdleReason = 1 << 0
	IdleWrite    IdleReason = 1 << 1
	IdlePong     IdleReason = 1 << 2
	IdleDisabled IdleReason = 1 << 7 // timeout<=0 のとき
)

func (r IdleReason) Has(x IdleReason) bool { return r&x != 0 }

func (r IdleReason) String() string {
	switch r {
	case IdleNone:
		return "none"
	case IdleDisabled:
		return "disabled"
	}
	out := ""
	for _, f := range []struct {
		bit  IdleReason
		name string
	}{{IdleRead, "read"}, {IdleWrite, "write"}, {IdlePong, "pong"}} {
		if !r.Has(f.bit) {
			continue
		}
		if out != "" {
			out += "|"
		}
		out += f.name
	}
	if out == "" {
		return fmt.Sprintf("unknown(%d)", r)
	}
	return out
}

// Session は1接続の論理的な接続状態を表す構造体です。
type Session struct {
	id SessionID

	// activity
	lastRead  atomic.Int64
	lastWrite atomic.Int64
	lastPong  atomic.Int64

	// lifecycle
	closed atomic.Bool
}

func NewSession() *Session {
	s := &Session{id: NewSessionID()}
	now := time.Now().UnixNano()
	s.lastRead.Store(now)
	s.lastWrite.Store(now)
	s.lastPong.Store(now)
	return s
}

func (s *Session) ID() SessionID { return s.id }

func (s *Session) TouchRead()  { s.lastRead.Store(time.Now().UnixNano()) }
func (s *Session) TouchWrite() { s.lastWrite.Store(time.Now().UnixNano()) }
func (s *Session) TouchPong()  { s.lastPong.Store(time.Now().UnixNano()) }

// Close はセッションを閉じます。初回呼び出し時のみ true を返します。
func (s *Session) Close() bool {
	return s.closed.CompareAndSwap(false, true)
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

func (s *Session) IsIdle(timeout time.Duration) (bool, IdleReason) {
	if timeout <= 0 {
		return false, IdleDisabled
	}
	var reason IdleReason
	if isIdleSince(s.lastRead.Load(), timeout) {
		reason |= IdleRead
	}
	if isIdleSince(s.lastWrite.Load(), timeout) {
		reason |= IdleWrite
	}
	if isIdleSince(s.lastPong.Load(), timeout) {
		reason |= IdlePong
	}
	return reason != IdleNone, reason
}

func isIdleSince(lastNano int64, timeout time.Duration) bool {
	return time.Since(time.Unix(0, lastNano)) > timeout
}
