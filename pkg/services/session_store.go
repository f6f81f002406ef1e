package services

import (
	"sync"

	"health-chat-api/pkg/models"
)

// SessionStore はセッションキーごとの会話状態を永続化するコラボレータです。
// DialogueServiceは保存方式を関知しません。
type SessionStore interface {
	Get(sessionKey string) (*models.DialogueState, bool)
	Put(sessionKey string, state *models.DialogueState)
	Delete(sessionKey string)
}

// MemorySessionStore はプロセス内メモリのSessionStore実装です。
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.DialogueState
}

// NewMemorySessionStore は新しいMemorySessionStoreを生成します。
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*models.DialogueState),
	}
}

// Get はセッションの会話状態を返します。
func (s *MemorySessionStore) Get(sessionKey string) (*models.DialogueState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionKey]
	return state, ok
}

// Put はセッションの会話状態を保存します。
func (s *MemorySessionStore) Put(sessionKey string, state *models.DialogueState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionKey] = state
}

// Delete はセッションの会話状態を破棄します。
func (s *MemorySessionStore) Delete(sessionKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey)
}

// SessionLocker はセッション単位でターン処理を直列化するためのキー付きロックです。
// 同一セッションに対する同時リクエストは1ターンずつ処理されます。
type SessionLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSessionLocker は新しいSessionLockerを生成します。
func NewSessionLocker() *SessionLocker {
	return &SessionLocker{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock はセッションのロックを取得し、解放用の関数を返します。
func (l *SessionLocker) Lock(sessionKey string) func() {
	l.mu.Lock()
	m, ok := l.locks[sessionKey]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionKey] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
