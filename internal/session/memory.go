package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore 进程内会话存储
// idleTimeout>0 时，读取到超过空闲时长的会话视为不存在并清除
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	idleTimeout time.Duration
	now         func() time.Time
}

// NewMemoryStore 创建内存会话存储
func NewMemoryStore(idleTimeout time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, userID string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	if m.idleTimeout > 0 && m.now().Sub(s.UpdatedAt) > m.idleTimeout {
		m.mu.Lock()
		// 二次确认，避免删掉并发写入的新会话
		if cur, ok := m.sessions[userID]; ok && cur == s {
			delete(m.sessions, userID)
		}
		m.mu.Unlock()
		return nil, nil
	}

	cp := *s
	return &cp, nil
}

func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	cp := *s
	cp.UpdatedAt = m.now()

	m.mu.Lock()
	m.sessions[s.UserID] = &cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
	return nil
}

// Len 当前会话数
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
