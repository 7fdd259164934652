package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Session 一次登录的上下文：身份 + 表格缓存
type Session struct {
	ID      string
	UserID  string
	IsAdmin bool
	Cache   *Cache

	mu       sync.Mutex
	lastSeen time.Time
}

// Touch 刷新最近访问时间
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen 最近访问时间
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Manager 会话 ID -> Session，进程内保存
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *logrus.Logger
	now      func() time.Time
}

func NewManager(logger *logrus.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		logger:   logger,
		now:      time.Now,
	}
}

// Create 新建会话，缓存为空
func (m *Manager) Create(userID string, isAdmin bool) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		UserID:   userID,
		IsAdmin:  isAdmin,
		Cache:    NewCache(),
		lastSeen: m.now(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get 按 ID 查找会话并刷新访问时间
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.Touch(m.now())
	}
	return s, ok
}

// Delete 结束会话，未保存的表格随之丢弃
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len 当前会话数
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep 清理空闲超过 maxIdle 的会话，返回清理数量
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	if n > 0 {
		m.logger.WithFields(logrus.Fields{"swept": n, "remaining": len(m.sessions)}).Info("清理空闲会话")
	}
	return n
}

// RunSweeper 按 interval 周期清理，直到 stop 关闭
func (m *Manager) RunSweeper(interval, maxIdle time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sweep(maxIdle)
		case <-stop:
			return
		}
	}
}
