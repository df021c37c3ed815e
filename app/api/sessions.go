package api

import (
	"sync"

	"pdfbot/loader/pipeline"
	"pdfbot/types"

	"github.com/google/uuid"
)

// Sessions держит индексы загруженных наборов документов в памяти процесса.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*pipeline.Session
}

func NewSessions() *Sessions {
	return &Sessions{
		sessions: make(map[uuid.UUID]*pipeline.Session),
	}
}

func (s *Sessions) Add(sess *pipeline.Session) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	return id
}

func (s *Sessions) Get(id uuid.UUID) (*pipeline.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, types.ErrSessionNotFound
	}
	return sess, nil
}

// Remove closes the session's index and forgets it.
func (s *Sessions) Remove(id uuid.UUID) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return types.ErrSessionNotFound
	}
	return sess.Close()
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CloseAll releases every index; used on shutdown.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		_ = sess.Close()
		delete(s.sessions, id)
	}
}
