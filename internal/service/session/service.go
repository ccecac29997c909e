// Package session keeps the server-side registry of play sessions and their
// turn history. History lives only in memory: durable persistence is out of
// scope for the arcade backend.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nvwa-games/storycade/internal/model/story"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrGameMismatch    = errors.New("session is bound to a different game")
)

// Service encapsulates session state management.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]story.Session
	history  map[string][]story.Message
}

// NewService bootstraps the in-memory session service.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]story.Session),
		history:  make(map[string][]story.Message),
	}
}

// Create provisions an anonymous session. The game binding happens on the
// first start request, mirroring the public session-issuance contract.
func (s *Service) Create(_ context.Context) (story.Session, error) {
	session := story.Session{
		SessionID: uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.SessionID] = session
	s.history[session.SessionID] = make([]story.Message, 0, 16)
	s.mu.Unlock()

	return session, nil
}

// Get retrieves a session by identifier.
func (s *Service) Get(_ context.Context, sessionID string) (story.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return story.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// BindGame attaches a session to a game. Binding is idempotent for the same
// game and refused for a different one: one session is one play-through.
func (s *Service) BindGame(_ context.Context, sessionID, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if session.GameID != "" && session.GameID != gameID {
		return ErrGameMismatch
	}

	session.GameID = gameID
	s.sessions[sessionID] = session
	return nil
}

// AppendHistory records a turn message so later prompts carry context.
func (s *Service) AppendHistory(_ context.Context, message story.Message) error {
	if message.SessionID == "" {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[message.SessionID]; !ok {
		return ErrSessionNotFound
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	s.history[message.SessionID] = append(s.history[message.SessionID], message)
	return nil
}

// History returns stored messages for the provided session.
func (s *Service) History(_ context.Context, sessionID string) ([]story.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.history[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]story.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}
