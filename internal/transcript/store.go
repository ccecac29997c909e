// Package transcript holds the ordered message log for one play session.
//
// The store supports exactly the mutations the session engine needs: append,
// patch-by-id, and removal of a rolled-back user message. Nothing here
// re-derives accumulation state; consumers can render Messages() as-is at any
// point.
package transcript

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nvwa-games/storycade/internal/model/story"
)

// Store is the ordered, append-mostly message log.
type Store struct {
	mu       sync.RWMutex
	messages []story.Message
}

// New returns an empty store.
func New() *Store {
	return &Store{messages: make([]story.Message, 0, 16)}
}

// Append adds a message to the end of the log and returns its assigned id.
func (s *Store) Append(msg story.Message) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	s.messages = append(s.messages, msg)
	return msg.ID
}

// Get returns a copy of the message with the given id.
func (s *Store) Get(id string) (story.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, msg := range s.messages {
		if msg.ID == id {
			return msg, true
		}
	}
	return story.Message{}, false
}

// SetContent replaces the accumulated content of an in-progress message.
func (s *Store) SetContent(id, content string) {
	s.patch(id, func(msg *story.Message) {
		msg.Content = content
	})
}

// AttachOptions attaches the finalized choice list to a message.
func (s *Store) AttachOptions(id string, options []story.GameplayOption) {
	s.patch(id, func(msg *story.Message) {
		msg.Options = options
	})
}

// SetImageGenerating flips the per-message illustration loading flag.
func (s *Store) SetImageGenerating(id string, generating bool) {
	s.patch(id, func(msg *story.Message) {
		msg.IsGeneratingImage = generating
	})
}

// SetNarrativeImage records a resolved illustration and clears the loading flag.
func (s *Store) SetNarrativeImage(id, imageURL string) {
	s.patch(id, func(msg *story.Message) {
		msg.NarrativeImage = imageURL
		msg.IsGeneratingImage = false
	})
}

// Remove deletes a message from the log entirely, including its position in
// the ordering. Only the optimistic-user-message rollback path uses this.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, msg := range s.messages {
		if msg.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return
		}
	}
}

// Messages returns a snapshot of the log in creation order.
func (s *Store) Messages() []story.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]story.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// Len reports the number of messages in the log.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns a copy of the newest message, if any.
func (s *Store) Last() (story.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.messages) == 0 {
		return story.Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

func (s *Store) patch(id string, apply func(*story.Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			apply(&s.messages[i])
			return
		}
	}
}
