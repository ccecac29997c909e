package story

import "time"

// Message roles. Only two parties ever speak in a transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one transcript entry for a play session.
//
// A finalized assistant message is immutable except for NarrativeImage and
// IsGeneratingImage, which resolve out of band once the illustration call
// returns.
type Message struct {
	ID                string           `json:"id"`
	SessionID         string           `json:"sessionId"`
	GameID            string           `json:"gameId"`
	Role              string           `json:"role"`
	Content           string           `json:"content"`
	Options           []GameplayOption `json:"options,omitempty"`
	NarrativeImage    string           `json:"narrativeImage,omitempty"`
	IsGeneratingImage bool             `json:"isGeneratingImage,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
}

// GameplayOption is one selectable choice attached to a finalized assistant
// message. ID is the presentation ordinal and its order must be preserved.
type GameplayOption struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Session identifies one play-through of a game.
type Session struct {
	SessionID string    `json:"sessionId"`
	GameID    string    `json:"gameId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
