package narrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/nvwa-games/storycade/internal/model/story"
)

// Scripted is the credential-free narrator: a deterministic scene generator
// that keeps the server playable (and testable) when no chat model is
// configured. It honors the same output contract as the model, including the
// trailing numbered choice list.
type Scripted struct{}

// NewScripted returns the fallback narrator.
func NewScripted() *Scripted {
	return &Scripted{}
}

// StreamOpening emits a fixed opening scene for the game.
func (s *Scripted) StreamOpening(_ context.Context, game story.Game) (*schema.StreamReader[*schema.Message], error) {
	text := fmt.Sprintf(
		"%s\n\n%s You set down what you were carrying and take in the scene; somewhere ahead, the story of %q is already waiting for you.\n\n1. Press forward carefully\n2. Stop and observe your surroundings\n3. Call out to see if anyone answers",
		game.Tagline, game.Description, game.Title,
	)
	return chunkedStream(text), nil
}

// StreamTurn echoes the player's choice into a generic continuation.
func (s *Scripted) StreamTurn(_ context.Context, game story.Game, history []story.Message, userMessage string) (*schema.StreamReader[*schema.Message], error) {
	text := fmt.Sprintf(
		"You decide: %s.\n\nThe world of %q shifts around that choice. A path closes behind you and another opens, and turn %d begins with the sense that something noticed what you just did.\n\n1. Keep going\n2. Retrace your steps\n3. Wait and listen",
		userMessage, game.Title, len(history)/2+1,
	)
	return chunkedStream(text), nil
}

// chunkedStream cuts the scene into small deltas so downstream consumers see
// a realistic multi-frame stream rather than one blob.
func chunkedStream(text string) *schema.StreamReader[*schema.Message] {
	const chunkSize = 48

	runes := []rune(text)
	chunks := make([]*schema.Message, 0, len(runes)/chunkSize+1)
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, schema.AssistantMessage(string(runes[start:end]), nil))
	}

	return schema.StreamReaderFromArray(chunks)
}
