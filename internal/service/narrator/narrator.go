// Package narrator produces the streamed story text for each turn, either
// from an Ark chat model or from the scripted fallback.
package narrator

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/nvwa-games/storycade/internal/model/story"
)

// Narrator streams the opening scene and subsequent turns of a game. The play
// handler consumes whichever implementation the server was booted with.
type Narrator interface {
	StreamOpening(ctx context.Context, game story.Game) (*schema.StreamReader[*schema.Message], error)
	StreamTurn(ctx context.Context, game story.Game, history []story.Message, userMessage string) (*schema.StreamReader[*schema.Message], error)
}
