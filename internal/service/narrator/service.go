package narrator

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/nvwa-games/storycade/internal/config"
	"github.com/nvwa-games/storycade/internal/model/story"
)

// openingQuery is the fixed first player turn that kicks off a story.
const openingQuery = "Begin the story."

// Service is the model-backed narrator.
type Service struct {
	chatModel model.ChatModel
	cfg       config.NarratorConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates a narrator backed by the configured Ark chat model.
func NewService(ctx context.Context, cfg config.NarratorConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile narration chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// StreamOpening streams the opening scene of a fresh play-through.
func (s *Service) StreamOpening(ctx context.Context, game story.Game) (*schema.StreamReader[*schema.Message], error) {
	return s.stream(ctx, game, nil, openingQuery)
}

// StreamTurn streams the narration responding to the player's input.
func (s *Service) StreamTurn(ctx context.Context, game story.Game, history []story.Message, userMessage string) (*schema.StreamReader[*schema.Message], error) {
	return s.stream(ctx, game, history, userMessage)
}

func (s *Service) stream(ctx context.Context, game story.Game, history []story.Message, query string) (*schema.StreamReader[*schema.Message], error) {
	input := map[string]any{
		"system":  BuildSystemPrompt(game),
		"history": s.buildHistoryMessages(history),
		"query":   query,
	}

	stream, err := s.chain.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to stream narration: %w", err)
	}

	log.Printf("[narrator] streaming turn for game=%s history=%d", game.Slug, len(history))
	return stream, nil
}

func (s *Service) buildHistoryMessages(messages []story.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if limit := s.cfg.HistoryLimit; limit > 0 && len(messages) > limit {
		startIdx = len(messages) - limit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case story.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case story.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}
