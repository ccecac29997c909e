package narrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/nvwa-games/storycade/internal/config"
	"github.com/nvwa-games/storycade/internal/model/story"
)

func testGame() story.Game {
	return story.Game{
		Slug:        "the-hollow-lantern",
		Title:       "The Hollow Lantern",
		Tagline:     "Every light you carry casts a shadow.",
		Description: "An abandoned lighthouse keeps burning.",
		Genre:       "horror",
		Subgenre:    "gothic",
	}
}

func drain(t *testing.T, stream *schema.StreamReader[*schema.Message]) string {
	t.Helper()
	defer stream.Close()

	var b strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return b.String()
		}
		if err != nil {
			t.Fatalf("Recv err: %v", err)
		}
		b.WriteString(chunk.Content)
	}
}

func TestBuildSystemPromptCarriesGameIdentity(t *testing.T) {
	prompt := BuildSystemPrompt(testGame())
	for _, want := range []string{
		`"The Hollow Lantern"`,
		"horror",
		"(gothic)",
		"An abandoned lighthouse keeps burning.",
		`"1. <choice>"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("system prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildSystemPromptOmitsEmptySubgenre(t *testing.T) {
	game := testGame()
	game.Subgenre = ""
	if strings.Contains(BuildSystemPrompt(game), "()") {
		t.Fatal("empty subgenre should not render")
	}
}

func TestScriptedOpeningEndsWithChoiceList(t *testing.T) {
	stream, err := NewScripted().StreamOpening(context.Background(), testGame())
	if err != nil {
		t.Fatalf("StreamOpening err: %v", err)
	}
	text := drain(t, stream)

	if !strings.Contains(text, "The Hollow Lantern") {
		t.Fatalf("opening should reference the game: %q", text)
	}
	if !strings.Contains(text, "\n\n1. ") {
		t.Fatalf("opening must end with a numbered choice list: %q", text)
	}
}

func TestScriptedTurnEchoesPlayerChoice(t *testing.T) {
	stream, err := NewScripted().StreamTurn(context.Background(), testGame(), nil, "light the match")
	if err != nil {
		t.Fatalf("StreamTurn err: %v", err)
	}
	text := drain(t, stream)

	if !strings.Contains(text, "light the match") {
		t.Fatalf("turn should echo the player input: %q", text)
	}
	if !strings.Contains(text, "\n\n1. ") {
		t.Fatalf("turn must end with a numbered choice list: %q", text)
	}
}

func TestScriptedStreamArrivesInChunks(t *testing.T) {
	stream, err := NewScripted().StreamOpening(context.Background(), testGame())
	if err != nil {
		t.Fatalf("StreamOpening err: %v", err)
	}
	defer stream.Close()

	chunks := 0
	for {
		_, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			t.Fatalf("Recv err: %v", recvErr)
		}
		chunks++
	}
	if chunks < 2 {
		t.Fatalf("expected a multi-chunk stream, got %d chunks", chunks)
	}
}

func TestBuildHistoryMessagesWindowsToLimit(t *testing.T) {
	svc := &Service{cfg: config.NarratorConfig{HistoryLimit: 4}}

	var messages []story.Message
	for i := 0; i < 6; i++ {
		role := story.RoleUser
		if i%2 == 1 {
			role = story.RoleAssistant
		}
		messages = append(messages, story.Message{Role: role, Content: fmt.Sprintf("m%d", i)})
	}

	history := svc.buildHistoryMessages(messages)
	if len(history) != 4 {
		t.Fatalf("expected window of 4, got %d", len(history))
	}
	if history[0].Content != "m2" || history[3].Content != "m5" {
		t.Fatalf("window should keep the newest messages: %+v", history)
	}
	if history[0].Role != schema.User || history[1].Role != schema.Assistant {
		t.Fatalf("roles not mapped: %+v", history[:2])
	}
}

func TestBuildHistoryMessagesEmpty(t *testing.T) {
	svc := &Service{cfg: config.NarratorConfig{HistoryLimit: 10}}
	if got := svc.buildHistoryMessages(nil); got != nil {
		t.Fatalf("expected nil history, got %+v", got)
	}
}
