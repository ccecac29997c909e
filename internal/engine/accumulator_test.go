package engine

import (
	"testing"

	"github.com/nvwa-games/storycade/internal/model/story"
	"github.com/nvwa-games/storycade/internal/transcript"
)

func TestAccumulatorConcatenatesAndAttachesOptions(t *testing.T) {
	store := transcript.New()
	acc := newTurnAccumulator(store, "s1", "g1")

	acc.Apply(Frame{Type: FrameContent, Content: "You enter a "})
	acc.Apply(Frame{Type: FrameContent, Content: "dark room."})
	acc.Apply(Frame{Type: FrameOptions, Options: []story.GameplayOption{{ID: 1, Text: "Light a torch"}}})
	acc.Apply(Frame{Type: FrameEnd})

	if !acc.Ended() {
		t.Fatal("expected turn to be finalized")
	}

	messages := store.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected one message, got %d", len(messages))
	}

	msg := messages[0]
	if msg.Content != "You enter a dark room." {
		t.Fatalf("unexpected content: %q", msg.Content)
	}
	if len(msg.Options) != 1 || msg.Options[0].ID != 1 || msg.Options[0].Text != "Light a torch" {
		t.Fatalf("unexpected options: %+v", msg.Options)
	}
	if msg.Role != story.RoleAssistant {
		t.Fatalf("unexpected role: %s", msg.Role)
	}
}

func TestAccumulatorTruncatesEnumeratedList(t *testing.T) {
	store := transcript.New()
	acc := newTurnAccumulator(store, "s1", "g1")

	acc.Apply(Frame{Type: FrameContent, Content: "The door creaks.\n1. Push\n2. Pull"})
	acc.Apply(Frame{Type: FrameOptions, Options: []story.GameplayOption{
		{ID: 1, Text: "Push"},
		{ID: 2, Text: "Pull"},
	}})
	acc.Apply(Frame{Type: FrameEnd})

	msg := store.Messages()[0]
	if msg.Content != "The door creaks." {
		t.Fatalf("expected truncated narrative, got %q", msg.Content)
	}
	if len(msg.Options) != 2 {
		t.Fatalf("expected both options attached, got %+v", msg.Options)
	}
}

func TestAccumulatorKeepsTextWithoutMarker(t *testing.T) {
	store := transcript.New()
	acc := newTurnAccumulator(store, "s1", "g1")

	acc.Apply(Frame{Type: FrameContent, Content: "No list here, just prose."})
	acc.Apply(Frame{Type: FrameOptions, Options: []story.GameplayOption{{ID: 1, Text: "Go on"}}})
	acc.Apply(Frame{Type: FrameEnd})

	msg := store.Messages()[0]
	if msg.Content != "No list here, just prose." {
		t.Fatalf("narrative should be kept verbatim, got %q", msg.Content)
	}
	if len(msg.Options) != 1 {
		t.Fatal("options should still be attached without a marker")
	}
}

func TestAccumulatorNoTruncationWithoutOptions(t *testing.T) {
	store := transcript.New()
	acc := newTurnAccumulator(store, "s1", "g1")

	acc.Apply(Frame{Type: FrameContent, Content: "A recipe:\n1. Crack the egg\n2. Whisk"})
	acc.Apply(Frame{Type: FrameEnd})

	msg := store.Messages()[0]
	if msg.Content != "A recipe:\n1. Crack the egg\n2. Whisk" {
		t.Fatalf("text must survive when no options were sent, got %q", msg.Content)
	}
}

func TestAccumulatorLazyMessageCreation(t *testing.T) {
	store := transcript.New()
	acc := newTurnAccumulator(store, "s1", "g1")

	if store.Len() != 0 {
		t.Fatal("no message should exist before the first content frame")
	}
	acc.Apply(Frame{Type: FrameOptions, Options: []story.GameplayOption{{ID: 1, Text: "Wait"}}})
	if store.Len() != 0 {
		t.Fatal("an options frame alone must not create a message")
	}

	acc.Apply(Frame{Type: FrameContent, Content: "Now."})
	if store.Len() != 1 {
		t.Fatal("first content frame should create the message")
	}
}

func TestAccumulatorUnfinishedTurnStaysOpen(t *testing.T) {
	store := transcript.New()
	acc := newTurnAccumulator(store, "s1", "g1")

	acc.Apply(Frame{Type: FrameContent, Content: "The stream dies he"})

	if acc.Ended() {
		t.Fatal("turn must not be finalized without an end frame")
	}

	msg := store.Messages()[0]
	if msg.Options != nil {
		t.Fatal("options must not be attached to an unfinished turn")
	}
	if msg.Content != "The stream dies he" {
		t.Fatalf("partial content should be preserved, got %q", msg.Content)
	}
}

func TestAccumulatorIgnoresUnknownFrameTypes(t *testing.T) {
	store := transcript.New()
	acc := newTurnAccumulator(store, "s1", "g1")

	acc.Apply(Frame{Type: "heartbeat"})
	acc.Apply(Frame{Type: FrameContent, Content: "ok"})
	acc.Apply(Frame{Type: FrameEnd})

	if got := store.Messages()[0].Content; got != "ok" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestStripOptionListIdempotent(t *testing.T) {
	raw := "The hallway stretches on.\n\n1. Run\n2) Hide"

	once := StripOptionList(raw)
	if once != "The hallway stretches on." {
		t.Fatalf("unexpected truncation: %q", once)
	}

	if twice := StripOptionList(once); twice != once {
		t.Fatalf("re-running extraction must be a no-op, got %q", twice)
	}
}

func TestStripOptionListParenthesisMarker(t *testing.T) {
	raw := "Choose.\n1) Left\n2) Right"
	if got := StripOptionList(raw); got != "Choose." {
		t.Fatalf("expected truncation at \"1)\", got %q", got)
	}
}
