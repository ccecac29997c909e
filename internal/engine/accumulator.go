package engine

import (
	"regexp"
	"strings"

	"github.com/nvwa-games/storycade/internal/model/story"
	"github.com/nvwa-games/storycade/internal/transcript"
)

// optionListStart matches the first line break followed by an ordinal marker
// such as "1." or "1)". The structured options frame is authoritative, so the
// raw enumerated list is cut from the narrative at this point.
var optionListStart = regexp.MustCompile(`[\n\r]+\s*1[.)]\s+`)

// StripOptionList returns the narrative with the trailing enumerated list
// removed. When no marker is present the text is returned verbatim, so
// re-running it on already-truncated content is a no-op.
func StripOptionList(content string) string {
	loc := optionListStart.FindStringIndex(content)
	if loc == nil {
		return content
	}
	return strings.TrimSpace(content[:loc[0]])
}

// turnAccumulator folds the frame sequence of a single turn into one
// assistant message inside the transcript store.
//
// The message is created lazily on the first content frame so an empty bubble
// never appears before any text exists. Options are staged and only attached
// once the end frame arrives.
type turnAccumulator struct {
	store     *transcript.Store
	sessionID string
	gameID    string

	msgID  string
	text   string
	staged []story.GameplayOption
	ended  bool
}

func newTurnAccumulator(store *transcript.Store, sessionID, gameID string) *turnAccumulator {
	return &turnAccumulator{store: store, sessionID: sessionID, gameID: gameID}
}

// Apply folds one frame into the in-progress message. Frames of unknown type
// are ignored without aborting the turn.
func (a *turnAccumulator) Apply(frame Frame) {
	switch frame.Type {
	case FrameContent:
		a.appendContent(frame.Content)
	case FrameOptions:
		a.staged = frame.Options
	case FrameEnd:
		a.finalize()
	}
}

// Ended reports whether the end frame for this turn has been processed.
func (a *turnAccumulator) Ended() bool {
	return a.ended
}

// MessageID returns the id of this turn's assistant message, or "" when no
// content frame ever arrived.
func (a *turnAccumulator) MessageID() string {
	return a.msgID
}

func (a *turnAccumulator) appendContent(delta string) {
	a.text += delta

	if a.msgID == "" {
		a.msgID = a.store.Append(story.Message{
			SessionID: a.sessionID,
			GameID:    a.gameID,
			Role:      story.RoleAssistant,
			Content:   a.text,
		})
		return
	}
	a.store.SetContent(a.msgID, a.text)
}

// finalize attaches the staged options and, when at least one option exists,
// cuts the redundant enumerated list out of the narrative text. Narrative and
// options are not mutually exclusive: text with no marker is kept verbatim.
func (a *turnAccumulator) finalize() {
	a.ended = true

	if a.msgID == "" {
		if len(a.staged) == 0 {
			return
		}
		// Options without any narrative still need a message to hang off.
		a.msgID = a.store.Append(story.Message{
			SessionID: a.sessionID,
			GameID:    a.gameID,
			Role:      story.RoleAssistant,
		})
	}

	if len(a.staged) > 0 {
		if truncated := StripOptionList(a.text); truncated != a.text {
			a.text = truncated
			a.store.SetContent(a.msgID, a.text)
		}
	}

	a.store.AttachOptions(a.msgID, a.staged)
}
