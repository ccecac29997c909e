package narrator

import (
	"fmt"
	"strings"

	"github.com/nvwa-games/storycade/internal/model/story"
)

// BuildSystemPrompt assembles the game-master instructions for one title.
// The contract with the client matters here: every scene ends with a short
// enumerated choice list ("1. ..."), which the play handler re-parses into
// the structured options frame.
func BuildSystemPrompt(game story.Game) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are the narrator of %q, an interactive %s", game.Title, game.Genre)
	if game.Subgenre != "" {
		fmt.Fprintf(&b, " (%s)", game.Subgenre)
	}
	b.WriteString(" fiction game.\n\n")

	fmt.Fprintf(&b, "Premise: %s\n", game.Description)
	if game.Tagline != "" {
		fmt.Fprintf(&b, "Tone: %s\n", game.Tagline)
	}

	b.WriteString(`
Rules:
- Narrate in second person, present tense. Two to four short paragraphs per turn.
- Never speak for the player; react to what they chose or typed.
- End every turn with exactly one blank line followed by a numbered list of
  2 to 4 choices, each on its own line in the form "1. <choice>".
- The player may ignore the list and type anything; weave it in.
- Keep the story moving; no turn should end without a concrete situation.`)

	return b.String()
}
