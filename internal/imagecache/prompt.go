// Package imagecache deduplicates and caches illustration requests keyed by
// their derived prompt.
package imagecache

import (
	"fmt"
	"strings"

	"github.com/nvwa-games/storycade/internal/model/story"
)

// Excerpt bounds for prompt derivation. Turn illustrations see more of the
// narrative than catalog covers do.
const (
	turnExcerptLimit  = 500
	coverExcerptLimit = 200
)

// genreStyles maps known genres to visual style descriptors. 未知类型回退到
// defaultStyle。
var genreStyles = map[string]string{
	"horror":    "dark, ominous, atmospheric, moody lighting, shadows",
	"mystery":   "noir, dramatic lighting, mysterious atmosphere, intrigue",
	"comedy":    "bright, colorful, whimsical, playful, vibrant",
	"adventure": "epic, cinematic, grand scale, dramatic",
	"sci-fi":    "futuristic, technological, neon, cyberpunk aesthetic",
	"fantasy":   "magical, ethereal, mystical, enchanted",
}

const defaultStyle = "cinematic, dramatic"

// StyleFor returns the visual style descriptor for a genre.
func StyleFor(genre string) string {
	if style, ok := genreStyles[strings.ToLower(genre)]; ok {
		return style
	}
	return defaultStyle
}

// TurnPrompt derives the deterministic prompt (and cache key) for one turn's
// illustration from the game's genre style, a bounded narrative excerpt, and
// the game's accent color. Identical inputs always derive identical keys.
func TurnPrompt(game story.Game, narrative string) string {
	prompt := fmt.Sprintf("A %s scene depicting: %s. High quality digital art, interactive fiction illustration.",
		StyleFor(game.Genre), excerpt(narrative, turnExcerptLimit))
	if game.PrimaryColor != "" {
		prompt += fmt.Sprintf(" Color accent %s.", game.PrimaryColor)
	}
	return prompt
}

// CoverPrompt derives the prompt for a game's catalog cover image.
func CoverPrompt(game story.Game) string {
	return fmt.Sprintf("A %s scene representing %q. %s. High quality digital art, game cover art style, professional illustration.",
		StyleFor(game.Genre), game.Title, excerpt(game.Description, coverExcerptLimit))
}

// excerpt bounds text to limit characters without splitting a multi-byte rune.
func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
