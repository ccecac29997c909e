package story

// Game describes one playable title in the arcade catalog.
type Game struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	Tagline      string `json:"tagline"`
	Description  string `json:"description"`
	Genre        string `json:"genre"`
	Subgenre     string `json:"subgenre,omitempty"`
	PrimaryColor string `json:"primaryColor,omitempty"` // 十六进制主题色，用于配图的色彩倾向
	PromptModel  string `json:"promptModel,omitempty"`
	CoverImage   string `json:"coverImage,omitempty"`
}

// Seed provides the built-in catalog used until game ingestion lands.
func Seed() []Game {
	return []Game{
		{
			ID:           "g-hollow-lantern",
			Slug:         "the-hollow-lantern",
			Title:        "The Hollow Lantern",
			Tagline:      "Every light you carry casts a shadow that remembers you.",
			Description:  "An abandoned lighthouse keeps burning long after its keepers drowned. You arrive with one match, one name you cannot forget, and a tide that refuses to go out.",
			Genre:        "horror",
			Subgenre:     "gothic",
			PrimaryColor: "#8b5cf6",
		},
		{
			ID:           "g-static-orbit",
			Slug:         "static-orbit",
			Title:        "Static Orbit",
			Tagline:      "The station answers distress calls nobody sent.",
			Description:  "Relay station Kessler-9 has been silent for six years, yet its docking beacon just accepted your approach. The airlock remembers your crew code, and you have never been here before.",
			Genre:        "sci-fi",
			Subgenre:     "mystery",
			PrimaryColor: "#38bdf8",
		},
		{
			ID:           "g-thorn-market",
			Slug:         "the-thorn-market",
			Title:        "The Thorn Market",
			Tagline:      "Everything is for sale. The price is never money.",
			Description:  "Once a century the hedge opens and the fae set out their stalls. You carry your grandmother's debt ledger and a pocketful of borrowed years to trade it away.",
			Genre:        "fantasy",
			Subgenre:     "fairy-tale",
			PrimaryColor: "#34d399",
		},
	}
}
