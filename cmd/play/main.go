// Command play is a terminal front-end for the session engine: it starts a
// game against an arcade backend, renders the transcript and numbered
// choices, and submits whatever the player types.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/nvwa-games/storycade/internal/apiclient"
	"github.com/nvwa-games/storycade/internal/config"
	"github.com/nvwa-games/storycade/internal/engine"
	"github.com/nvwa-games/storycade/internal/imagecache"
	"github.com/nvwa-games/storycade/internal/model/story"
	"github.com/nvwa-games/storycade/internal/transcript"
)

func main() {
	log.SetFlags(log.LstdFlags)

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	server := flag.String("server", cfg.Engine.ServerURL, "arcade backend base URL")
	slug := flag.String("game", "", "slug of the game to play")
	flag.Parse()

	if *slug == "" {
		flag.Usage()
		log.Fatal("please pick a game with -game=<slug>")
	}

	ctx := context.Background()
	client := apiclient.New(*server)

	game, err := client.GetGame(ctx, *slug)
	if err != nil {
		log.Fatalf("failed to fetch game %q: %v", *slug, err)
	}

	store := transcript.New()
	images := imagecache.New(cfg.Engine.ImageCacheLen, cfg.Engine.ImageCacheTTL)
	ctrl := engine.NewController(client, store, images, game)

	fmt.Printf("== %s ==\n%s\n\n", game.Title, game.Tagline)
	fmt.Println("starting...")

	if err := ctrl.Start(ctx); err != nil {
		log.Fatalf("failed to start game: %v", err)
	}

	rendered := render(ctrl, 0)

	stdin := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !stdin.Scan() {
			break
		}

		input := strings.TrimSpace(stdin.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			break
		}

		// A bare number picks the matching choice from the last turn.
		if picked, ok := resolveOption(ctrl.Transcript(), input); ok {
			input = picked
		}

		if err := ctrl.Send(ctx, input); err != nil {
			if errors.Is(err, engine.ErrTurnInFlight) {
				fmt.Println("(still waiting for the previous turn)")
				continue
			}
			fmt.Printf("(turn failed: %v — try again)\n", err)
			continue
		}

		rendered = render(ctrl, rendered)
	}

	ctrl.WaitForIllustrations()
}

// render prints transcript entries beyond the already-printed count and
// returns the new count.
func render(ctrl *engine.Controller, printed int) int {
	messages := ctrl.Transcript()
	for _, msg := range messages[printed:] {
		switch msg.Role {
		case story.RoleUser:
			fmt.Printf("\n  you: %s\n", msg.Content)
		case story.RoleAssistant:
			fmt.Printf("\n%s\n", msg.Content)
			for _, opt := range msg.Options {
				fmt.Printf("  %d. %s\n", opt.ID, opt.Text)
			}
			if msg.IsGeneratingImage {
				fmt.Println("  (illustration pending)")
			} else if msg.NarrativeImage != "" {
				fmt.Printf("  (illustration: %s)\n", shorten(msg.NarrativeImage))
			}
		}
	}
	return len(messages)
}

// resolveOption maps a typed ordinal to the option text of the most recent
// assistant message.
func resolveOption(messages []story.Message, input string) (string, bool) {
	n, err := strconv.Atoi(input)
	if err != nil {
		return "", false
	}

	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Role != story.RoleAssistant {
			continue
		}
		for _, opt := range msg.Options {
			if opt.ID == n {
				return opt.Text, true
			}
		}
		return "", false
	}
	return "", false
}

// shorten keeps huge data URLs out of the terminal.
func shorten(imageURL string) string {
	const max = 64
	if len(imageURL) <= max {
		return imageURL
	}
	return imageURL[:max] + "..."
}
