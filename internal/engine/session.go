package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/nvwa-games/storycade/internal/imagecache"
	"github.com/nvwa-games/storycade/internal/model/story"
	"github.com/nvwa-games/storycade/internal/transcript"
)

// State is the session controller's lifecycle phase.
type State string

const (
	StateIdle         State = "idle"
	StateStarting     State = "starting"
	StatePlaying      State = "playing"
	StateAwaitingTurn State = "awaiting_turn"
	StateError        State = "error"
)

var (
	ErrAlreadyStarted  = errors.New("session already started")
	ErrNotPlaying      = errors.New("session is not accepting input")
	ErrTurnInFlight    = errors.New("a turn is already in flight")
	ErrEmptyInput      = errors.New("input is empty")
	ErrTurnInterrupted = errors.New("turn stream ended without an end frame")
)

// Backend is the set of external collaborators the engine consumes: session
// issuance, the two turn-stream endpoints, and image generation. The arcade
// apiclient implements it over HTTP.
type Backend interface {
	NewSession(ctx context.Context) (string, error)
	StartGame(ctx context.Context, slug, sessionID string) (io.ReadCloser, error)
	SendTurn(ctx context.Context, sessionID, gameID, message string) (io.ReadCloser, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// Controller owns the play-session state machine and funnels every transcript
// mutation through itself, so the store needs no external locking discipline
// beyond its own.
type Controller struct {
	backend Backend
	store   *transcript.Store
	images  *imagecache.Cache
	game    story.Game

	mu        sync.Mutex
	state     State
	sessionID string

	imageTasks sync.WaitGroup
}

// NewController builds an idle controller for one game. The image cache is
// explicitly owned by the caller and may be shared across controllers.
func NewController(backend Backend, store *transcript.Store, images *imagecache.Cache, game story.Game) *Controller {
	return &Controller{
		backend: backend,
		store:   store,
		images:  images,
		game:    game,
		state:   StateIdle,
	}
}

// State returns the controller's current lifecycle phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SessionID returns the identifier issued at start, or "" before then.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Transcript returns a renderable snapshot of the session's message log.
func (c *Controller) Transcript() []story.Message {
	return c.store.Messages()
}

// Start requests a session id and consumes the opening turn. The controller
// only reaches StatePlaying once the opening turn's end frame has been
// processed, so a stream that fails immediately never exits the loading
// phase. Session-creation failure is fatal; no retry is attempted.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.state = StateStarting
	c.mu.Unlock()

	sessionID, err := c.backend.NewSession(ctx)
	if err != nil {
		c.setState(StateError)
		return fmt.Errorf("create session: %w", err)
	}

	c.mu.Lock()
	c.sessionID = sessionID
	c.mu.Unlock()

	body, err := c.backend.StartGame(ctx, c.game.Slug, sessionID)
	if err != nil {
		c.setState(StateError)
		return fmt.Errorf("start game: %w", err)
	}

	msgID, err := c.consumeTurn(body)
	if err != nil {
		c.setState(StateError)
		return fmt.Errorf("opening turn: %w", err)
	}

	c.setState(StatePlaying)
	c.queueIllustration(msgID)
	log.Printf("[engine] session=%s game=%s started", sessionID, c.game.Slug)
	return nil
}

// Send submits player input as an optimistic user message and consumes the
// resulting turn. Only one turn may be in flight: a second submission while
// awaiting a response is refused with ErrTurnInFlight.
//
// On a transport failure the optimistic user message is rolled back and the
// controller returns to StatePlaying, so the transcript never shows a
// permanently unanswered prompt and input is never left disabled.
func (c *Controller) Send(ctx context.Context, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return ErrEmptyInput
	}

	c.mu.Lock()
	switch c.state {
	case StateAwaitingTurn:
		c.mu.Unlock()
		return ErrTurnInFlight
	case StatePlaying:
		c.state = StateAwaitingTurn
		c.mu.Unlock()
	default:
		c.mu.Unlock()
		return ErrNotPlaying
	}

	userID := c.store.Append(story.Message{
		SessionID: c.SessionID(),
		GameID:    c.game.ID,
		Role:      story.RoleUser,
		Content:   input,
	})

	body, err := c.backend.SendTurn(ctx, c.SessionID(), c.game.ID, input)
	if err != nil {
		c.store.Remove(userID)
		c.setState(StatePlaying)
		return fmt.Errorf("send turn: %w", err)
	}

	msgID, err := c.consumeTurn(body)
	if err != nil {
		c.store.Remove(userID)
		c.setState(StatePlaying)
		return fmt.Errorf("turn stream: %w", err)
	}

	c.setState(StatePlaying)
	c.queueIllustration(msgID)
	return nil
}

// consumeTurn decodes frames in strict arrival order and folds them into the
// transcript. A stream that breaks or ends without an end frame leaves the
// in-progress message in place (it simply stops growing) and reports the
// exchange as failed.
func (c *Controller) consumeTurn(body io.ReadCloser) (string, error) {
	defer body.Close()

	dec := NewDecoder(body)
	acc := newTurnAccumulator(c.store, c.SessionID(), c.game.ID)

	for {
		frame, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		acc.Apply(frame)
	}

	if !acc.Ended() {
		return "", ErrTurnInterrupted
	}
	return acc.MessageID(), nil
}

// queueIllustration kicks off image generation for a finalized turn. It runs
// strictly after narrative finalization and is deliberately not awaited: the
// next user input is accepted before the image resolves. A failed generation
// only clears the loading flag; it never surfaces as a turn failure.
func (c *Controller) queueIllustration(msgID string) {
	if msgID == "" {
		return
	}
	msg, ok := c.store.Get(msgID)
	if !ok || msg.Content == "" {
		return
	}

	prompt := imagecache.TurnPrompt(c.game, msg.Content)
	c.store.SetImageGenerating(msgID, true)

	c.imageTasks.Add(1)
	go func() {
		defer c.imageTasks.Done()

		// Detached from the turn's context: the caller returning must not
		// cancel a generation already underway.
		imageURL, err := c.images.FetchAndCache(context.Background(), prompt, c.backend.GenerateImage)
		if err != nil || imageURL == "" {
			if err != nil {
				log.Printf("[engine] illustration failed for message=%s: %v", msgID, err)
			}
			c.store.SetImageGenerating(msgID, false)
			return
		}
		c.store.SetNarrativeImage(msgID, imageURL)
	}()
}

// WaitForIllustrations blocks until all queued image tasks have settled.
// Intended for tests and for graceful CLI shutdown.
func (c *Controller) WaitForIllustrations() {
	c.imageTasks.Wait()
}

func (c *Controller) setState(next State) {
	c.mu.Lock()
	c.state = next
	c.mu.Unlock()
}
