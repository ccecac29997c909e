// Package apiclient is the HTTP client for the arcade backend: session
// issuance, the catalog, the two turn-stream endpoints, and image generation.
// It implements engine.Backend.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nvwa-games/storycade/internal/model/story"
)

var ErrSessionRefused = errors.New("server refused to create a session")

// Client talks to one arcade backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the given base URL, e.g. "http://localhost:8080".
// The underlying http.Client carries no global timeout because turn streams
// are long-lived; callers bound individual requests through their context.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// sessionEnvelope mirrors the /api/session/new response contract.
type sessionEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		SessionID string `json:"sessionId"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// NewSession asks the backend for a fresh session identifier. A success:false
// envelope or a network error is fatal to starting play.
func (c *Client) NewSession(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/session/new", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var envelope sessionEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("decode session response: %w", err)
	}
	if !envelope.Success || envelope.Data.SessionID == "" {
		if envelope.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrSessionRefused, envelope.Error)
		}
		return "", ErrSessionRefused
	}
	return envelope.Data.SessionID, nil
}

// GetGame fetches one catalog entry by slug.
func (c *Client) GetGame(ctx context.Context, slug string) (story.Game, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/games/"+slug, nil)
	if err != nil {
		return story.Game{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return story.Game{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return story.Game{}, fmt.Errorf("game %q: unexpected status %d", slug, resp.StatusCode)
	}

	var game story.Game
	if err := json.NewDecoder(resp.Body).Decode(&game); err != nil {
		return story.Game{}, fmt.Errorf("decode game: %w", err)
	}
	return game, nil
}

// StartGame opens the opening-turn stream. The caller owns the returned body
// and must close it; closing it aborts the stream.
func (c *Client) StartGame(ctx context.Context, slug, sessionID string) (io.ReadCloser, error) {
	return c.openStream(ctx, fmt.Sprintf("%s/api/games/%s/start", c.baseURL, slug), map[string]string{
		"sessionId": sessionID,
	})
}

// SendTurn opens a mid-game turn stream for the player's input.
func (c *Client) SendTurn(ctx context.Context, sessionID, gameID, message string) (io.ReadCloser, error) {
	return c.openStream(ctx, c.baseURL+"/api/games/chat", map[string]string{
		"sessionId": sessionID,
		"gameId":    gameID,
		"message":   message,
	})
}

// GenerateImage asks the backend to illustrate a prompt. Any non-success
// response is an error; the engine treats it as a recoverable, uncached miss.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/images/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image generation: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode image response: %w", err)
	}
	return result.ImageURL, nil
}

func (c *Client) openStream(ctx context.Context, url string, body map[string]string) (io.ReadCloser, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("turn stream: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
