// Package imagen calls the Venice image-generation API on behalf of play
// clients. The engine never talks to the image model directly and never sees
// API credentials; this service is the only holder of the key.
package imagen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"
)

var (
	ErrDisabled = errors.New("image generation is not configured")
	ErrNoImage  = errors.New("image API returned no image")
)

// Config mirrors the VENICE_* settings needed to call the API.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Width   int
	Height  int
}

// Service issues generation calls against the configured API.
type Service struct {
	cfg  Config
	http *http.Client
}

// NewService builds the image service. A missing API key leaves the service
// constructed but disabled; generation then fails softly rather than at boot.
func NewService(cfg Config) *Service {
	return &Service{
		cfg:  cfg,
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

// Enabled reports whether an API key was provided.
func (s *Service) Enabled() bool {
	return s.cfg.APIKey != ""
}

type generationRequest struct {
	Prompt    string `json:"prompt"`
	Model     string `json:"model"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	NumImages int    `json:"num_images"`
}

type generationResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// Generate renders one image for the prompt and returns it as a PNG data URL.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}

	payload, err := json.Marshal(generationRequest{
		Prompt:    prompt,
		Model:     s.cfg.Model,
		Width:     s.cfg.Width,
		Height:    s.cfg.Height,
		NumImages: 1,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/images/generations", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image API status %d", resp.StatusCode)
	}

	var result generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode image response: %w", err)
	}
	if len(result.Data) == 0 || result.Data[0].B64JSON == "" {
		return "", ErrNoImage
	}

	log.Printf("[imagen] generated image, prompt length=%d", len(prompt))
	return "data:image/png;base64," + result.Data[0].B64JSON, nil
}
