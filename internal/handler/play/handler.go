// Package play streams game turns to clients as `data: <json>` frames, over
// SSE or a websocket. It is the producing side of the protocol the session
// engine consumes.
package play

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"

	"github.com/nvwa-games/storycade/internal/model/story"
	"github.com/nvwa-games/storycade/internal/service/narrator"
	sessionservice "github.com/nvwa-games/storycade/internal/service/session"
	"github.com/nvwa-games/storycade/pkg/utils"
)

// frame is the wire payload for one stream event.
type frame struct {
	Type    string                 `json:"type"`
	Content string                 `json:"content,omitempty"`
	Options []story.GameplayOption `json:"options,omitempty"`
}

// Handler 游戏回合流的HTTP处理器
type Handler struct {
	narrator narrator.Narrator
	sessions *sessionservice.Service
	games    story.Store
}

// New 创建回合流处理器
func New(n narrator.Narrator, sessions *sessionservice.Service, games story.Store) *Handler {
	return &Handler{narrator: n, sessions: sessions, games: games}
}

// RegisterRoutes 注册回合流路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/games/{slug}/start", h.handleStart)
	r.Post("/games/chat", h.handleChat)
}

// handleStart opens a session's first turn: binds the session to the game and
// streams the opening scene.
func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var payload struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	game, ok := h.games.FindBySlug(slug)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "game not found")
		return
	}

	ctx := r.Context()
	if _, err := h.sessions.Get(ctx, payload.SessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	if err := h.sessions.BindGame(ctx, payload.SessionID, game.ID); err != nil {
		utils.RespondError(w, http.StatusConflict, err.Error())
		return
	}

	stream, err := h.narrator.StreamOpening(ctx, game)
	if err != nil {
		log.Printf("[play] opening stream failed for game=%s: %v", game.Slug, err)
		utils.RespondError(w, http.StatusInternalServerError, "narration failed")
		return
	}

	h.streamTurn(ctx, w, game, payload.SessionID, stream)
}

// handleChat streams the turn responding to a player message.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		GameID    string `json:"gameId"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	payload.Message = strings.TrimSpace(payload.Message)
	if payload.SessionID == "" || payload.Message == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId and message are required")
		return
	}

	ctx := r.Context()
	session, err := h.sessions.Get(ctx, payload.SessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	gameID := payload.GameID
	if gameID == "" {
		gameID = session.GameID
	}
	game, ok := h.games.FindByID(gameID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "game not found")
		return
	}

	history, err := h.sessions.History(ctx, payload.SessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	if err := h.sessions.AppendHistory(ctx, story.Message{
		SessionID: payload.SessionID,
		GameID:    game.ID,
		Role:      story.RoleUser,
		Content:   payload.Message,
	}); err != nil {
		log.Printf("[play] failed to record user message: %v", err)
	}

	stream, err := h.narrator.StreamTurn(ctx, game, history, payload.Message)
	if err != nil {
		log.Printf("[play] turn stream failed for game=%s: %v", game.Slug, err)
		utils.RespondError(w, http.StatusInternalServerError, "narration failed")
		return
	}

	h.streamTurn(ctx, w, game, payload.SessionID, stream)
}

// streamTurn forwards narration deltas as content frames, then closes the
// turn with the extracted options frame and the end frame. A narration error
// mid-stream drops the connection without an end frame; the client reports
// the turn as failed.
func (h *Handler) streamTurn(ctx context.Context, w http.ResponseWriter, game story.Game, sessionID string, stream *schema.StreamReader[*schema.Message]) {
	defer stream.Close()

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	utils.SetupSSEHeaders(w)

	var text strings.Builder
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			log.Printf("[play] narration interrupted for session=%s: %v", sessionID, recvErr)
			return
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}

		text.WriteString(chunk.Content)
		utils.SendSSEChunk(w, flusher, frame{Type: "content", Content: chunk.Content})
	}

	full := text.String()
	options := ExtractOptions(full)

	utils.SendSSEChunk(w, flusher, frame{Type: "options", Options: options})
	utils.SendSSEChunk(w, flusher, frame{Type: "end"})

	if err := h.sessions.AppendHistory(ctx, story.Message{
		SessionID: sessionID,
		GameID:    game.ID,
		Role:      story.RoleAssistant,
		Content:   full,
		Options:   options,
	}); err != nil {
		log.Printf("[play] failed to record assistant message: %v", err)
	}

	log.Printf("[play] completed turn for session=%s game=%s options=%d", sessionID, game.Slug, len(options))
}

// optionLine matches one enumerated choice, e.g. "2. Pull the lever".
var optionLine = regexp.MustCompile(`^\s*(\d+)[.)]\s+(.+)$`)

// ExtractOptions parses the trailing numbered list out of a finished scene.
// The ordinals from the text become the option ids, preserving their order.
func ExtractOptions(text string) []story.GameplayOption {
	var options []story.GameplayOption
	for _, line := range strings.Split(text, "\n") {
		m := optionLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		options = append(options, story.GameplayOption{ID: id, Text: strings.TrimSpace(m[2])})
	}
	return options
}
