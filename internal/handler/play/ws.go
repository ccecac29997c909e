package play

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/nvwa-games/storycade/internal/model/story"
)

// WSHandler serves the same turn frames over a websocket, for clients that
// prefer a socket to SSE.
type WSHandler struct {
	play     *Handler
	upgrader websocket.Upgrader
}

// NewWSHandler 创建WebSocket回合流处理器
func NewWSHandler(play *Handler) *WSHandler {
	return &WSHandler{
		play: play,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *WSHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/play/{sessionID}", h.handlePlay)
}

type wsInbound struct {
	Message string `json:"message"`
}

// handlePlay streams the opening turn on connect, then one turn per inbound
// player message until the peer goes away.
func (h *WSHandler) handlePlay(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	slug := r.URL.Query().Get("game")

	game, ok := h.play.games.FindBySlug(slug)
	if !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	ctx := r.Context()
	if _, err := h.play.sessions.Get(ctx, sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err := h.play.sessions.BindGame(ctx, sessionID, game.ID); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] play connection open session=%s game=%s", sessionID, game.Slug)

	opening, err := h.play.narrator.StreamOpening(ctx, game)
	if err != nil {
		log.Printf("[ws] opening stream failed: %v", err)
		return
	}
	h.streamTurn(ctx, conn, game, sessionID, opening)

	for {
		var inbound wsInbound
		if err := conn.ReadJSON(&inbound); err != nil {
			log.Printf("[ws] play connection closed session=%s: %v", sessionID, err)
			return
		}

		message := strings.TrimSpace(inbound.Message)
		if message == "" {
			continue
		}

		history, err := h.play.sessions.History(ctx, sessionID)
		if err != nil {
			log.Printf("[ws] history lookup failed: %v", err)
			return
		}
		if err := h.play.sessions.AppendHistory(ctx, story.Message{
			SessionID: sessionID,
			GameID:    game.ID,
			Role:      story.RoleUser,
			Content:   message,
		}); err != nil {
			log.Printf("[ws] failed to record user message: %v", err)
		}

		stream, err := h.play.narrator.StreamTurn(ctx, game, history, message)
		if err != nil {
			log.Printf("[ws] turn stream failed: %v", err)
			return
		}
		h.streamTurn(ctx, conn, game, sessionID, stream)
	}
}

// streamTurn mirrors the SSE turn flow with websocket JSON messages.
func (h *WSHandler) streamTurn(ctx context.Context, conn *websocket.Conn, game story.Game, sessionID string, stream *schema.StreamReader[*schema.Message]) {
	defer stream.Close()

	var text strings.Builder
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			log.Printf("[ws] narration interrupted session=%s: %v", sessionID, recvErr)
			return
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}

		text.WriteString(chunk.Content)
		if err := conn.WriteJSON(frame{Type: "content", Content: chunk.Content}); err != nil {
			log.Printf("[ws] write failed session=%s: %v", sessionID, err)
			return
		}
	}

	full := text.String()
	options := ExtractOptions(full)

	if err := conn.WriteJSON(frame{Type: "options", Options: options}); err != nil {
		log.Printf("[ws] write failed session=%s: %v", sessionID, err)
		return
	}
	if err := conn.WriteJSON(frame{Type: "end"}); err != nil {
		log.Printf("[ws] write failed session=%s: %v", sessionID, err)
		return
	}

	if err := h.play.sessions.AppendHistory(ctx, story.Message{
		SessionID: sessionID,
		GameID:    game.ID,
		Role:      story.RoleAssistant,
		Content:   full,
		Options:   options,
	}); err != nil {
		log.Printf("[ws] failed to record assistant message: %v", err)
	}
}
