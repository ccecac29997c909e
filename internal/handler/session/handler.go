package session

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	sessionservice "github.com/nvwa-games/storycade/internal/service/session"
	"github.com/nvwa-games/storycade/pkg/utils"
)

// Handler 会话签发的HTTP处理器
type Handler struct {
	sessions *sessionservice.Service
}

// New 创建会话处理器
func New(sessions *sessionservice.Service) *Handler {
	return &Handler{sessions: sessions}
}

// RegisterRoutes 注册会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/session/new", h.handleNewSession)
}

// handleNewSession issues a fresh session id. The envelope shape
// {success, data:{sessionId}} is a published client contract; keep it stable.
func (h *Handler) handleNewSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Create(r.Context())
	if err != nil {
		log.Printf("[session] creation failed: %v", err)
		utils.RespondJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "failed to create session",
		})
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]string{
			"sessionId": session.SessionID,
		},
	})
}
