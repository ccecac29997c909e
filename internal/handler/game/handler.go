package game

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nvwa-games/storycade/internal/model/story"
	"github.com/nvwa-games/storycade/pkg/utils"
)

// Handler 游戏目录的HTTP处理器
type Handler struct {
	games story.Store
}

// New 创建游戏目录处理器
func New(games story.Store) *Handler {
	return &Handler{games: games}
}

// RegisterRoutes 注册目录相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/games", h.handleListGames)
	r.Get("/games/{slug}", h.handleGetGame)
}

// handleListGames 列出所有游戏
func (h *Handler) handleListGames(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.games.List())
}

// handleGetGame 按 slug 查询单个游戏
func (h *Handler) handleGetGame(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	game, ok := h.games.FindBySlug(slug)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "game not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, game)
}
