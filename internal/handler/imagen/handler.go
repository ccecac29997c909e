package imagen

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	imagenservice "github.com/nvwa-games/storycade/internal/service/imagen"
	"github.com/nvwa-games/storycade/pkg/utils"
)

// Handler 图片生成的HTTP处理器
type Handler struct {
	imagen *imagenservice.Service
}

// New 创建图片生成处理器
func New(imagen *imagenservice.Service) *Handler {
	return &Handler{imagen: imagen}
}

// RegisterRoutes 注册图片生成路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/images/generate", h.handleGenerate)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Prompt string `json:"prompt"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Prompt == "" {
		utils.RespondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	if !h.imagen.Enabled() {
		utils.RespondError(w, http.StatusServiceUnavailable, "image generation unavailable")
		return
	}

	imageURL, err := h.imagen.Generate(r.Context(), payload.Prompt)
	if err != nil {
		log.Printf("[imagen] generation failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "image generation failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"imageUrl": imageURL})
}
