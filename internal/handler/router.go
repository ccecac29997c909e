package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	gamehandler "github.com/nvwa-games/storycade/internal/handler/game"
	imagenhandler "github.com/nvwa-games/storycade/internal/handler/imagen"
	playhandler "github.com/nvwa-games/storycade/internal/handler/play"
	sessionhandler "github.com/nvwa-games/storycade/internal/handler/session"
	middlewarePkg "github.com/nvwa-games/storycade/internal/middleware"
	"github.com/nvwa-games/storycade/internal/model/story"
	imagenservice "github.com/nvwa-games/storycade/internal/service/imagen"
	"github.com/nvwa-games/storycade/internal/service/narrator"
	sessionservice "github.com/nvwa-games/storycade/internal/service/session"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(games story.Store, sessions *sessionservice.Service, n narrator.Narrator, imagen *imagenservice.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	gameHandler := gamehandler.New(games)
	sessionHandler := sessionhandler.New(sessions)
	playHandler := playhandler.New(n, sessions, games)
	wsHandler := playhandler.NewWSHandler(playHandler)
	imagenHandler := imagenhandler.New(imagen)

	r.Route("/api", func(api chi.Router) {
		gameHandler.RegisterRoutes(api)
		sessionHandler.RegisterRoutes(api)
		playHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
		imagenHandler.RegisterRoutes(api)
	})

	return r
}
