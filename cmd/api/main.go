package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nvwa-games/storycade/internal/config"
	"github.com/nvwa-games/storycade/internal/handler"
	"github.com/nvwa-games/storycade/internal/model/story"
	imagenservice "github.com/nvwa-games/storycade/internal/service/imagen"
	"github.com/nvwa-games/storycade/internal/service/narrator"
	sessionservice "github.com/nvwa-games/storycade/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	gameStore := story.NewMemoryStore(story.Seed())
	sessions := sessionservice.NewService()

	// 叙事模型不可用时退回到脚本化叙事，保证服务可启动可联调。
	var storyteller narrator.Narrator
	if cfg.Narrator.Enabled() {
		svc, err := narrator.NewService(ctx, cfg.Narrator)
		if err != nil {
			log.Printf("warning: failed to initialize narrator: %v", err)
			log.Println("falling back to the scripted narrator")
			storyteller = narrator.NewScripted()
		} else {
			log.Println("narrator service initialized successfully")
			storyteller = svc
		}
	} else {
		log.Println("Ark 凭证未配置，使用脚本化叙事")
		storyteller = narrator.NewScripted()
	}

	imagen := imagenservice.NewService(imagenservice.Config{
		APIKey:  cfg.Imagen.APIKey,
		BaseURL: cfg.Imagen.BaseURL,
		Model:   cfg.Imagen.Model,
		Width:   cfg.Imagen.Width,
		Height:  cfg.Imagen.Height,
	})
	if imagen.Enabled() {
		log.Println("image generation service initialized successfully")
	} else {
		log.Println("VENICE_API_KEY 未配置，跳过图片生成功能")
	}

	router := handler.NewRouter(gameStore, sessions, storyteller, imagen)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Storycade backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
