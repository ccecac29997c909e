package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server   ServerConfig
	Narrator NarratorConfig
	Imagen   ImagenConfig
	Engine   EngineConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	narrator, err := loadNarratorConfig()
	if err != nil {
		return nil, err
	}

	engine, err := loadEngineConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		Narrator: narrator,
		Imagen:   loadImagenConfig(),
		Engine:   engine,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// NarratorConfig 描述叙事模型相关配置。
type NarratorConfig struct {
	APIKey         string
	AccessKey      string
	SecretKey      string
	Model          string
	BaseURL        string
	Region         string
	Temperature    *float64
	TopP           *float64
	MaxTokens      *int
	HistoryLimit   int
	StreamResponse bool
}

// Enabled 表示是否提供了必需的密钥。
func (c NarratorConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c NarratorConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("narrator credentials missing: provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadNarratorConfig() (NarratorConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return NarratorConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return NarratorConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return NarratorConfig{}, err
	}

	stream, err := parseBoolEnv("ARK_STREAM", true)
	if err != nil {
		return NarratorConfig{}, err
	}

	historyLimit := 10
	if override, err := parseOptionalIntEnv("NARRATOR_HISTORY_LIMIT"); err != nil {
		return NarratorConfig{}, err
	} else if override != nil && *override >= 1 {
		historyLimit = *override
	}

	return NarratorConfig{
		APIKey:         strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:      strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:      strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:          strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:        getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:         getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:    temperature,
		TopP:           topP,
		MaxTokens:      maxTokens,
		HistoryLimit:   historyLimit,
		StreamResponse: stream,
	}, nil
}

// ImagenConfig 描述图片生成服务相关配置。
type ImagenConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Width   int
	Height  int
	Enabled bool
}

func loadImagenConfig() ImagenConfig {
	apiKey := strings.TrimSpace(os.Getenv("VENICE_API_KEY"))
	return ImagenConfig{
		APIKey:  apiKey,
		BaseURL: getEnvOrDefault("VENICE_BASE_URL", "https://api.venice.ai/api/v1"),
		Model:   getEnvOrDefault("VENICE_MODEL", "fluently-xl"),
		Width:   1024,
		Height:  768,
		Enabled: apiKey != "",
	}
}

// EngineConfig 描述客户端引擎（cmd/play）相关配置。
type EngineConfig struct {
	ServerURL     string
	ImageCacheLen int
	ImageCacheTTL time.Duration
}

func loadEngineConfig() (EngineConfig, error) {
	cacheLen := 0
	if override, err := parseOptionalIntEnv("IMAGE_CACHE_SIZE"); err != nil {
		return EngineConfig{}, err
	} else if override != nil {
		cacheLen = *override
	}

	var cacheTTL time.Duration
	if raw := strings.TrimSpace(os.Getenv("IMAGE_CACHE_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return EngineConfig{}, fmt.Errorf("invalid IMAGE_CACHE_TTL value %q: %w", raw, err)
		}
		cacheTTL = ttl
	}

	return EngineConfig{
		ServerURL:     getEnvOrDefault("STORYCADE_SERVER_URL", "http://localhost:8080"),
		ImageCacheLen: cacheLen,
		ImageCacheTTL: cacheTTL,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
