package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/devfikr/subpolish/config"
	"github.com/devfikr/subpolish/internal/api/handlers"
	"github.com/devfikr/subpolish/internal/api/routes"
	"github.com/devfikr/subpolish/internal/logger"
	"github.com/devfikr/subpolish/internal/providers/llm"
	"github.com/devfikr/subpolish/internal/ratelimit"
	"github.com/devfikr/subpolish/internal/services"
)

func main() {
	_ = godotenv.Load()
	l := logger.New()

	// Rate-limit store: Redis when configured, in-process map otherwise.
	var store ratelimit.Store
	if config.RedisConfigured() {
		if err := config.InitRedis(); err != nil {
			log.Fatalf("Redis init error: %v", err)
		}
		l.Info("redis rate-limit store connected")
		store = ratelimit.NewRedisStore(config.RedisClient)
	} else {
		mem := ratelimit.NewMemoryStore(5 * time.Minute)
		defer mem.Close()
		store = mem
	}
	limiter := ratelimit.New(store,
		envDuration("RATE_LIMIT_WINDOW", ratelimit.DefaultWindow),
		envInt("RATE_LIMIT_MAX", ratelimit.DefaultMaxPerWindow))

	factory, closeProviders, err := buildProviderFactory(l)
	if err != nil {
		log.Fatalf("LLM provider init error: %v", err)
	}
	defer closeProviders()

	convertSvc := services.NewConvertService(l)
	optimizeSvc := services.NewOptimizeService(factory, l)

	r := gin.Default()
	routes.RegisterRoutes(r, routes.Deps{
		Subtitle: handlers.NewSubtitleHandler(convertSvc, l),
		Optimize: handlers.NewOptimizeHandler(optimizeSvc),
		Limiter:  limiter,
		Log:      l,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

var errNoProvider = errors.New("no API key in request and no server-side provider configured")

// buildProviderFactory wires the optimizer capability. Requests carrying
// their own API key always get a per-request Gemini client; when
// GCP_PROJECT_ID is set, keyless requests fall back to a shared Vertex
// client running on server credentials.
func buildProviderFactory(l *logrus.Logger) (services.ProviderFactory, func(), error) {
	defaultModel := os.Getenv("GEMINI_MODEL")

	var shared llm.Provider
	if project := os.Getenv("GCP_PROJECT_ID"); project != "" {
		location := os.Getenv("GCP_LOCATION")
		if location == "" {
			location = "us-central1"
		}
		v, err := llm.NewVertexGemini(context.Background(), project, location, defaultModel)
		if err != nil {
			return nil, nil, err
		}
		shared = v
		l.WithField("project", project).Info("vertex fallback provider ready")
	}

	factory := func(_ context.Context, apiKey, model string) (llm.Provider, error) {
		if model == "" {
			model = defaultModel
		}
		if apiKey != "" {
			return llm.NewGeminiAPI(apiKey, model, ""), nil
		}
		if shared != nil {
			return keepOpen{shared}, nil
		}
		return nil, errNoProvider
	}
	closeAll := func() {
		if shared != nil {
			_ = shared.Close()
		}
	}
	return factory, closeAll, nil
}

// keepOpen shields the shared Vertex client from per-request Close calls.
type keepOpen struct{ llm.Provider }

func (keepOpen) Close() error { return nil }

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
