package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	"github.com/medbookai/medbook/cmd/mainconfig"
	"github.com/medbookai/medbook/internal/api/router"
	"github.com/medbookai/medbook/internal/chat"
	appconfig "github.com/medbookai/medbook/internal/config"
	"github.com/medbookai/medbook/internal/http/handlers"
	"github.com/medbookai/medbook/internal/notify"
	"github.com/medbookai/medbook/internal/observability/metrics"
	"github.com/medbookai/medbook/internal/rag"
	"github.com/medbookai/medbook/internal/session"
	"github.com/medbookai/medbook/internal/store"
	"github.com/medbookai/medbook/internal/webchat"
	"github.com/medbookai/medbook/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting medbook API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
	)

	ctx := context.Background()

	// Persistence: Postgres when configured, in-memory otherwise.
	var (
		repo   store.Repository
		pinger handlers.Pinger
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create postgres pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := pool.Ping(pingCtx); err != nil {
			cancel()
			logger.Error("failed to reach postgres", "error", err)
			os.Exit(1)
		}
		cancel()

		repo = store.NewPostgresRepository(pool)
		pinger = pool
		logger.Info("postgres repository ready")
	} else {
		repo = store.NewMemoryRepository()
		logger.Warn("DATABASE_URL not set, using in-memory repository")
	}

	// AWS config is only needed for Bedrock, SES, or the S3 knowledge bucket.
	var awsCfg aws.Config
	needsAWS := cfg.LLMProvider == "bedrock" || cfg.EmailProvider == "ses" || cfg.KnowledgeBucket != ""
	if needsAWS {
		var err error
		awsCfg, err = mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
	}

	// Redis backs the chat transcript archive; the server degrades to
	// transcript-less operation when it is unreachable.
	var transcripts *session.TranscriptStore
	if cfg.RedisAddr != "" {
		redisOpts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(redisOpts)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, transcripts disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			transcripts = session.NewTranscriptStore(redisClient, cfg.TranscriptTTL)
		}
		cancel()
	}

	// LLM provider.
	var (
		llm   chat.LLMClient
		model string
	)
	switch cfg.LLMProvider {
	case "groq":
		client, err := chat.NewOpenAILLMClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel)
		if err != nil {
			logger.Error("failed to create groq client", "error", err)
			os.Exit(1)
		}
		llm = client
		model = cfg.GroqModel
	case "gemini":
		client, err := chat.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		llm = client
		model = cfg.GeminiModel
	case "bedrock":
		if cfg.BedrockModelID == "" {
			logger.Error("BEDROCK_MODEL_ID is required when LLM_PROVIDER=bedrock")
			os.Exit(1)
		}
		llm = chat.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
		model = cfg.BedrockModelID
	default:
		llm = &chat.StubLLMClient{}
		logger.Warn("using stub LLM client", "provider", cfg.LLMProvider)
	}

	// Retrieval: embeddings ride the same OpenAI-compatible credentials as the
	// chat provider, so the knowledge store is only available with a Groq key.
	var (
		retriever chat.Retriever
		knowledge handlers.KnowledgeStore
	)
	if cfg.GroqAPIKey != "" {
		embedderCfg := openai.DefaultConfig(cfg.GroqAPIKey)
		if cfg.GroqBaseURL != "" {
			embedderCfg.BaseURL = cfg.GroqBaseURL
		}
		embedder := rag.NewOpenAIEmbedder(openai.NewClientWithConfig(embedderCfg), cfg.EmbeddingModel)
		knowledgeStore := rag.NewMemoryStore(embedder, logger, rag.Options{
			ChunkSize:    cfg.RAGChunkSize,
			ChunkOverlap: cfg.RAGChunkOverlap,
			TopK:         cfg.RAGTopK,
			MinRelevance: cfg.RAGMinRelevance,
		})
		retriever = knowledgeStore
		knowledge = knowledgeStore

		if cfg.KnowledgeBucket != "" {
			loader := rag.NewLoader(s3.NewFromConfig(awsCfg), cfg.KnowledgeBucket, cfg.KnowledgePrefix, logger)
			if docs, err := loader.Load(ctx); err != nil {
				logger.Warn("failed to load knowledge bucket", "error", err)
			} else if len(docs) > 0 {
				if err := knowledgeStore.AddDocuments(ctx, docs); err != nil {
					logger.Warn("failed to ingest knowledge documents", "error", err)
				}
			}
		}
	} else {
		logger.Warn("no embedding credentials, retrieval disabled")
	}

	// Email notifications.
	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		sender = notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	case "ses":
		sender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
	}
	notifier := notify.NewService(sender, notify.ClinicInfo{
		Name:    cfg.ClinicName,
		Phone:   cfg.ClinicPhone,
		Address: cfg.ClinicAddress,
		AppName: cfg.AppName,
	}, logger)

	// Chat service and per-session state.
	flowStore := store.NewFlowStore(repo)
	directory := store.NewBookingDirectory(repo)

	svc := chat.NewService(llm, retriever, directory, logger, chat.Options{
		AppName:      cfg.AppName,
		ClinicName:   cfg.ClinicName,
		ClinicPhone:  cfg.ClinicPhone,
		Model:        model,
		MaxTokens:    int32(cfg.LLMMaxTokens),
		Temperature:  float32(cfg.LLMTemperature),
		ContextChars: cfg.LLMContextChars,
	})

	manager := session.NewManager(func() *chat.Conversation {
		return chat.NewConversation(flowStore, notifier, logger)
	}, logger)
	limiter := session.NewLimiter(session.LimiterConfig{
		MessagesPerMinute: cfg.MessagesPerMinute,
		BookingsPerHour:   cfg.BookingsPerHour,
		MessageCooldown:   cfg.MessageCooldown,
	})

	chatMetrics := metrics.NewChatMetrics(nil)

	routerCfg := &router.Config{
		Logger:          logger,
		ChatHandler:     handlers.NewChatHandler(manager, svc, limiter, transcripts, chatMetrics, logger),
		BookingsHandler: handlers.NewBookingsHandler(repo, logger),
		AdminHandler:    handlers.NewAdminHandler(repo, knowledge, logger),
		HealthHandler:   handlers.NewHealthHandler(cfg.Env, pinger),
		WebchatHandler:  webchat.NewHandler(manager, svc, limiter, transcripts, logger),
		MetricsHandler:  promhttp.Handler(),

		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: float64(cfg.HTTPRateLimit) / 60.0,
		RateLimitBurst:     cfg.HTTPRateBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
