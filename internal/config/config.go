package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	// Clinic identity rendered into prompts and confirmation emails
	ClinicName    string
	ClinicPhone   string
	ClinicAddress string
	AppName       string

	// LLM provider selection: groq | gemini | bedrock | stub
	LLMProvider     string
	GroqAPIKey      string
	GroqBaseURL     string
	GroqModel       string
	GeminiAPIKey    string
	GeminiModel     string
	BedrockModelID  string
	LLMMaxTokens    int
	LLMTemperature  float64
	LLMContextChars int

	// Email provider selection: sendgrid | ses | stub
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	KnowledgeBucket     string
	KnowledgePrefix     string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	TranscriptTTL time.Duration

	AdminJWTSecret     string
	CORSAllowedOrigins []string

	// Per-session conversational limits
	MessagesPerMinute int
	BookingsPerHour   int
	MessageCooldown   time.Duration

	// Per-IP HTTP limits
	HTTPRateLimit int
	HTTPRateBurst int

	// Retrieval tuning
	RAGChunkSize    int
	RAGChunkOverlap int
	RAGTopK         int
	RAGMinRelevance float64
	EmbeddingModel  string

	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables. A local .env file is
// applied first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		ClinicName:    getEnv("CLINIC_NAME", "HealthFirst Medical Center"),
		ClinicPhone:   getEnv("CLINIC_PHONE", "+1-555-0123"),
		ClinicAddress: getEnv("CLINIC_ADDRESS", "123 Health Street, Medical City"),
		AppName:       getEnv("APP_NAME", "MedBook AI"),

		LLMProvider:     strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "groq"))),
		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:     getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:       getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		BedrockModelID:  getEnv("BEDROCK_MODEL_ID", ""),
		LLMMaxTokens:    getEnvAsInt("LLM_MAX_TOKENS", 1024),
		LLMTemperature:  getEnvAsFloat("LLM_TEMPERATURE", 0.7),
		LLMContextChars: getEnvAsInt("LLM_CONTEXT_CHARS", 3000),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "MedBook AI"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "MedBook AI"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		KnowledgeBucket:     getEnv("KNOWLEDGE_BUCKET", ""),
		KnowledgePrefix:     getEnv("KNOWLEDGE_PREFIX", "knowledge/"),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		TranscriptTTL: getEnvAsDuration("TRANSCRIPT_TTL", 72*time.Hour),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),

		MessagesPerMinute: getEnvAsInt("MESSAGES_PER_MINUTE", 30),
		BookingsPerHour:   getEnvAsInt("BOOKINGS_PER_HOUR", 5),
		MessageCooldown:   getEnvAsDuration("MESSAGE_COOLDOWN", 2*time.Second),

		HTTPRateLimit: getEnvAsInt("HTTP_RATE_LIMIT", 60),
		HTTPRateBurst: getEnvAsInt("HTTP_RATE_BURST", 20),

		RAGChunkSize:    getEnvAsInt("RAG_CHUNK_SIZE", 1000),
		RAGChunkOverlap: getEnvAsInt("RAG_CHUNK_OVERLAP", 200),
		RAGTopK:         getEnvAsInt("RAG_TOP_K", 8),
		RAGMinRelevance: getEnvAsFloat("RAG_MIN_RELEVANCE", 0.25),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),

		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated environment variable into its
// non-empty trimmed entries.
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
