package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Backend and provider names accepted by Validate.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"

	LLMGemini    = "gemini"
	LLMAnthropic = "anthropic"
	LLMCohere    = "cohere"

	ExtractorPDF     = "pdf"
	ExtractorDocconv = "docconv"

	NERLLM       = "llm"
	NERGazetteer = "gazetteer"
	NERProse     = "prose"
)

// Configuration validation errors.
var (
	ErrUnknownStore       = errors.New("STORE_BACKEND must be one of: mongo, postgres, sqlite")
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required for the postgres store")
	ErrUnknownLLM         = errors.New("LLM_PROVIDER must be one of: gemini, anthropic, cohere")
	ErrUnknownExtractor   = errors.New("PDF_EXTRACTOR must be one of: pdf, docconv")
	ErrUnknownNER         = errors.New("NER_PROVIDER must be one of: prose, gazetteer, llm")
	ErrPagesPerChunk      = errors.New("PAGES_PER_CHUNK must be at least 1")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is required to serve the API")
	ErrNumWorkers         = fmt.Errorf("NUM_WORKERS must be between 1 and %d", MaxWorkers)
)

// MaxWorkers bounds the API's ingest worker pool.
const MaxWorkers = 16

type Config struct {
	LogLevel string

	// Document store (service D).
	StoreBackend    string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	DatabaseURL     string
	SslCertPath     string
	SQLitePath      string
	PingTimeout     time.Duration

	// Object storage for archived outputs; disabled when BucketName is empty.
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	S3Endpoint   string

	// Summarization model (service C) and entity recognition (service B).
	LLMProvider     string
	AIAPIKey        string
	GenModel        string
	EmbedModel      string
	EmbedDim        int
	AnthropicAPIKey string
	AnthropicModel  string
	CohereAPIKey    string
	CohereModel     string
	NERProvider     string

	// Summary cache; disabled when RedisAddr is empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Pipeline.
	PDFExtractor  string
	PagesPerChunk int
	OutputDir     string
	ChunksDir     string
	TablesFile    string
	InboxDir      string
	WatchSchedule string

	// HTTP API.
	Port                 string
	JWTSecret            string
	TokenTTL             time.Duration
	OperatorUser         string
	OperatorPasswordHash string
	NumWorkers           int
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreBackend:    strings.ToLower(getEnv("STORE_BACKEND", "mongo")),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DB", "news_summarizer"),
		MongoCollection: getEnv("MONGO_COLLECTION", "summaries"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SslCertPath:     getEnv("SSL_CERT_PATH", ""),
		SQLitePath:      getEnv("SQLITE_PATH", "newsprint.db"),
		PingTimeout:     getEnvDuration("STORE_PING_TIMEOUT", 3*time.Second),

		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", ""),
		S3Endpoint:   getEnv("S3_ENDPOINT", ""),

		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
		AIAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GenModel:        getEnv("GEN_MODEL", "gemini-1.5-flash"),
		EmbedModel:      getEnv("EMBED_MODEL", ""),
		EmbedDim:        getEnvInt("EMBED_DIM", 768),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		CohereAPIKey:    getEnv("COHERE_API_KEY", ""),
		CohereModel:     getEnv("COHERE_MODEL", "command-r"),
		NERProvider:     strings.ToLower(getEnv("NER_PROVIDER", "prose")),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 7*24*time.Hour),

		PDFExtractor:  strings.ToLower(getEnv("PDF_EXTRACTOR", "pdf")),
		PagesPerChunk: getEnvInt("PAGES_PER_CHUNK", 2),
		OutputDir:     getEnv("OUTPUT_DIR", "."),
		ChunksDir:     getEnv("CHUNKS_DIR", "chunks"),
		TablesFile:    getEnv("TABLES_FILE", ""),
		InboxDir:      getEnv("INBOX_DIR", "inbox"),
		WatchSchedule: getEnv("WATCH_SCHEDULE", "*/15 * * * *"),

		Port:                 getEnv("PORT", "8080"),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		TokenTTL:             getEnvDuration("TOKEN_TTL", 24*time.Hour),
		OperatorUser:         getEnv("OPERATOR_USER", "operator"),
		OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
		NumWorkers:           getEnvInt("NUM_WORKERS", 1),
	}

	return cfg
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMongo, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	default:
		return fmt.Errorf("%w: got %q", ErrUnknownStore, c.StoreBackend)
	}

	switch c.LLMProvider {
	case LLMGemini, LLMAnthropic, LLMCohere:
	default:
		return fmt.Errorf("%w: got %q", ErrUnknownLLM, c.LLMProvider)
	}

	switch c.PDFExtractor {
	case ExtractorPDF, ExtractorDocconv:
	default:
		return fmt.Errorf("%w: got %q", ErrUnknownExtractor, c.PDFExtractor)
	}

	switch c.NERProvider {
	case NERProse, NERGazetteer, NERLLM:
	default:
		return fmt.Errorf("%w: got %q", ErrUnknownNER, c.NERProvider)
	}

	if c.PagesPerChunk < 1 {
		return ErrPagesPerChunk
	}
	return nil
}

// ValidateServer adds the checks that only matter for the HTTP API.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.NumWorkers < 1 || c.NumWorkers > MaxWorkers {
		return fmt.Errorf("%w: got %d", ErrNumWorkers, c.NumWorkers)
	}
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.Warnf("%s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.Warnf("%s=%q not a duration, using default %s", key, v, def)
		return def
	}
	return d
}
