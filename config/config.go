package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config carries every externally tunable setting. It is built once in main
// and passed by reference into the services that need it, instead of each
// component reading the environment on its own.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// DatabaseURL is the postgres DSN (DIRECT_URL). When empty the server
	// falls back to a local sqlite file at SQLitePath.
	DatabaseURL string
	SQLitePath  string

	// Groq LLM backend settings.
	GroqAPIKey    string
	GroqModel     string
	LLMTimeout    time.Duration
	LLMMaxRetries int

	// AnalysisWorkers bounds how many document pipelines may run at once.
	AnalysisWorkers int64

	// ElasticsearchURL enables full-text indexing/search when set.
	ElasticsearchURL string

	// S3 archival settings; all four must be set to enable archival.
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
}

// Load assembles the configuration from the environment, applying defaults
// for anything unset.
func Load() *Config {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DIRECT_URL"),
		SQLitePath:       getEnv("SQLITE_PATH", "contracts.db"),
		GroqAPIKey:       os.Getenv("GROQ_API_KEY"),
		GroqModel:        getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		LLMTimeout:       time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 45)) * time.Second,
		LLMMaxRetries:    getEnvInt("LLM_MAX_RETRIES", 3),
		AnalysisWorkers:  int64(getEnvInt("ANALYSIS_WORKERS", 4)),
		ElasticsearchURL: os.Getenv("ELASTICSEARCH_URL"),
		S3Region:         os.Getenv("S3_REGION"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("S3_SECRET_KEY"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
	}

	if cfg.AnalysisWorkers < 1 {
		cfg.AnalysisWorkers = 1
	}
	if cfg.GroqAPIKey == "" {
		log.Println("GROQ_API_KEY is not set; LLM stages will degrade to sentinel values")
	}
	return cfg
}

// S3Enabled reports whether enough settings are present to archive uploads.
func (c *Config) S3Enabled() bool {
	return c.S3Region != "" && c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3Bucket != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid value %q for %s, using default %d", v, key, fallback)
		return fallback
	}
	return n
}
