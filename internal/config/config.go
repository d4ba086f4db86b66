package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Satellite agro-monitoring API.
	AgroAPIKey       string
	AgroBaseURL      string
	AgroTimeout      time.Duration
	PolygonCacheSize int

	// Generative advisor (feature-flagged via ADVISOR_API_KEY / ADVISOR_ENABLED).
	AdvisorEnabled bool
	AdvisorAPIKey  string
	AdvisorBaseURL string
	AdvisorModel   string
	AdvisorTimeout time.Duration

	// Optional kafka results publisher.
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaResultsTopic string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	agroTimeout, err := parseDuration("AGRO_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	advisorTimeout, err := parseDuration("ADVISOR_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("POLYGON_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	advisorKey := os.Getenv("ADVISOR_API_KEY")
	advisorEnabled := advisorKey != ""
	if v := os.Getenv("ADVISOR_ENABLED"); v != "" {
		advisorEnabled = v == "true"
	}

	kafkaEnabled := false
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		AgroAPIKey:       os.Getenv("AGRO_API_KEY"),
		AgroBaseURL:      envOrDefault("AGRO_BASE_URL", "https://api.agromonitoring.com/agro/1.0"),
		AgroTimeout:      agroTimeout,
		PolygonCacheSize: cacheSize,

		AdvisorEnabled: advisorEnabled,
		AdvisorAPIKey:  advisorKey,
		AdvisorBaseURL: envOrDefault("ADVISOR_BASE_URL", "https://api.openai.com/v1"),
		AdvisorModel:   envOrDefault("ADVISOR_MODEL", "gpt-4o-mini"),
		AdvisorTimeout: advisorTimeout,

		KafkaEnabled:      kafkaEnabled,
		KafkaBrokers:      parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaResultsTopic: envOrDefault("KAFKA_RESULTS_TOPIC", "land-quality-assessments"),
	}

	if cfg.AgroAPIKey == "" {
		return nil, errors.New("AGRO_API_KEY is required")
	}
	if cfg.AdvisorEnabled && cfg.AdvisorAPIKey == "" {
		return nil, errors.New("ADVISOR_ENABLED is true but ADVISOR_API_KEY is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaResultsTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_RESULTS_TOPIC is empty")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
