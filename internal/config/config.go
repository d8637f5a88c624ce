package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"alert-strategist/pkg/logger"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string
	RedisURL    string
	APIKey      string

	TelegramBotToken string
	TelegramChatID   int64

	KafkaBrokers      []string
	KafkaActionsTopic string

	EvalTimeoutSecs    int
	StoreTimeoutSecs   int
	NotifyTimeoutSecs  int
	EvalConcurrency    int
	CatalogRefreshSecs int
	ScoreCacheSecs     int
	LockTTLSecs        int

	LogLevel       string
	LogFormat      string
	TracingEnabled bool
	OTLPEndpoint   string
}

func (c *Config) EvalTimeout() time.Duration   { return secs(c.EvalTimeoutSecs) }
func (c *Config) StoreTimeout() time.Duration  { return secs(c.StoreTimeoutSecs) }
func (c *Config) NotifyTimeout() time.Duration { return secs(c.NotifyTimeoutSecs) }
func (c *Config) ScoreCacheTTL() time.Duration { return secs(c.ScoreCacheSecs) }
func (c *Config) LockTTL() time.Duration       { return secs(c.LockTTLSecs) }

func secs(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func Load() *Config {
	log := logger.L()

	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         strings.TrimSpace(os.Getenv("REDIS_URL")),
		APIKey:           strings.TrimSpace(os.Getenv("API_KEY")),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OTLPEndpoint:     strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}

	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not set, score cache and distributed locks disabled")
	}
	if cfg.APIKey == "" {
		log.Warn("API_KEY not set, /api routes are unauthenticated")
	}
	if cfg.TelegramBotToken == "" {
		log.Warn("TELEGRAM_BOT_TOKEN not set")
	}

	cfg.HTTPAddr = strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = n
		} else {
			log.Warn("invalid TELEGRAM_CHAT_ID, notifications disabled", logger.String("value", v))
		}
	}

	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}
	cfg.KafkaActionsTopic = strings.TrimSpace(os.Getenv("KAFKA_ACTIONS_TOPIC"))
	if cfg.KafkaActionsTopic == "" {
		cfg.KafkaActionsTopic = "strategist.actions"
	}

	cfg.EvalTimeoutSecs = positiveInt("EVAL_TIMEOUT_SECS", 10)
	cfg.StoreTimeoutSecs = positiveInt("STORE_TIMEOUT_SECS", 5)
	cfg.NotifyTimeoutSecs = positiveInt("NOTIFY_TIMEOUT_SECS", 10)
	cfg.EvalConcurrency = positiveInt("EVAL_CONCURRENCY", 8)
	cfg.CatalogRefreshSecs = positiveInt("CATALOG_REFRESH_SECS", 60)
	cfg.ScoreCacheSecs = positiveInt("SCORE_CACHE_SECS", 15)
	cfg.LockTTLSecs = positiveInt("LOCK_TTL_SECS", 30)

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		cfg.LogFormat = "json"
	}

	cfg.TracingEnabled = !strings.EqualFold(strings.TrimSpace(os.Getenv("TRACING_ENABLED")), "false")

	return cfg
}

func positiveInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		logger.L().Warn("invalid value, using default",
			logger.String("var", name),
			logger.String("value", v),
			logger.Int("default", def),
		)
		return def
	}
	return n
}
