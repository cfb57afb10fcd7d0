package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// MinStepBudget and MaxStepBudget bound the automation step budget.
	MinStepBudget = 25
	MaxStepBudget = 50
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// LLMConfig selects and configures the generative capability provider.
type LLMConfig struct {
	Provider         string
	Model            string
	APIKey           string
	BaseURL          string
	Temperature      float32
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// AutomationConfig configures the browser-automation worker.
type AutomationConfig struct {
	BaseURL    string
	StepBudget int
	Timeout    time.Duration
	Attempts   int
}

// DatabaseConfig holds pool sizing and query limits.
type DatabaseConfig struct {
	URL           string
	MinConns      int32
	MaxConns      int32
	QueryTimeout  time.Duration
	RunMigrations bool
}

// Config aggregates application-wide configuration values.
type Config struct {
	Database           DatabaseConfig
	JWTSecret          string
	TokenTTL           time.Duration
	Port               string
	LogLevel           string
	LogFormat          string
	CORSOrigins        []string
	Automation         AutomationConfig
	LLM                LLMConfig
	MaxConcurrentRuns  int
	StreamTimeout      time.Duration
	HeartbeatInterval  time.Duration
	RateLimitProfiles  RateLimitConfig
	ContactPhoneRegion string
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL:           os.Getenv("DATABASE_URL"),
			QueryTimeout:  parseDuration(getEnv("DB_QUERY_TIMEOUT", "60s"), 60*time.Second),
			RunMigrations: parseBool(getEnv("RUN_MIGRATIONS", "true"), true),
		},
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret"),
		TokenTTL:    parseDuration(getEnv("JWT_TTL", "168h"), 7*24*time.Hour),
		Port:        getEnv("PORT", "8000"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost,http://localhost:5173")),
		Automation: AutomationConfig{
			BaseURL: getEnv("AUTOMATION_BASE_URL", "http://automation:9000"),
			Timeout: parseDuration(getEnv("AUTOMATION_TIMEOUT", "5m"), 5*time.Minute),
		},
		LLM: LLMConfig{
			Provider:        strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
			Model:           getEnv("LLM_MODEL", "gemini-2.5-flash"),
			APIKey:          os.Getenv("LLM_API_KEY"),
			BaseURL:         os.Getenv("LLM_BASE_URL"),
			BreakerCooldown: parseDuration(getEnv("LLM_BREAKER_COOLDOWN", "30s"), 30*time.Second),
		},
		StreamTimeout:      parseDuration(getEnv("STREAM_TIMEOUT", "10m"), 10*time.Minute),
		HeartbeatInterval:  parseDuration(getEnv("HEARTBEAT_INTERVAL", "3s"), 3*time.Second),
		ContactPhoneRegion: strings.ToUpper(getEnv("CONTACT_PHONE_REGION", "ID")),
	}

	var err error
	if cfg.Database.MinConns, err = parseInt32("DB_MIN_CONNS", 5); err != nil {
		return nil, err
	}
	if cfg.Database.MaxConns, err = parseInt32("DB_MAX_CONNS", 20); err != nil {
		return nil, err
	}
	if cfg.Database.MinConns > cfg.Database.MaxConns {
		return nil, fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", cfg.Database.MinConns, cfg.Database.MaxConns)
	}

	budget, err := parsePositiveInt("AUTOMATION_STEP_BUDGET", MinStepBudget)
	if err != nil {
		return nil, err
	}
	if budget < MinStepBudget || budget > MaxStepBudget {
		return nil, fmt.Errorf("AUTOMATION_STEP_BUDGET must be between %d and %d, got %d", MinStepBudget, MaxStepBudget, budget)
	}
	cfg.Automation.StepBudget = budget

	if cfg.Automation.Attempts, err = parsePositiveInt("AUTOMATION_ATTEMPTS", 1); err != nil {
		return nil, err
	}
	if cfg.MaxConcurrentRuns, err = parsePositiveInt("MAX_CONCURRENT_RUNS", 8); err != nil {
		return nil, err
	}
	if cfg.LLM.BreakerThreshold, err = parsePositiveInt("LLM_BREAKER_THRESHOLD", 5); err != nil {
		return nil, err
	}

	temp, err := strconv.ParseFloat(getEnv("LLM_TEMPERATURE", "0.7"), 32)
	if err != nil || temp < 0 || temp > 2 {
		return nil, fmt.Errorf("invalid LLM_TEMPERATURE value: %q", os.Getenv("LLM_TEMPERATURE"))
	}
	cfg.LLM.Temperature = float32(temp)

	switch cfg.LLM.Provider {
	case "gemini", "openai", "claude", "ollama":
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER: %s", cfg.LLM.Provider)
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_PROFILES", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PROFILES value: %w", err)
	}
	cfg.RateLimitProfiles = rl

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseBool(input string, fallback bool) bool {
	b, err := strconv.ParseBool(input)
	if err != nil {
		return fallback
	}
	return b
}

func parsePositiveInt(key string, fallback int) (int, error) {
	raw := getEnv(key, strconv.Itoa(fallback))
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s value: %q", key, raw)
	}
	return n, nil
}

func parseInt32(key string, fallback int32) (int32, error) {
	n, err := parsePositiveInt(key, int(fallback))
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
