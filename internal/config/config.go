package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server       ServerConfig
	Backend      BackendConfig
	Collaborator CollaboratorConfig
	JWT          JWTConfig
	Redis        RedisConfig
	Ledger       LedgerConfig
	Calendar     CalendarConfig
	Messaging    MessagingConfig
	Storage      StorageConfig
	Worker       WorkerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

// BackendConfig points at the remote script endpoint that owns all
// durable state. Every gateway call goes to this one URL.
type BackendConfig struct {
	URL        string
	Timeout    time.Duration
	ProbeEvery time.Duration
}

type CollaboratorConfig struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	Username string
	DB       int
}

// LedgerConfig carries the token economics. Costs live in config so
// pricing changes do not need a code change.
type LedgerConfig struct {
	StarterTokens   int
	PlusTokens      int
	ProTokens       int
	CostChat        int
	CostReport      int
	CostAnalysis    int
	CostAgent       int
	CostEvidencePkg int
}

type CalendarConfig struct {
	PlanHorizonDays    int
	ImbalanceThreshold float64
}

type MessagingConfig struct {
	PollInterval    time.Duration
	FreshnessWindow time.Duration
}

type StorageConfig struct {
	Provider string // none, s3
	S3       S3Config
}

type S3Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

type WorkerConfig struct {
	Concurrency int
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Backend: BackendConfig{
			URL:        getEnv("BACKEND_URL", ""),
			Timeout:    getEnvAsDuration("BACKEND_TIMEOUT", 30*time.Second),
			ProbeEvery: getEnvAsDuration("BACKEND_PROBE_INTERVAL", 15*time.Second),
		},
		Collaborator: CollaboratorConfig{
			URL:     getEnv("COLLABORATOR_URL", ""),
			APIKey:  getEnv("COLLABORATOR_API_KEY", ""),
			Model:   getEnv("COLLABORATOR_MODEL", "gemini-2.5-flash"),
			Timeout: getEnvAsDuration("COLLABORATOR_TIMEOUT", 60*time.Second),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key"),
			Expiry: getEnvAsDuration("JWT_EXPIRY", 720*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			Username: getEnv("REDIS_USERNAME", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Ledger: LedgerConfig{
			StarterTokens:   getEnvAsInt("LEDGER_STARTER_TOKENS", 50),
			PlusTokens:      getEnvAsInt("LEDGER_PLUS_TOKENS", 100),
			ProTokens:       getEnvAsInt("LEDGER_PRO_TOKENS", 500),
			CostChat:        getEnvAsInt("LEDGER_COST_CHAT", 1),
			CostReport:      getEnvAsInt("LEDGER_COST_REPORT", 5),
			CostAnalysis:    getEnvAsInt("LEDGER_COST_ANALYSIS", 5),
			CostAgent:       getEnvAsInt("LEDGER_COST_AGENT", 10),
			CostEvidencePkg: getEnvAsInt("LEDGER_COST_EVIDENCE", 20),
		},
		Calendar: CalendarConfig{
			PlanHorizonDays:    getEnvAsInt("CALENDAR_PLAN_HORIZON_DAYS", 365),
			ImbalanceThreshold: getEnvAsFloat("CALENDAR_IMBALANCE_THRESHOLD", 0.35),
		},
		Messaging: MessagingConfig{
			PollInterval:    getEnvAsDuration("MESSAGING_POLL_INTERVAL", 5*time.Second),
			FreshnessWindow: getEnvAsDuration("MESSAGING_FRESHNESS_WINDOW", 30*time.Second),
		},
		Storage: StorageConfig{
			Provider: getEnv("STORAGE_PROVIDER", "none"),
			S3: S3Config{
				Bucket:    getEnv("S3_BUCKET", ""),
				Endpoint:  getEnv("S3_ENDPOINT", ""),
				Region:    getEnv("S3_REGION", ""),
				AccessKey: getEnv("S3_ACCESS_KEY", ""),
				SecretKey: getEnv("S3_SECRET_KEY", ""),
			},
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 10),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
