package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

type Config struct {
	Port                    string
	Env                     string
	DatabaseURL             string
	JWTSecret               string
	JWTTTL                  time.Duration
	FirebaseCredentialsPath string
	MongoURI                string
	MongoDatabase           string
	RedisAddr               string
	RedisDB                 int
	CacheTTL                time.Duration
	ElasticsearchAddr       string
	ElasticsearchIndex      string
	CORSOrigin              string
	RateLimitRPS            float64
	RateLimitBurst          int
}

// Load reads .env (if present), then the environment, then the command line.
func Load(args []string) *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, assuming environment variables are set")
	}

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		DatabaseURL:             getEnv("DATABASE_URL", "sqlite://quill.db"),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		JWTTTL:                  time.Duration(getEnvInt("JWT_TTL_HOURS", 72)) * time.Hour,
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "quill"),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		RedisDB:                 getEnvInt("REDIS_DB", 0),
		CacheTTL:                time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		ElasticsearchAddr:       getEnv("ES_ADDR", ""),
		ElasticsearchIndex:      getEnv("ES_INDEX", "posts"),
		CORSOrigin:              getEnv("CORS_ORIGIN", "*"),
		RateLimitRPS:            getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:          getEnvInt("RATE_LIMIT_BURST", 10),
	}

	flags := pflag.NewFlagSet("quill", pflag.ContinueOnError)
	flags.StringVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	flags.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "postgres://... or sqlite://path")
	flags.StringVar(&cfg.Env, "env", cfg.Env, "development or production")
	if err := flags.Parse(args); err != nil {
		slog.Warn("ignoring invalid command line", "error", err)
	}

	return cfg
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		slog.Warn("invalid integer in environment, using default", "key", key, "default", defaultValue)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		slog.Warn("invalid number in environment, using default", "key", key, "default", defaultValue)
	}
	return defaultValue
}
