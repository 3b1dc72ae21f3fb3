package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Port        string
	GinMode     string
	LogLevel    string
	AdminAPIKey string

	TMDBAPIKeys    []string // 支持多个 API Key 轮询
	TMDBBaseURL    string
	TMDBImageBase  string
	DebounceWindow time.Duration

	TrendingBackend string
	TrendingWorkers int

	AppwriteEndpoint     string
	AppwriteProjectID    string
	AppwriteDatabaseID   string
	AppwriteCollectionID string
	AppwriteAPIKey       string

	MongoDBURI  string
	MongoDBName string
	SQLiteDSN   string
	PostgresDSN string
	RedisURL    string

	SessionIdleTTL      time.Duration
	SessionReapSchedule string
}

// Load reads configuration from defaults, an optional configs/config.yaml and the environment
func Load() (*Config, error) {
	return load(viper.New(), "./configs")
}

func load(v *viper.Viper, configPath string) (*Config, error) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ADMIN_API_KEY", "")
	v.SetDefault("TMDB_API_KEY", "")
	v.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	v.SetDefault("TMDB_IMAGE_BASE", "https://image.tmdb.org/t/p/w500")
	v.SetDefault("DEBOUNCE_WINDOW", "1000ms")
	v.SetDefault("TRENDING_BACKEND", "appwrite")
	v.SetDefault("TRENDING_WORKERS", 8)
	v.SetDefault("APPWRITE_ENDPOINT", "https://cloud.appwrite.io/v1")
	v.SetDefault("APPWRITE_PROJECT_ID", "")
	v.SetDefault("APPWRITE_DATABASE_ID", "")
	v.SetDefault("APPWRITE_COLLECTION_ID", "")
	v.SetDefault("APPWRITE_API_KEY", "")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "movie_finder")
	v.SetDefault("SQLITE_DSN", "file:trending.db?_pragma=busy_timeout(5000)")
	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("REDIS_URL", "redis://localhost:6379")
	v.SetDefault("SESSION_IDLE_TTL", "30m")
	v.SetDefault("SESSION_REAP_SCHEDULE", "@every 1m")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{
		Port:        v.GetString("PORT"),
		GinMode:     v.GetString("GIN_MODE"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		AdminAPIKey: v.GetString("ADMIN_API_KEY"),

		TMDBAPIKeys:    splitList(v.GetString("TMDB_API_KEY")),
		TMDBBaseURL:    strings.TrimRight(v.GetString("TMDB_BASE_URL"), "/"),
		TMDBImageBase:  strings.TrimRight(v.GetString("TMDB_IMAGE_BASE"), "/"),
		DebounceWindow: v.GetDuration("DEBOUNCE_WINDOW"),

		TrendingBackend: strings.ToLower(v.GetString("TRENDING_BACKEND")),
		TrendingWorkers: v.GetInt("TRENDING_WORKERS"),

		AppwriteEndpoint:     strings.TrimRight(v.GetString("APPWRITE_ENDPOINT"), "/"),
		AppwriteProjectID:    v.GetString("APPWRITE_PROJECT_ID"),
		AppwriteDatabaseID:   v.GetString("APPWRITE_DATABASE_ID"),
		AppwriteCollectionID: v.GetString("APPWRITE_COLLECTION_ID"),
		AppwriteAPIKey:       v.GetString("APPWRITE_API_KEY"),

		MongoDBURI:  v.GetString("MONGODB_URI"),
		MongoDBName: v.GetString("MONGODB_DATABASE"),
		SQLiteDSN:   v.GetString("SQLITE_DSN"),
		PostgresDSN: v.GetString("POSTGRES_DSN"),
		RedisURL:    v.GetString("REDIS_URL"),

		SessionIdleTTL:      v.GetDuration("SESSION_IDLE_TTL"),
		SessionReapSchedule: v.GetString("SESSION_REAP_SCHEDULE"),
	}, nil
}

// AuthHeaderValue is the Authorization header sent to TMDB with the first key
func (c *Config) AuthHeaderValue() string {
	if len(c.TMDBAPIKeys) == 0 {
		return ""
	}
	return "Bearer " + c.TMDBAPIKeys[0]
}

// splitList splits a comma separated value, dropping empty items
func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
