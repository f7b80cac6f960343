package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type SlackConfig struct {
	SigningSecret   string
	BotToken        string
	APIURL          string // Optional, overrides the slack-go default
	SignatureMaxAge time.Duration
}

type SlackOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// IsConfigured returns true if all required OAuth configuration is present
func (c SlackOAuthConfig) IsConfigured() bool {
	return c.ClientID != "" &&
		c.ClientSecret != ""
	// Note: RedirectURL is optional, Slack falls back to the app's configured URL
}

type SlackAlertConfig struct {
	WebhookURL string
	LogsURL    string // Optional, linked from alerts
}

// IsConfigured returns true if error alerts should be sent to Slack
func (c SlackAlertConfig) IsConfigured() bool {
	return c.WebhookURL != ""
}

type WeatherConfig struct {
	APIKey      string
	APIURL      string
	CountryCode string
	Timeout     time.Duration
}

type DatabaseConfig struct {
	URL    string
	Schema string
}

// IsConfigured returns true if installations should be persisted in Postgres
func (c DatabaseConfig) IsConfigured() bool {
	return c.URL != ""
}

type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

// IsConfigured returns true if weather readings should be cached in Redis
func (c CacheConfig) IsConfigured() bool {
	return c.RedisURL != ""
}

type AppConfig struct {
	Port               string
	CORSAllowedOrigins string
	Environment        string

	SlackConfig      SlackConfig
	SlackOAuthConfig SlackOAuthConfig
	SlackAlertConfig SlackAlertConfig
	WeatherConfig    WeatherConfig
	DatabaseConfig   DatabaseConfig
	CacheConfig      CacheConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	return loadFromEnv()
}

func loadFromEnv() (*AppConfig, error) {
	signingSecret, err := getEnvRequired("SLACK_SIGNING_SECRET")
	if err != nil {
		return nil, err
	}

	botToken, err := getEnvRequired("SLACK_BOT_TOKEN")
	if err != nil {
		return nil, err
	}

	weatherAPIKey, err := getEnvRequired("OPENWEATHER_API_KEY")
	if err != nil {
		return nil, err
	}

	signatureMaxAge, err := getDurationWithDefault("SLACK_SIGNATURE_MAX_AGE", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := getDurationWithDefault("OPENWEATHER_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cacheTTL, err := getDurationWithDefault("WEATHER_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	config := &AppConfig{
		Port:               getEnvWithDefault("PORT", "5000"),
		CORSAllowedOrigins: getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*"),
		Environment:        getEnvWithDefault("ENVIRONMENT", "dev"),

		SlackConfig: SlackConfig{
			SigningSecret:   signingSecret,
			BotToken:        botToken,
			APIURL:          os.Getenv("SLACK_API_URL"),
			SignatureMaxAge: signatureMaxAge,
		},

		SlackOAuthConfig: slackOAuthConfigFromEnv(),

		SlackAlertConfig: SlackAlertConfig{
			WebhookURL: os.Getenv("SLACK_ALERT_WEBHOOK_URL"),
			LogsURL:    os.Getenv("SERVER_LOGS_URL"),
		},

		WeatherConfig: WeatherConfig{
			APIKey:      weatherAPIKey,
			APIURL:      getEnvWithDefault("OPENWEATHER_API_URL", "https://api.openweathermap.org"),
			CountryCode: getEnvWithDefault("OPENWEATHER_COUNTRY", "us"),
			Timeout:     weatherTimeout,
		},

		DatabaseConfig: databaseConfigFromEnv(),

		CacheConfig: CacheConfig{
			RedisURL: os.Getenv("REDIS_URL"),
			TTL:      cacheTTL,
		},
	}

	if config.SlackOAuthConfig.IsConfigured() {
		log.Printf("✅ Slack OAuth configured")
	} else {
		log.Printf("⚠️ Slack OAuth not configured - /auth will be disabled")
	}

	if config.SlackAlertConfig.IsConfigured() {
		log.Printf("✅ Slack error alerts configured")
	} else {
		log.Printf("⚠️ Slack error alerts not configured - errors will only be logged")
	}

	if config.DatabaseConfig.IsConfigured() {
		log.Printf("✅ Database configured")
	} else {
		log.Printf("⚠️ Database not configured - installations will not be persisted")
	}

	if config.CacheConfig.IsConfigured() {
		log.Printf("✅ Redis weather cache configured")
	} else {
		log.Printf("⚠️ Redis not configured - weather readings will not be cached")
	}

	return config, nil
}

// RefreshConfig is the subset of settings the token refresh job needs
type RefreshConfig struct {
	SlackAPIURL      string
	SlackOAuthConfig SlackOAuthConfig
	DatabaseConfig   DatabaseConfig
}

// LoadRefreshConfig loads the token refresh job settings. Unlike LoadConfig it
// requires the database and OAuth credentials and nothing the webhook server uses.
func LoadRefreshConfig() (*RefreshConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	return loadRefreshFromEnv()
}

func loadRefreshFromEnv() (*RefreshConfig, error) {
	config := &RefreshConfig{
		SlackAPIURL:      os.Getenv("SLACK_API_URL"),
		SlackOAuthConfig: slackOAuthConfigFromEnv(),
		DatabaseConfig:   databaseConfigFromEnv(),
	}

	if !config.DatabaseConfig.IsConfigured() {
		return nil, fmt.Errorf("DB_URL is not set, there are no stored installations to refresh")
	}
	if !config.SlackOAuthConfig.IsConfigured() {
		return nil, fmt.Errorf("SLACK_CLIENT_ID and SLACK_CLIENT_SECRET are required to refresh tokens")
	}

	return config, nil
}

func slackOAuthConfigFromEnv() SlackOAuthConfig {
	return SlackOAuthConfig{
		ClientID:     os.Getenv("SLACK_CLIENT_ID"),
		ClientSecret: os.Getenv("SLACK_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("SLACK_REDIRECT_URL"),
	}
}

func databaseConfigFromEnv() DatabaseConfig {
	return DatabaseConfig{
		URL:    os.Getenv("DB_URL"),
		Schema: getEnvWithDefault("DB_SCHEMA", "public"),
	}
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
