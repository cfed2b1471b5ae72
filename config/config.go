package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the application's configuration
type Config struct {
	AgentID                 string            `mapstructure:"AGENT_ID"`
	KnowledgeBaseID         string            `mapstructure:"KNOWLEDGE_BASE_ID"`
	AgentBaseURL            string            `mapstructure:"AGENT_BASE_URL"`
	KnowledgeBaseURL        string            `mapstructure:"KNOWLEDGE_BASE_URL"`
	APIKey                  string            `mapstructure:"API_KEY"`
	UserID                  string            `mapstructure:"USER_ID"`
	AgentName               string            `mapstructure:"AGENT_NAME"`
	RequestTimeout          time.Duration     `mapstructure:"-"`
	MaxRetries              int               `mapstructure:"MAX_RETRIES"`
	RetryDelaySeconds       time.Duration     `mapstructure:"-"`
	BackoffMaxSeconds       time.Duration     `mapstructure:"-"`
	BackoffJitterRatio      float64           `mapstructure:"BACKOFF_JITTER_RATIO"`
	WebPort                 int               `mapstructure:"WEB_PORT"`
	LogLevel                string            `mapstructure:"LOG_LEVEL"`
	AllowedOrigins          []string          `mapstructure:"ALLOWED_ORIGINS"`
	MaxSessions             int               `mapstructure:"MAX_SESSIONS"`
	SessionRetentionAge     time.Duration     `mapstructure:"-"`
	CleanupInterval         time.Duration     `mapstructure:"-"`
	RateLimitMessagesPerMin int               `mapstructure:"RATE_LIMIT_MESSAGES_PER_MIN"`
	RateLimitFilesPerHour   int               `mapstructure:"RATE_LIMIT_FILES_PER_HOUR"`
	RateLimitBurstSize      int               `mapstructure:"RATE_LIMIT_BURST_SIZE"`
	MaxUploadBytes          int64             `mapstructure:"MAX_UPLOAD_BYTES"`
	EmailSentResetSeconds   time.Duration     `mapstructure:"-"`
	EmailErrorResetSeconds  time.Duration     `mapstructure:"-"`
	MaxDecodeDepth          int               `mapstructure:"MAX_DECODE_DEPTH"`
	Theme                   map[string]string `mapstructure:"THEME"`
}

// DefaultTheme is the colour palette of the advisor page, emitted as CSS variables.
var DefaultTheme = map[string]string{
	"--background":             "160 35% 96%",
	"--foreground":             "160 35% 8%",
	"--card":                   "160 30% 99%",
	"--card-foreground":        "160 35% 8%",
	"--popover":                "160 30% 99%",
	"--popover-foreground":     "160 35% 8%",
	"--primary":                "160 85% 35%",
	"--primary-foreground":     "0 0% 100%",
	"--secondary":              "160 30% 93%",
	"--secondary-foreground":   "160 35% 12%",
	"--accent":                 "45 95% 50%",
	"--accent-foreground":      "160 35% 8%",
	"--muted":                  "160 25% 90%",
	"--muted-foreground":       "160 25% 40%",
	"--destructive":            "0 84% 60%",
	"--destructive-foreground": "0 0% 100%",
	"--border":                 "160 28% 88%",
	"--input":                  "160 25% 85%",
	"--ring":                   "160 85% 35%",
	"--radius":                 "0.875rem",
}

func Load(logger *zap.Logger) *Config {
	loadDotEnv(logger)

	var config Config
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")        // For running locally
	v.AddConfigPath("../")      // For running from docker subdir
	v.AddConfigPath("./config") // Common config folder
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Warn("Could not read config file, using defaults/env vars", zap.Error(err))
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		// Config unmarshaling is critical - fail fast during bootstrap
		if logger != nil {
			logger.Fatal("Unable to decode config into struct", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: Unable to decode config into struct: %v\n", err)
			os.Exit(1)
		}
	}

	config.readDurations(v)
	config.normalize()
	return &config
}

// durationKeys maps each whole-number setting to the unit it is expressed in.
func (c *Config) durationKeys() []struct {
	key  string
	unit time.Duration
	dst  *time.Duration
} {
	return []struct {
		key  string
		unit time.Duration
		dst  *time.Duration
	}{
		{"REQUEST_TIMEOUT", time.Second, &c.RequestTimeout},
		{"RETRY_DELAY_SECONDS", time.Second, &c.RetryDelaySeconds},
		{"BACKOFF_MAX_SECONDS", time.Second, &c.BackoffMaxSeconds},
		{"EMAIL_SENT_RESET_SECONDS", time.Second, &c.EmailSentResetSeconds},
		{"EMAIL_ERROR_RESET_SECONDS", time.Second, &c.EmailErrorResetSeconds},
		{"CLEANUP_INTERVAL", time.Minute, &c.CleanupInterval},
		{"SESSION_RETENTION_AGE", time.Hour, &c.SessionRetentionAge},
	}
}

// readDurations reads the duration settings as plain integers. Decoding them
// straight into time.Duration would reject env values such as "30" for lacking a unit.
func (c *Config) readDurations(v *viper.Viper) {
	for _, d := range c.durationKeys() {
		*d.dst = time.Duration(v.GetInt(d.key)) * d.unit
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("AGENT_ID", "698ba5ef1795f4806db0eb5a")
	v.SetDefault("KNOWLEDGE_BASE_ID", "698ba5de67a82d6d27bdde7a")
	v.SetDefault("AGENT_BASE_URL", "https://agent-prod.studio.lyzr.ai")
	v.SetDefault("KNOWLEDGE_BASE_URL", "https://rag-prod.studio.lyzr.ai")
	v.SetDefault("API_KEY", "")
	v.SetDefault("USER_ID", "product-advisor@local")
	v.SetDefault("AGENT_NAME", "Product Recommendation Agent")
	v.SetDefault("REQUEST_TIMEOUT", 120)
	v.SetDefault("MAX_RETRIES", 3)
	v.SetDefault("RETRY_DELAY_SECONDS", 2)
	v.SetDefault("BACKOFF_MAX_SECONDS", 20)
	v.SetDefault("BACKOFF_JITTER_RATIO", 0.1)
	v.SetDefault("WEB_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ALLOWED_ORIGINS", []string{})
	v.SetDefault("MAX_SESSIONS", 1000)
	v.SetDefault("SESSION_RETENTION_AGE", 24)
	v.SetDefault("CLEANUP_INTERVAL", 30)
	v.SetDefault("RATE_LIMIT_MESSAGES_PER_MIN", 20)
	v.SetDefault("RATE_LIMIT_FILES_PER_HOUR", 10)
	v.SetDefault("RATE_LIMIT_BURST_SIZE", 5)
	v.SetDefault("MAX_UPLOAD_BYTES", 20*1024*1024)
	v.SetDefault("EMAIL_SENT_RESET_SECONDS", 5)
	v.SetDefault("EMAIL_ERROR_RESET_SECONDS", 3)
	v.SetDefault("MAX_DECODE_DEPTH", 4)
	v.SetDefault("THEME", DefaultTheme)
}

// normalize repairs values that would leave a component unusable.
func (c *Config) normalize() {
	c.AgentBaseURL = strings.TrimRight(strings.TrimSpace(c.AgentBaseURL), "/")
	c.KnowledgeBaseURL = strings.TrimRight(strings.TrimSpace(c.KnowledgeBaseURL), "/")

	if len(c.AllowedOrigins) > 0 {
		cleaned := make([]string, 0, len(c.AllowedOrigins))
		for _, origin := range c.AllowedOrigins {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				cleaned = append(cleaned, origin)
			}
		}
		c.AllowedOrigins = cleaned
	}

	if c.MaxRetries < 1 {
		c.MaxRetries = 1
	}
	if c.MaxSessions < 1 {
		c.MaxSessions = 1000
	}
	if c.MaxDecodeDepth < 1 {
		c.MaxDecodeDepth = 4
	}
	if len(c.Theme) == 0 {
		c.Theme = DefaultTheme
	}

	if c.CleanupInterval <= 0 {
		c.CleanupInterval = 30 * time.Minute
	}
}

// loadDotEnv loads the first .env file found so its values are visible to AutomaticEnv.
func loadDotEnv(logger *zap.Logger) {
	for _, path := range []string{".env", "../.env", "./config/.env"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			if logger != nil {
				logger.Warn("Failed to load .env file", zap.String("path", path), zap.Error(err))
			}
			continue
		}
		if logger != nil {
			logger.Debug("Loaded .env file", zap.String("path", path))
		}
		return
	}
}
