package config

import (
	"strconv"
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	SRS      SRSConfig      `yaml:"srs"`
	Quota    QuotaConfig    `yaml:"quota"`
	Vision   VisionConfig   `yaml:"vision"`
	Line     LineConfig     `yaml:"line"`
	Billing  BillingConfig  `yaml:"billing"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// AuthConfig holds JWT and admin console settings.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"snappword"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"24h"`
	// AdminPasswordHash is a bcrypt hash of the admin console password.
	AdminPasswordHash string `yaml:"admin_password_hash" env:"AUTH_ADMIN_PASSWORD_HASH"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// SRSConfig holds spaced-repetition and quiz parameters.
type SRSConfig struct {
	// IntervalLadderRaw is a comma-separated list of day counts. Index 0 is
	// the first post-NEW interval; reaching the last index masters the card.
	IntervalLadderRaw string `yaml:"interval_ladder" env:"SRS_INTERVAL_LADDER" env-default:"1,3,7,14,30"`
	DuePageSize       int    `yaml:"due_page_size"   env:"SRS_DUE_PAGE_SIZE"   env-default:"20"`
	QuizSize          int    `yaml:"quiz_size"       env:"SRS_QUIZ_SIZE"       env-default:"10"`
	// MinQuizPool is the minimum number of distinct translations across the
	// user's cards required before quiz questions are built.
	MinQuizPool int `yaml:"min_quiz_pool" env:"SRS_MIN_QUIZ_POOL" env-default:"4"`

	// IntervalLadder is parsed from IntervalLadderRaw during validation.
	IntervalLadder []int `yaml:"-" env:"-"`
}

// QuotaConfig holds per-tier usage ceilings. Zero means unlimited.
type QuotaConfig struct {
	MonthlyFree     int `yaml:"monthly_free"      env:"QUOTA_MONTHLY_FREE"      env-default:"30"`
	MonthlySprout   int `yaml:"monthly_sprout"    env:"QUOTA_MONTHLY_SPROUT"    env-default:"200"`
	MonthlyBloom    int `yaml:"monthly_bloom"     env:"QUOTA_MONTHLY_BLOOM"     env-default:"0"`
	DailyBloom      int `yaml:"daily_bloom"       env:"QUOTA_DAILY_BLOOM"       env-default:"500"`
	DailyReviewFree int `yaml:"daily_review_free" env:"QUOTA_DAILY_REVIEW_FREE" env-default:"10"`
}

// VisionConfig holds vision-language model settings.
type VisionConfig struct {
	APIKey string `yaml:"api_key" env:"VISION_API_KEY" env-required:"true"`
	// ModelsRaw is a comma-separated ordered list: primary model first,
	// fallbacks after.
	ModelsRaw   string        `yaml:"models"       env:"VISION_MODELS"       env-default:"claude-sonnet-4-5,claude-3-5-haiku-latest"`
	MaxAttempts int           `yaml:"max_attempts" env:"VISION_MAX_ATTEMPTS" env-default:"3"`
	BaseDelay   time.Duration `yaml:"base_delay"   env:"VISION_BASE_DELAY"   env-default:"1s"`
	MaxDelay    time.Duration `yaml:"max_delay"    env:"VISION_MAX_DELAY"    env-default:"30s"`
	CallTimeout time.Duration `yaml:"call_timeout" env:"VISION_CALL_TIMEOUT" env-default:"45s"`
	MaxTokens   int           `yaml:"max_tokens"   env:"VISION_MAX_TOKENS"   env-default:"2048"`

	// Models is parsed from ModelsRaw during validation.
	Models []string `yaml:"-" env:"-"`
}

// LineConfig holds LINE Messaging API credentials.
type LineConfig struct {
	ChannelSecret      string `yaml:"channel_secret" env:"LINE_CHANNEL_SECRET" env-required:"true"`
	ChannelAccessToken string `yaml:"channel_token"  env:"LINE_CHANNEL_TOKEN"  env-required:"true"`
	APIBaseURL         string `yaml:"api_base_url"   env:"LINE_API_BASE_URL"   env-default:"https://api.line.me"`
	DataBaseURL        string `yaml:"data_base_url"  env:"LINE_DATA_BASE_URL"  env-default:"https://api-data.line.me"`
	AdminLineUserID    string `yaml:"admin_user_id"  env:"LINE_ADMIN_USER_ID"`
}

// BillingConfig holds payment-processor webhook settings. The webhook payload
// is consumed as plain JSON; the secret signs it.
type BillingConfig struct {
	WebhookSecret string `yaml:"webhook_secret" env:"BILLING_WEBHOOK_SECRET"`
	// SignatureTolerance rejects replayed webhook deliveries older than this.
	SignatureTolerance time.Duration `yaml:"signature_tolerance" env:"BILLING_SIGNATURE_TOLERANCE" env-default:"5m"`
}

// CORSConfig holds CORS settings for the dashboard API.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// MonthlyLimit returns the monthly screenshot ceiling for a tier (0 = unlimited).
func (q QuotaConfig) MonthlyLimit(tier string) int {
	switch tier {
	case "sprout":
		return q.MonthlySprout
	case "bloom":
		return q.MonthlyBloom
	default:
		return q.MonthlyFree
	}
}

// DailyLimit returns the daily anti-abuse ceiling for a tier (0 = unlimited).
func (q QuotaConfig) DailyLimit(tier string) int {
	if tier == "bloom" {
		return q.DailyBloom
	}
	return 0
}

// parseIntList parses a comma-separated list of positive integers.
func parseIntList(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// parseStringList parses a comma-separated list, dropping empty entries.
func parseStringList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
