package config

import "time"

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env      string `env:"ENV" env-required:"true"`
	HTTP     HTTPConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Media    MediaConfig
	Board    BoardConfig
}

type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	// Where denied or finished actions send the browser.
	FallbackPath string `env:"HTTP_FALLBACK_PATH" env-default:"/tablero/"`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST" env-required:"true"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME" env-required:"true"`
	Password       string        `env:"POSTGRES_PASSWORD" env-required:"true"`
	Database       string        `env:"POSTGRES_DATABASE" env-required:"true"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
}

type JWTConfig struct {
	Issuer          string        `env:"JWT_ISSUER" env-default:"go-taskboard"`
	SigningKey      string        `env:"JWT_SIGNING_KEY" env-required:"true"`
	AccessTokenTTL  time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `env:"JWT_REFRESH_TOKEN_TTL" env-default:"720h"`
}

type SMTPConfig struct {
	// Notifications are disabled when no host is configured.
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" env-default:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" env-default:"no-reply@taskboard.local"`
	// Outgoing messages per second and the burst allowed above it.
	RateLimit   float64       `env:"SMTP_RATE_LIMIT" env-default:"5"`
	RateBurst   int           `env:"SMTP_RATE_BURST" env-default:"10"`
	SendTimeout time.Duration `env:"SMTP_SEND_TIMEOUT" env-default:"15s"`
}

type MediaConfig struct {
	Root string `env:"MEDIA_ROOT" env-default:"media"`
	URL  string `env:"MEDIA_URL" env-default:"/media/"`
	// Upper bound for multipart bodies.
	MaxUploadSize int64 `env:"MEDIA_MAX_UPLOAD_SIZE" env-default:"10485760"`
}

type BoardConfig struct {
	PageSize      int `env:"BOARD_PAGE_SIZE" env-default:"5"`
	SearchLimit   int `env:"BOARD_SEARCH_LIMIT" env-default:"10"`
	DashboardSize int `env:"BOARD_DASHBOARD_SIZE" env-default:"5"`
	UpcomingDays  int `env:"BOARD_UPCOMING_DAYS" env-default:"7"`
}
