package internal

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
)

const EnvironmentProduction = "production"

type Config struct {
	Environment string `env:"ENVIRONMENT,default=development" validate:"required"`
	LogLevel    string `env:"LOG_LEVEL,default=INFO" validate:"required,oneof=DEBUG INFO WARN ERROR"`

	Host       string `env:"HOST,default=0.0.0.0" validate:"required"`
	Port       int    `env:"PORT,required=true" validate:"min=1,max=65535"`
	HealthPort int    `env:"HEALTH_PORT,required=true" validate:"min=1,max=65535,nefield=Port"`
	Path       string `env:"INTERACTIONS_PATH,default=/interactions" validate:"required,startswith=/"`

	PublicKey     string `env:"PUBLIC_KEY,required=true" validate:"hexadecimal,len=64"`
	ApplicationID string `env:"APPLICATION_ID,required=true" validate:"required,numeric"`
	BotToken      string `env:"BOT_TOKEN"`
	APIBaseURL    string `env:"API_BASE_URL,default=https://discord.com/api/v10" validate:"required,url"`
	SyncCommands  bool   `env:"SYNC_COMMANDS,default=false"`

	BadgerFilepath   string        `env:"BADGER_FILEPATH,required=true" validate:"required"`
	OffloadRetention time.Duration `env:"OFFLOAD_RETENTION,default=168h" validate:"min=0"`
	GCInterval       time.Duration `env:"BADGER_GC_INTERVAL,default=10m" validate:"gt=0"`
	GCDiscardRatio   float64       `env:"BADGER_GC_RATIO,default=0.5" validate:"gt=0,lt=1"`
	// Follow-up tokens live 15 minutes, the default stays below.
	OffloadTimeout time.Duration `env:"OFFLOAD_TIMEOUT,default=14m" validate:"gt=0"`

	RestRateLimit   float64       `env:"REST_RATE_LIMIT,default=40" validate:"gt=0"`
	RestBurst       int           `env:"REST_BURST,default=10" validate:"min=1"`
	SignatureMaxAge time.Duration `env:"SIGNATURE_MAX_AGE,default=5m" validate:"min=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=30s" validate:"gt=0"`
	RequestMaxBytes int64         `env:"REQUEST_MAX_BYTES,default=1048576" validate:"min=1024"`

	// When set, the announcement view is posted there at start-up.
	AnnounceChannelID string `env:"ANNOUNCE_CHANNEL_ID" validate:"omitempty,numeric"`
	AnnounceTopic     string `env:"ANNOUNCE_TOPIC,default=Back online" validate:"max=40"`

	DebugPort int `env:"DEBUG_PORT,default=8081" validate:"min=1,max=65535"`
}

// Verbose tells whether error details may be shown to end users.
func (c Config) Verbose() bool {
	return c.Environment != EnvironmentProduction
}

// LoadConfig reads the configuration from the environment and validates it.
func LoadConfig() (Config, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}
