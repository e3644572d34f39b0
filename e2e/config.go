package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SERVER_URL is the full interactions endpoint, the suite is skipped when empty
	ServerURL  string `envconfig:"E2E_SERVER_URL"`
	HealthAddr string `envconfig:"E2E_HEALTH_ADDR"`
	// E2E_PRIVATE_KEY is the hex ed25519 seed matching the server PUBLIC_KEY
	PrivateKey string `envconfig:"E2E_PRIVATE_KEY"`
	// E2E_DEBUG_JSON allows dumping full request/response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
