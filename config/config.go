package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is read, if present, before the environment is decoded
const DefaultEnvFile = ".env"

// Server configures the authority server
type Server struct {
	Addr           string   `env:"SEASHOOTER_ADDR,default=:8000"`
	AllowedOrigins []string `env:"SEASHOOTER_ALLOWED_ORIGINS"`
	Debug          bool     `env:"SEASHOOTER_DEBUG,default=false"`
}

// Client configures the terminal client
type Client struct {
	ServerURL  string        `env:"SERVER_URL,default=ws://localhost:8000/ws"`
	AckTimeout time.Duration `env:"SEASHOOTER_ACK_TIMEOUT,default=10s"`
	Debug      bool          `env:"SEASHOOTER_DEBUG,default=false"`
}

// LoadServer reads the server configuration from the environment, after
// loading any of the given env files that exist.
func LoadServer(envFiles ...string) (Server, error) {
	var cfg Server
	if err := load(&cfg, envFiles); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// LoadClient reads the client configuration the same way as LoadServer
func LoadClient(envFiles ...string) (Client, error) {
	var cfg Client
	if err := load(&cfg, envFiles); err != nil {
		return Client{}, err
	}
	if cfg.AckTimeout <= 0 {
		return Client{}, fmt.Errorf("SEASHOOTER_ACK_TIMEOUT must be positive, got %s", cfg.AckTimeout)
	}
	return cfg, nil
}

func load(target interface{}, envFiles []string) error {
	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}

	for _, f := range envFiles {
		// existing variables win over the file
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	err := envdecode.Decode(target)
	if err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("decode environment: %w", err)
	}
	return nil
}
