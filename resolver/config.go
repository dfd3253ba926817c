package resolver

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds the resolver server settings, read from the environment
type Config struct {
	ListenAddr string `env:"RESOLVER_LISTEN_ADDR" envDefault:":5000"`
	// VsockPort selects a vsock listener instead of TCP when non-zero
	VsockPort      uint32        `env:"RESOLVER_VSOCK_PORT"      envDefault:"0"`
	MaxWorkers     int           `env:"RESOLVER_MAX_WORKERS"     envDefault:"8"   validate:"min=1,max=1024"`
	ReadTimeout    time.Duration `env:"RESOLVER_READ_TIMEOUT"    envDefault:"30s" validate:"gt=0"`
	SigningKeyPath string        `env:"RESOLVER_SIGNING_KEY"` // empty = ephemeral key
	LogDevelopment bool          `env:"RESOLVER_LOG_DEVELOPMENT" envDefault:"false"`
}

// LoadConfig reads an optional .env file, then the environment, then validates.
func LoadConfig() (*Config, error) {
	err := godotenv.Load(".env")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		zap.L().Warn("dotenv_load_failed", zap.Error(err))
	} else if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	validate := validator.New()
	if err = validate.Struct(cfg); err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
