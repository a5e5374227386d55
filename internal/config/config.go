package config

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string `yaml:"log-level" env:"TRIS_LOG_LEVEL" env-default:"info"`
	TCPPort  string `yaml:"tcp-port" env:"TRIS_TCP_PORT" env-default:"3000"`
	HTTPPort string `yaml:"http-port" env:"TRIS_HTTP_PORT" env-default:"9090"`
	Redis    Redis  `yaml:"redis" env-prefix:"TRIS_REDIS_"`
}

// Redis - optional event publishing. An empty host turns it off.
type Redis struct {
	Host    string `yaml:"host" env:"HOST" env-default:""`
	Port    string `yaml:"port" env:"PORT" env-default:"6379"`
	Channel string `yaml:"channel" env:"CHANNEL" env-default:"tris:matches"`
}

// Load - reads the YAML file at path and applies environment overrides.
// A missing file leaves defaults and environment only.
func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		err = cleanenv.ReadEnv(config)
	case err == nil:
		err = cleanenv.ReadConfig(path, config)
	}

	if err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

// MustLoad - like Load, panics on error.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Config) GetTCPAddr() string {
	return ":" + that.TCPPort
}

// GetRedisAddr - host:port, or an empty string when publishing is disabled.
func (that *Redis) GetRedisAddr() string {
	if that.Host == "" {
		return ""
	}

	return net.JoinHostPort(that.Host, that.Port)
}
