package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment variables read by parseEnv.
const (
	EnvAPIURL         = "API_URL"
	EnvSessionDB      = "SESSION_DB"
	EnvRequestTimeout = "REQUEST_TIMEOUT"
)

// dotEnvFile is loaded, if present, before the environment is read.
// Variables already set in the process win over the file.
var dotEnvFile = ".env"

// parseEnv overlays cfg with API_URL, SESSION_DB and REQUEST_TIMEOUT.
// Unset or empty variables leave the current value. REQUEST_TIMEOUT takes
// a Go duration such as "30s".
func parseEnv(cfg *Config) error {
	if _, err := os.Stat(dotEnvFile); err == nil {
		if err := godotenv.Load(dotEnvFile); err != nil {
			return fmt.Errorf("load %s: %w", dotEnvFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	if s := v.GetString(EnvAPIURL); s != "" {
		cfg.APIBaseURL = s
	}
	if s := v.GetString(EnvSessionDB); s != "" {
		cfg.SessionDBPath = s
	}
	if s := v.GetString(EnvRequestTimeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}
