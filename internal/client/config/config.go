package config

import "time"

// Config holds runtime settings of the CMS client and admin console.
//
// Fields:
//   - APIBaseURL: table API root; auth and storage live under its root.
//   - SessionDBPath: SQLite file that keeps the signed-in session.
//   - RequestTimeout: per-request HTTP timeout.
type Config struct {
	APIBaseURL     string
	SessionDBPath  string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with local development defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5000/api"
	c.SessionDBPath = "session.db"
	c.RequestTimeout = 15 * time.Second
}

// LoadConfig applies defaults, then the environment, then a JSON file and
// finally command-line flags. Later sources take precedence.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	parseJson(cfg)
	parseFlags(cfg)
	return cfg, nil
}
