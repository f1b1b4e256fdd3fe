package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/EdProwise/beawar-school-sub001/internal/flagx"
	"github.com/EdProwise/beawar-school-sub001/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON overlay. Durations accept
// both strings such as "15m" and integer nanoseconds.
type JsonConfig struct {
	HTTPAddr                    string         `json:"http_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	CORSOrigin                  string         `json:"cors_origin"`
	AuthRateLimitPerMinute      int            `json:"auth_rate_limit_per_minute"`
	PublicURLCacheTTL           timex.Duration `json:"public_url_cache_ttl"`
	MaxUploadBytes              int64          `json:"max_upload_bytes"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// non-zero field into config. An unreadable or invalid file panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	overlay(&config.HTTPAddr, c.HTTPAddr)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.AccessTokenValidityDuration, time.Duration(c.AccessTokenValidityDuration.Duration))
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlay(&config.CORSOrigin, c.CORSOrigin)
	overlay(&config.AuthRateLimitPerMinute, c.AuthRateLimitPerMinute)
	overlay(&config.PublicURLCacheTTL, time.Duration(c.PublicURLCacheTTL.Duration))
	overlay(&config.MaxUploadBytes, c.MaxUploadBytes)
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
