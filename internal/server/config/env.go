package config

import (
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key, e.g. SCHOOL_HTTP_ADDR.
const EnvPrefix = "SCHOOL"

// parseEnv overlays cfg with SCHOOL_* variables. Unset or empty variables
// leave the current value. Durations take Go syntax ("15m"); an invalid
// value panics, as the other layers do.
func parseEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	setString(v, "http_addr", &cfg.HTTPAddr)
	setString(v, "database_dsn", &cfg.DatabaseDSN)
	setString(v, "secret_key", &cfg.SecretKey)
	setDuration(v, "access_token_validity_duration", &cfg.AccessTokenValidityDuration)
	setString(v, "s3_root_user", &cfg.S3RootUser)
	setString(v, "s3_root_password", &cfg.S3RootPassword)
	setString(v, "s3_bucket", &cfg.S3Bucket)
	setString(v, "s3_region", &cfg.S3Region)
	setString(v, "s3_base_endpoint", &cfg.S3BaseEndpoint)
	setString(v, "cors_origin", &cfg.CORSOrigin)
	if v.GetString("auth_rate_limit_per_minute") != "" {
		cfg.AuthRateLimitPerMinute = v.GetInt("auth_rate_limit_per_minute")
	}
	setDuration(v, "public_url_cache_ttl", &cfg.PublicURLCacheTTL)
	if v.GetString("max_upload_bytes") != "" {
		cfg.MaxUploadBytes = v.GetInt64("max_upload_bytes")
	}
}

func setString(v *viper.Viper, key string, dst *string) {
	if s := v.GetString(key); s != "" {
		*dst = s
	}
}

func setDuration(v *viper.Viper, key string, dst *time.Duration) {
	s := v.GetString(key)
	if s == "" {
		return
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}
	*dst = d
}
