package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/userservice/internal/flagx"
	"github.com/dmitrijs2005/userservice/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1s" and integer nanoseconds.
//
// Pointer fields distinguish "absent" from a zero value, so a partial file
// only overrides what it names.
type JsonConfig struct {
	HTTPAddr                     *string         `json:"http_addr"`
	GRPCHealthAddr               *string         `json:"grpc_health_addr"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	ShutdownTimeout              *timex.Duration `json:"shutdown_timeout"`

	StorageBackend *string `json:"storage_backend"`
	MediaRoot      *string `json:"media_root"`
	MediaURL       *string `json:"media_url"`
	S3AccessKey    *string `json:"s3_access_key"`
	S3SecretKey    *string `json:"s3_secret_key"`
	S3Bucket       *string `json:"s3_bucket"`
	S3Region       *string `json:"s3_region"`
	S3Endpoint     *string `json:"s3_endpoint"`
	S3UseSSL       *bool   `json:"s3_use_ssl"`
	S3PublicURL    *string `json:"s3_public_url"`

	ImageSize    *int `json:"image_size"`
	ImageQuality *int `json:"image_quality"`

	CORSOrigins []string `json:"cors_origins"`
	RateLimit   *float64 `json:"rate_limit"`
	RateBurst   *int     `json:"rate_burst"`
	LogLevel    *string  `json:"log_level"`
}

// parseJson loads configuration values from the JSON file named by the -c
// or -config flag into config. Without the flag nothing is loaded. An
// unreadable file or invalid JSON panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
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

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	set(&config.HTTPAddr, c.HTTPAddr)
	set(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}

	set(&config.StorageBackend, c.StorageBackend)
	set(&config.MediaRoot, c.MediaRoot)
	set(&config.MediaURL, c.MediaURL)
	set(&config.S3AccessKey, c.S3AccessKey)
	set(&config.S3SecretKey, c.S3SecretKey)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3Endpoint, c.S3Endpoint)
	set(&config.S3UseSSL, c.S3UseSSL)
	set(&config.S3PublicURL, c.S3PublicURL)

	set(&config.ImageSize, c.ImageSize)
	set(&config.ImageQuality, c.ImageQuality)

	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
	set(&config.RateLimit, c.RateLimit)
	set(&config.RateBurst, c.RateBurst)
	set(&config.LogLevel, c.LogLevel)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
