package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// dotEnvFiles are read before the environment is consulted. Variables that
// are already set are not overridden.
var dotEnvFiles = []string{".env"}

// parseEnv overlays config with environment variables. Malformed numbers,
// booleans or durations panic, like a broken JSON file does.
//
//	HTTP_ADDR, GRPC_HEALTH_ADDR, DATABASE_DSN, SECRET_KEY,
//	ACCESS_TOKEN_TTL, REFRESH_TOKEN_TTL, SHUTDOWN_TIMEOUT (Go durations),
//	STORAGE_BACKEND, MEDIA_ROOT, MEDIA_URL,
//	S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET, S3_REGION, S3_ENDPOINT, S3_USE_SSL, S3_PUBLIC_URL,
//	IMAGE_SIZE, IMAGE_QUALITY, CORS_ORIGINS (comma separated), RATE_LIMIT, RATE_BURST, LOG_LEVEL
func parseEnv(config *Config) {
	for _, f := range dotEnvFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				panic(fmt.Errorf("load %s: %w", f, err))
			}
		}
	}

	envString("HTTP_ADDR", &config.HTTPAddr)
	envString("GRPC_HEALTH_ADDR", &config.GRPCHealthAddr)
	envString("DATABASE_DSN", &config.DatabaseDSN)
	envString("SECRET_KEY", &config.SecretKey)
	envParsed("ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration, time.ParseDuration)
	envParsed("REFRESH_TOKEN_TTL", &config.RefreshTokenValidityDuration, time.ParseDuration)
	envParsed("SHUTDOWN_TIMEOUT", &config.ShutdownTimeout, time.ParseDuration)

	envString("STORAGE_BACKEND", &config.StorageBackend)
	envString("MEDIA_ROOT", &config.MediaRoot)
	envString("MEDIA_URL", &config.MediaURL)
	envString("S3_ACCESS_KEY", &config.S3AccessKey)
	envString("S3_SECRET_KEY", &config.S3SecretKey)
	envString("S3_BUCKET", &config.S3Bucket)
	envString("S3_REGION", &config.S3Region)
	envString("S3_ENDPOINT", &config.S3Endpoint)
	envParsed("S3_USE_SSL", &config.S3UseSSL, strconv.ParseBool)
	envString("S3_PUBLIC_URL", &config.S3PublicURL)

	envParsed("IMAGE_SIZE", &config.ImageSize, strconv.Atoi)
	envParsed("IMAGE_QUALITY", &config.ImageQuality, strconv.Atoi)

	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		config.CORSOrigins = splitList(v)
	}
	envParsed("RATE_LIMIT", &config.RateLimit, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
	envParsed("RATE_BURST", &config.RateBurst, strconv.Atoi)
	envString("LOG_LEVEL", &config.LogLevel)
}

func envString(name string, dst *string) {
	if v, ok := os.LookupEnv(name); ok {
		*dst = v
	}
}

func envParsed[T any](name string, dst *T, parse func(string) (T, error)) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return
	}
	parsed, err := parse(v)
	if err != nil {
		panic(fmt.Errorf("invalid %s: %w", name, err))
	}
	*dst = parsed
}
