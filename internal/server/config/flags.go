package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/userservice/internal/flagx"
)

var serverFlags = []string{
	"-a", "-g", "-d", "-s", "-t", "-r",
	"-storage", "-media-root", "-media-url",
	"-s3-bucket", "-s3-region", "-s3-endpoint", "-s3-access-key", "-s3-secret-key", "-s3-public-url",
	"-image-size", "-image-quality", "-cors", "-rate", "-burst", "-log-level",
}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-storage string, -media-root string, -media-url string
//	-s3-bucket, -s3-region, -s3-endpoint, -s3-access-key, -s3-secret-key, -s3-public-url string
//	-image-size int, -image-quality int
//	-cors string  comma separated origins
//	-rate float, -burst int
//	-log-level string
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.GRPCHealthAddr, "g", config.GRPCHealthAddr, "address and port of the grpc health endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.StorageBackend, "storage", config.StorageBackend, "storage backend: local, s3 or minio")
	fs.StringVar(&config.MediaRoot, "media-root", config.MediaRoot, "directory of the local storage backend")
	fs.StringVar(&config.MediaURL, "media-url", config.MediaURL, "url prefix of locally stored media")
	fs.StringVar(&config.S3Bucket, "s3-bucket", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "s3-region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3Endpoint, "s3-endpoint", config.S3Endpoint, "S3 endpoint")
	fs.StringVar(&config.S3AccessKey, "s3-access-key", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "s3-secret-key", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3PublicURL, "s3-public-url", config.S3PublicURL, "public url of the bucket")

	fs.IntVar(&config.ImageSize, "image-size", config.ImageSize, "profile picture edge in pixels")
	fs.IntVar(&config.ImageQuality, "image-quality", config.ImageQuality, "profile picture jpeg quality")

	cors := fs.String("cors", strings.Join(config.CORSOrigins, ","), "allowed CORS origins, comma separated")
	fs.Float64Var(&config.RateLimit, "rate", config.RateLimit, "registration and login requests per second per client")
	fs.IntVar(&config.RateBurst, "burst", config.RateBurst, "registration and login burst per client")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// minute based flags would truncate sub-minute values from JSON, so only
	// explicitly given ones are applied
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
		case "cors":
			config.CORSOrigins = splitList(*cors)
		}
	})
}

func splitList(s string) []string {
	var res []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			res = append(res, p)
		}
	}
	return res
}
