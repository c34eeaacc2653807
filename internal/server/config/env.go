package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Batajoo/youtube-backend-clone/internal/timex"
)

// parseEnv overlays values from environment variables. The token variables
// keep the names the deployment has always used.
//
//	HTTP_ADDR, GRPC_ADDR, DATABASE_DSN
//	ACCESS_TOKEN_SECRET_KEY, ACCESS_TOKEN_EXPIRY
//	REFRESH_TOKEN_SECRET_KEY, REFRESH_TOKEN_EXPIRY
//	BCRYPT_COST, COOKIE_SECURE, REQUEST_TIMEOUT, SHUTDOWN_TIMEOUT, MAX_UPLOAD_BYTES
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT, S3_PUBLIC_BASE_URL
//	LOG_LEVEL, LOG_FORMAT
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		d, err := timex.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("HTTP_ADDR", &config.HTTPAddr)
	str("GRPC_ADDR", &config.GRPCAddr)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("ACCESS_TOKEN_SECRET_KEY", &config.AccessTokenSecret)
	str("REFRESH_TOKEN_SECRET_KEY", &config.RefreshTokenSecret)
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	str("S3_PUBLIC_BASE_URL", &config.S3PublicBaseURL)
	str("LOG_LEVEL", &config.LogLevel)
	str("LOG_FORMAT", &config.LogFormat)

	for key, dst := range map[string]*time.Duration{
		"ACCESS_TOKEN_EXPIRY":  &config.AccessTokenValidityDuration,
		"REFRESH_TOKEN_EXPIRY": &config.RefreshTokenValidityDuration,
		"REQUEST_TIMEOUT":      &config.RequestTimeout,
		"SHUTDOWN_TIMEOUT":     &config.ShutdownTimeout,
	} {
		if err := dur(key, dst); err != nil {
			return err
		}
	}

	if v, ok := lookup("BCRYPT_COST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env BCRYPT_COST: %w", err)
		}
		config.BcryptCost = n
	}
	if v, ok := lookup("COOKIE_SECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("env COOKIE_SECURE: %w", err)
		}
		config.CookieSecure = b
	}
	if v, ok := lookup("MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("env MAX_UPLOAD_BYTES: %w", err)
		}
		config.MaxUploadBytes = n
	}
	return nil
}
