package config

import (
	"flag"
	"io"
	"time"

	"github.com/Batajoo/youtube-backend-clone/internal/flagx"
	"github.com/Batajoo/youtube-backend-clone/internal/timex"
)

var knownFlags = []string{
	"-a", "-g", "-d", "-s", "-t", "-k", "-r",
	"-u", "-p", "-b", "-n", "-e", "-m", "-l", "-cookie-secure",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string    HTTP bind address (e.g. ":8000")
//	-g string    gRPC bind address (e.g. ":50051")
//	-d string    PostgreSQL DSN ("" selects the in-memory store)
//	-s string    access token secret
//	-t duration  access token validity (e.g. "15m")
//	-k string    refresh token secret
//	-r duration  refresh token validity (e.g. "10d")
//	-u string    S3 root user
//	-p string    S3 root password
//	-b string    S3 bucket name
//	-n string    S3 region
//	-e string    S3 base endpoint (e.g. "http://127.0.0.1:9000/")
//	-m string    public base URL of stored media
//	-l string    log level
//	-cookie-secure bool  mark auth cookies Secure
//
// Unknown flags are filtered out first with flagx.FilterArgs so other
// components may define their own.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AccessTokenSecret, "s", config.AccessTokenSecret, "access token secret")
	fs.Func("t", "access token validity", durationFlag(&config.AccessTokenValidityDuration))
	fs.StringVar(&config.RefreshTokenSecret, "k", config.RefreshTokenSecret, "refresh token secret")
	fs.Func("r", "refresh token validity", durationFlag(&config.RefreshTokenValidityDuration))
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "n", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicBaseURL, "m", config.S3PublicBaseURL, "public media base URL")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.CookieSecure, "cookie-secure", config.CookieSecure, "mark auth cookies Secure")

	return fs.Parse(flagx.FilterArgs(args, knownFlags))
}

func durationFlag(dst *time.Duration) func(string) error {
	return func(s string) error {
		d, err := timex.ParseDuration(s)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}
