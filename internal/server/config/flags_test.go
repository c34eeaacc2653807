package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		check   func(t *testing.T, c *Config)
		wantErr bool
	}{
		{
			name: "all values",
			args: []string{
				"-a", "127.0.0.1:9090", "-g", ":6000", "-d", "db", "-s", "secret",
				"-t", "1m", "-k", "refresh", "-r", "3d", "-u", "user", "-p", "password",
				"-b", "bucket", "-n", "us-west-1", "-e", "http://endpoint", "-m", "http://cdn",
				"-l", "debug", "-cookie-secure=false",
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "127.0.0.1:9090", c.HTTPAddr)
				assert.Equal(t, ":6000", c.GRPCAddr)
				assert.Equal(t, "db", c.DatabaseDSN)
				assert.Equal(t, "secret", c.AccessTokenSecret)
				assert.Equal(t, time.Minute, c.AccessTokenValidityDuration)
				assert.Equal(t, "refresh", c.RefreshTokenSecret)
				assert.Equal(t, 72*time.Hour, c.RefreshTokenValidityDuration)
				assert.Equal(t, "user", c.S3RootUser)
				assert.Equal(t, "password", c.S3RootPassword)
				assert.Equal(t, "bucket", c.S3Bucket)
				assert.Equal(t, "us-west-1", c.S3Region)
				assert.Equal(t, "http://endpoint", c.S3BaseEndpoint)
				assert.Equal(t, "http://cdn", c.S3PublicBaseURL)
				assert.Equal(t, "debug", c.LogLevel)
				assert.False(t, c.CookieSecure)
			},
		},
		{
			name: "unknown flags ignored",
			args: []string{"-x", "1", "-a", ":1", "--test.v"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, ":1", c.HTTPAddr)
			},
		},
		{
			name:    "bad duration",
			args:    []string{"-t", "forever"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			err := parseFlags(&c, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, &c)
		})
	}
}
