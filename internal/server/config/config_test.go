package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8000", c.HTTPAddr)
	assert.Equal(t, ":50051", c.GRPCAddr)
	assert.Equal(t, 15*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 240*time.Hour, c.RefreshTokenValidityDuration)
	assert.Equal(t, 10, c.BcryptCost)
	assert.True(t, c.CookieSecure)
	assert.Equal(t, "media", c.S3Bucket)
	assert.NoError(t, c.Validate())
}

func TestLoad_DefaultsWithoutSources(t *testing.T) {
	c, err := Load(nil, noEnv)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, c)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	c, err := Load(nil, envMap(map[string]string{
		"ACCESS_TOKEN_SECRET_KEY":  "a",
		"ACCESS_TOKEN_EXPIRY":      "1d",
		"REFRESH_TOKEN_SECRET_KEY": "r",
		"REFRESH_TOKEN_EXPIRY":     "10d",
		"DATABASE_DSN":             "",
		"BCRYPT_COST":              "12",
		"COOKIE_SECURE":            "false",
		"MAX_UPLOAD_BYTES":         "2048",
	}))
	require.NoError(t, err)

	assert.Equal(t, "a", c.AccessTokenSecret)
	assert.Equal(t, 24*time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, "r", c.RefreshTokenSecret)
	assert.Equal(t, 240*time.Hour, c.RefreshTokenValidityDuration)
	assert.Empty(t, c.DatabaseDSN)
	assert.Equal(t, 12, c.BcryptCost)
	assert.False(t, c.CookieSecure)
	assert.Equal(t, int64(2048), c.MaxUploadBytes)
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "expiry", env: map[string]string{"ACCESS_TOKEN_EXPIRY": "soon"}},
		{name: "cost", env: map[string]string{"BCRYPT_COST": "ten"}},
		{name: "secure", env: map[string]string{"COOKIE_SECURE": "maybe"}},
		{name: "upload", env: map[string]string{"MAX_UPLOAD_BYTES": "big"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(nil, envMap(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{name: "defaults", mutate: func(c *Config) {}, ok: true},
		{name: "empty access secret", mutate: func(c *Config) { c.AccessTokenSecret = "" }},
		{name: "empty refresh secret", mutate: func(c *Config) { c.RefreshTokenSecret = "" }},
		{name: "same secrets", mutate: func(c *Config) { c.RefreshTokenSecret = c.AccessTokenSecret }},
		{name: "zero access ttl", mutate: func(c *Config) { c.AccessTokenValidityDuration = 0 }},
		{name: "zero refresh ttl", mutate: func(c *Config) { c.RefreshTokenValidityDuration = 0 }},
		{name: "access not shorter", mutate: func(c *Config) {
			c.AccessTokenValidityDuration = c.RefreshTokenValidityDuration
		}},
		{name: "bcrypt cost", mutate: func(c *Config) { c.BcryptCost = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
