package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, "/api/auth", cfg.AuthPath())
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.MaxLifetime)
	assert.Equal(t, 2*time.Second, cfg.Session.StoreTimeout)
	assert.False(t, cfg.Secure())
	require.NoError(t, cfg.Validate())
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ENV", EnvProduction)
	v.Set("API_PREFIX", "/internal/")
	v.Set("ACCESS_TOKEN_TTL", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := fromViper(v)
	assert.True(t, cfg.Secure())
	assert.Equal(t, "/internal/auth", cfg.AuthPath())
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestValidateRejectsSharedSecrets(t *testing.T) {
	cfg := &Config{JWT: JWTConfig{AccessSecret: "same", RefreshSecret: "same"}}
	assert.Error(t, cfg.Validate())

	cfg.JWT.RefreshSecret = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsDevSecretsInProduction(t *testing.T) {
	cfg := &Config{Env: EnvProduction, JWT: JWTConfig{AccessSecret: "dev_access_secret", RefreshSecret: "prod-refresh"}}
	assert.Error(t, cfg.Validate())

	cfg.JWT.AccessSecret = "prod-access"
	assert.NoError(t, cfg.Validate())
}
