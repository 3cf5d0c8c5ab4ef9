package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://hub.cresol.com.br, http://localhost:3000 ,")
	t.Setenv("CACHE_TTL", "not-a-duration")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co/")
	t.Setenv("SUPABASE_JWT_SECRET", "")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://hub.cresol.com.br", "http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "https://project.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, "cresol.com.br", cfg.CorporateEmailDomain)
	assert.Equal(t, "sb-access-token", cfg.AuthCookieName)
	assert.True(t, cfg.RemoteAuth())
}

func TestParseStringSliceEmpty(t *testing.T) {
	assert.Empty(t, parseStringSlice(""))
	assert.Empty(t, parseStringSlice(" , "))
}

func TestS3UsesStorageSettings(t *testing.T) {
	t.Setenv("STORAGE_ENDPOINT", "https://project.supabase.co/storage/v1/s3")
	t.Setenv("STORAGE_PUBLIC_URL", "https://project.supabase.co/storage/v1/object/public/")

	s3 := Load().S3()

	assert.Equal(t, "https://project.supabase.co/storage/v1/s3", s3.Endpoint)
	assert.Equal(t, "https://project.supabase.co/storage/v1/object/public", s3.PublicURL)
	assert.Equal(t, "us-east-1", s3.Region)
}
