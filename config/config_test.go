package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.Equal(t, "4000", cfg.Port, "port falls back to 4000")
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "")

	_, err = Load()
	assert.Error(t, err)
}
