package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func envOf(kv map[string]string) func(string) string {
	return func(k string) string { return kv[k] }
}

func TestLoad_DefaultsNeedSecret(t *testing.T) {
	_, err := Load(nil, envOf(nil))
	require.Error(t, err)
	require.Contains(t, err.Error(), "jwt")

	cfg, err := Load(nil, envOf(map[string]string{"MM_JWT_SECRET": "s"}))
	require.NoError(t, err)
	require.Equal(t, ":5000", cfg.Addr)
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
	require.Equal(t, "postgres", cfg.Store.Type)
	require.Equal(t, "filesystem", cfg.Artifacts.Type)
	require.Empty(t, cfg.WorkDir)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mm.toml")
	body := `
addr = ":7000"
work_dir = "/var/tmp/mm"
jwt_secret = "from-file"
token_ttl = "1h"

[store]
type = "memory"

[artifacts]
type = "s3"
s3_bucket = "minutes"
s3_region = "eu-west-1"

[transcriber]
backend = "command"
command = ["whisper-json", "--model", "base"]

[limiter]
window = "10m"
max_fails = 3
block_for = "30m"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(
		[]string{"--config", path, "--addr", ":9000"},
		envOf(map[string]string{"MM_ADDR": ":8000", "MM_JWT_SECRET": "from-env"}),
	)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Addr, "flag beats env and file")
	require.Equal(t, "from-env", cfg.JWTSecret, "env beats file")
	require.Equal(t, time.Hour, cfg.TokenTTL)
	require.Equal(t, "memory", cfg.Store.Type)
	require.Equal(t, "minutes", cfg.Artifacts.S3Bucket)
	require.Equal(t, []string{"whisper-json", "--model", "base"}, cfg.Transcriber.Command)
	require.Equal(t, 3, cfg.Limiter.MaxFails)
	require.Equal(t, 30*time.Minute, cfg.Limiter.BlockFor)
	require.Equal(t, "ffmpeg", cfg.Denoise.FFmpegPath, "untouched defaults survive")
	require.Equal(t, "/var/tmp/mm", cfg.WorkDir)
}

func TestValidate_RejectsUnknownTypes(t *testing.T) {
	cfg := Default()
	cfg.JWTSecret = "s"
	cfg.Store.Type = "mongo"
	cfg.Artifacts.Type = "ftp"
	cfg.Transcriber.Backend = "local"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"unknown store type: mongo", "unknown artifacts type: ftp", "unknown transcriber backend: local"} {
		require.True(t, strings.Contains(err.Error(), want), "missing %q in %v", want, err)
	}
}

func TestValidate_TypeSpecificFields(t *testing.T) {
	cfg := Default()
	cfg.JWTSecret = "s"
	cfg.Store.DSN = ""
	cfg.Artifacts = ArtifactConfig{Type: "s3"}
	err := cfg.Validate()
	require.ErrorContains(t, err, "postgres store requires dsn")
	require.ErrorContains(t, err, "s3 artifacts require s3_bucket")
}

func TestReadFromFile_Missing(t *testing.T) {
	err := ReadFromFile(filepath.Join(t.TempDir(), "nope.toml"), Default())
	require.ErrorContains(t, err, "failed to open config file")
}
