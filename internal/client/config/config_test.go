package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "https://arbitr.kazna.tech", c.BaseURL)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Equal(t, 5*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, ProbeHTTP, c.ProbeMode)
	assert.Equal(t, 3, c.PrefetchConcurrency)
	assert.Equal(t, "legaltrack.db", filepath.Base(c.DatabasePath))
	assert.False(t, c.UsesS3())
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty base url", mutate: func(c *Config) { c.BaseURL = " " }, wantErr: true},
		{name: "unknown probe", mutate: func(c *Config) { c.ProbeMode = "icmp" }, wantErr: true},
		{name: "grpc without address", mutate: func(c *Config) { c.ProbeMode = ProbeGRPC }, wantErr: true},
		{name: "grpc with address", mutate: func(c *Config) { c.ProbeMode, c.GRPCHealthAddr = ProbeGRPC, "127.0.0.1:50051" }},
		{name: "zero concurrency", mutate: func(c *Config) { c.PrefetchConcurrency = 0 }, wantErr: true},
		{name: "zero interval", mutate: func(c *Config) { c.OnlineCheckInterval = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			if tt.wantErr {
				assert.Error(t, c.Validate())
			} else {
				assert.NoError(t, c.Validate())
			}
		})
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseFile_Formats(t *testing.T) {
	want := func() Config {
		var c Config
		c.LoadDefaults()
		c.BaseURL = "https://staging.example"
		c.OnlineCheckInterval = 10 * time.Second
		c.PrefetchConcurrency = 5
		c.S3Bucket = "docs"
		return c
	}()

	tests := []struct {
		name string
		file string
		body string
	}{
		{name: "json", file: "cfg.json", body: `{
			"base_url": "https://staging.example",
			"online_check_interval": "10s",
			"prefetch_concurrency": 5,
			"s3_bucket": "docs"
		}`},
		{name: "yaml", file: "cfg.yaml", body: "base_url: https://staging.example\n" +
			"online_check_interval: 10s\nprefetch_concurrency: 5\ns3_bucket: docs\n"},
		{name: "toml", file: "cfg.toml", body: "base_url = \"https://staging.example\"\n" +
			"online_check_interval = \"10s\"\nprefetch_concurrency = 5\ns3_bucket = \"docs\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			require.NoError(t, parseFile(&c, writeFile(t, tt.file, tt.body)))
			assert.Empty(t, cmp.Diff(want, c))
		})
	}
}

func TestParseFile_Errors(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Error(t, parseFile(&c, filepath.Join(t.TempDir(), "missing.json")))
	assert.Error(t, parseFile(&c, writeFile(t, "bad.json", `{ this is not valid json`)))
	assert.Error(t, parseFile(&c, writeFile(t, "cfg.ini", "base_url=x")))
}

func TestParseEnv(t *testing.T) {
	env := map[string]string{
		"LEGALTRACK_BASE_URL":              "https://env.example",
		"LEGALTRACK_TOKEN":                 "t0k",
		"LEGALTRACK_ONLINE_CHECK_INTERVAL": "1m",
		"LEGALTRACK_PREFETCH_CONCURRENCY":  "2",
		"LEGALTRACK_LOG_LEVEL":             "",
		"BASE_URL":                         "ignored",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	var c Config
	c.LoadDefaults()
	require.NoError(t, parseEnv(&c, lookup))

	assert.Equal(t, "https://env.example", c.BaseURL)
	assert.Equal(t, "t0k", c.Token)
	assert.Equal(t, time.Minute, c.OnlineCheckInterval)
	assert.Equal(t, 2, c.PrefetchConcurrency)
	assert.Equal(t, "info", c.LogLevel)
}

func TestParseEnv_BadValues(t *testing.T) {
	for _, kv := range [][2]string{
		{"LEGALTRACK_REQUEST_TIMEOUT", "soon"},
		{"LEGALTRACK_PREFETCH_CONCURRENCY", "three"},
	} {
		t.Run(kv[0], func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			lookup := func(k string) (string, bool) {
				if k == kv[0] {
					return kv[1], true
				}
				return "", false
			}
			assert.Error(t, parseEnv(&c, lookup))
		})
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := writeFile(t, "cfg.yaml", "base_url: https://file.example\nlog_level: debug\ndatabase_path: /tmp/file.db\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEGALTRACK_LOG_LEVEL=warn\n"), 0o600))
	t.Setenv("LEGALTRACK_BASE_URL", "https://env.example")
	t.Cleanup(func() { _ = os.Unsetenv("LEGALTRACK_LOG_LEVEL") })

	cfg, err := LoadConfig([]string{"-c", path, "cases"})
	require.NoError(t, err)

	// файл < .env < окружение
	assert.Equal(t, "https://env.example", cfg.BaseURL)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/tmp/file.db", cfg.DatabasePath)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, cfg)
	require.NoError(t, fs.Parse([]string{"-c", path, "--base-url", "https://flag.example", "-i", "7s"}))

	assert.Equal(t, "https://flag.example", cfg.BaseURL)
	assert.Equal(t, 7*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfig_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig([]string{"cases"})
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 3, cfg.PrefetchConcurrency)
}
