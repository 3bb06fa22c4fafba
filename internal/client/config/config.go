package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/legaltrack/internal/flagx"
)

// Probe modes for the connectivity observer.
const (
	ProbeHTTP = "http"
	ProbeGRPC = "grpc"
)

// Config holds runtime settings for the legaltrack CLI.
//
// Units: every interval and timeout is a time.Duration.
type Config struct {
	BaseURL string
	Token   string

	DatabasePath string
	DocumentsDir string

	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	ProbeTimeout        time.Duration
	ProbeMode           string
	GRPCHealthAddr      string

	PrefetchConcurrency int

	LogLevel    string
	LogFormat   string
	MetricsAddr string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// LoadDefaults populates c with sensible defaults. Local paths live under
// the user config directory when it can be resolved.
func (c *Config) LoadDefaults() {
	base := "."
	if dir, err := os.UserConfigDir(); err == nil {
		base = filepath.Join(dir, "legaltrack")
	}

	c.BaseURL = "https://arbitr.kazna.tech"
	c.DatabasePath = filepath.Join(base, "legaltrack.db")
	c.DocumentsDir = filepath.Join(base, "documents")
	c.RequestTimeout = 30 * time.Second
	c.OnlineCheckInterval = 5 * time.Second
	c.ProbeTimeout = 3 * time.Second
	c.ProbeMode = ProbeHTTP
	c.PrefetchConcurrency = 3
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.S3Region = "us-east-1"
}

// UsesS3 reports whether documents go to object storage instead of
// DocumentsDir.
func (c *Config) UsesS3() bool {
	return c.S3Bucket != ""
}

// Validate rejects settings the rest of the client cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("base url is empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is empty")
	}
	switch c.ProbeMode {
	case ProbeHTTP:
	case ProbeGRPC:
		if c.GRPCHealthAddr == "" {
			return fmt.Errorf("probe mode %q needs a grpc health address", c.ProbeMode)
		}
	default:
		return fmt.Errorf("unknown probe mode %q", c.ProbeMode)
	}
	if c.PrefetchConcurrency < 1 {
		return fmt.Errorf("prefetch concurrency must be positive, got %d", c.PrefetchConcurrency)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays the config
// file named in args (if any) and the environment. Flags are applied later
// by the command tree through BindFlags.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigFileFlagFrom(args); path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}
