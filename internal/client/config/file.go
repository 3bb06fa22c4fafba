package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/legaltrack/internal/timex"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used only for decoding config files. Empty values
// leave the current setting untouched.
type FileConfig struct {
	BaseURL             string         `json:"base_url" yaml:"base_url" toml:"base_url"`
	Token               string         `json:"token" yaml:"token" toml:"token"`
	DatabasePath        string         `json:"database_path" yaml:"database_path" toml:"database_path"`
	DocumentsDir        string         `json:"documents_dir" yaml:"documents_dir" toml:"documents_dir"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval" toml:"online_check_interval"`
	ProbeTimeout        timex.Duration `json:"probe_timeout" yaml:"probe_timeout" toml:"probe_timeout"`
	ProbeMode           string         `json:"probe_mode" yaml:"probe_mode" toml:"probe_mode"`
	GRPCHealthAddr      string         `json:"grpc_health_addr" yaml:"grpc_health_addr" toml:"grpc_health_addr"`
	PrefetchConcurrency int            `json:"prefetch_concurrency" yaml:"prefetch_concurrency" toml:"prefetch_concurrency"`
	LogLevel            string         `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat           string         `json:"log_format" yaml:"log_format" toml:"log_format"`
	MetricsAddr         string         `json:"metrics_addr" yaml:"metrics_addr" toml:"metrics_addr"`
	S3Bucket            string         `json:"s3_bucket" yaml:"s3_bucket" toml:"s3_bucket"`
	S3Region            string         `json:"s3_region" yaml:"s3_region" toml:"s3_region"`
	S3Endpoint          string         `json:"s3_endpoint" yaml:"s3_endpoint" toml:"s3_endpoint"`
	S3AccessKey         string         `json:"s3_access_key" yaml:"s3_access_key" toml:"s3_access_key"`
	S3SecretKey         string         `json:"s3_secret_key" yaml:"s3_secret_key" toml:"s3_secret_key"`
}

func decodeFile(path string, data []byte, fc *FileConfig) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return json.Unmarshal(data, fc)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, fc)
	case ".toml":
		return toml.Unmarshal(data, fc)
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
}

// parseFile overlays cfg with the values found in the file at path.
func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	if err := decodeFile(path, data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.BaseURL, fc.BaseURL)
	setString(&cfg.Token, fc.Token)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.DocumentsDir, fc.DocumentsDir)
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.ProbeTimeout.Duration > 0 {
		cfg.ProbeTimeout = fc.ProbeTimeout.Duration
	}
	setString(&cfg.ProbeMode, fc.ProbeMode)
	setString(&cfg.GRPCHealthAddr, fc.GRPCHealthAddr)
	if fc.PrefetchConcurrency > 0 {
		cfg.PrefetchConcurrency = fc.PrefetchConcurrency
	}
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.MetricsAddr, fc.MetricsAddr)
	setString(&cfg.S3Bucket, fc.S3Bucket)
	setString(&cfg.S3Region, fc.S3Region)
	setString(&cfg.S3Endpoint, fc.S3Endpoint)
	setString(&cfg.S3AccessKey, fc.S3AccessKey)
	setString(&cfg.S3SecretKey, fc.S3SecretKey)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
