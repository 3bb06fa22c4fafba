package config

import "github.com/spf13/pflag"

// BindFlags registers the global flags on fs with the current values of cfg
// as defaults, so a parsed flag overrides every earlier source.
//
// The config file flag is registered here only for help output; the file
// itself is read by LoadConfig before the command tree parses flags.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	var file string
	fs.StringVarP(&file, "config", "c", "", "path to config file (.json, .yaml, .toml)")

	fs.StringVarP(&cfg.BaseURL, "base-url", "u", cfg.BaseURL, "backend base URL")
	fs.StringVar(&cfg.Token, "token", cfg.Token, "API token (prefer LEGALTRACK_TOKEN or the login prompt)")
	fs.StringVarP(&cfg.DatabasePath, "db", "d", cfg.DatabasePath, "path to the local cache database")
	fs.StringVar(&cfg.DocumentsDir, "documents-dir", cfg.DocumentsDir, "directory for downloaded documents")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-request timeout")
	fs.DurationVarP(&cfg.OnlineCheckInterval, "check-interval", "i", cfg.OnlineCheckInterval, "connectivity check interval")
	fs.DurationVar(&cfg.ProbeTimeout, "probe-timeout", cfg.ProbeTimeout, "connectivity probe timeout")
	fs.StringVar(&cfg.ProbeMode, "probe", cfg.ProbeMode, "connectivity probe: http or grpc")
	fs.StringVar(&cfg.GRPCHealthAddr, "grpc-health-addr", cfg.GRPCHealthAddr, "host:port of a gRPC health endpoint")
	fs.IntVar(&cfg.PrefetchConcurrency, "prefetch-concurrency", cfg.PrefetchConcurrency, "parallel case detail downloads")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve /metrics on this address (watch only)")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "store documents in this S3 bucket")
	fs.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3Endpoint, "s3-endpoint", cfg.S3Endpoint, "S3-compatible endpoint")
}
