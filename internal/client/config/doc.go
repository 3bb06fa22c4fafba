// Package config loads runtime configuration for the legaltrack CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c, -config or --config. The
//     extension picks the decoder: .json, .yaml/.yml or .toml.
//  3. Environment variables prefixed with LEGALTRACK_. A .env file in the
//     working directory is loaded first; real environment variables win
//     over it.
//  4. Command-line flags bound with BindFlags.
//
// Durations in files can be strings like "3s" or integer nanoseconds (JSON
// only); in the environment they use time.ParseDuration syntax.
//
//	{
//	  "base_url": "https://arbitr.kazna.tech",
//	  "online_check_interval": "5s",
//	  "prefetch_concurrency": 3
//	}
package config
