// Package config handles configuration file parsing and validation for cdnsift.
//
// This package reads YAML configuration files and provides strongly-typed
// structures for accessing configuration data. On first run it materializes
// a default configuration with a curated list of CDN provider endpoints.
//
// # Configuration Structure
//
// The configuration file defines:
//   - Providers: URLs whose response bodies are scanned for CIDR ranges
//   - Interval: maximum CIDR cache age, in seconds, before a refresh
//   - Resolver: optional DNS server override (IP or IP:port)
//   - OutputFormat: optional template applied to every emitted line
//
// # Supported Features
//
//   - YAML format with lenient Interval handling (bad values fall back
//     to the two-day default instead of failing the load)
//   - Validation that reports every problem at once
//   - Per-user state under ~/.config/cdnsift (config and CIDR cache
//     side by side)
//
// # Example Usage
//
// Loading and validating a configuration file:
//
//	cfg, err := config.LoadConfig(path)
//	if err != nil {
//	    log.Fatalf("%v", err)
//	}
//	if err := cfg.ValidateConfig(); err != nil {
//	    log.Fatalf("%v", err)
//	}
//
// Locating the CIDR cache that belongs to a config:
//
//	cachePath := cfg.CacheFile()
//
// The cache file always lives next to the config file, so pointing the tool
// at an alternate config also relocates its cache.
package config
