package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cdnsift/cdnsift/src/internal/errors"
	"github.com/cdnsift/cdnsift/src/internal/log"
)

const (
	configDirName  = "cdnsift"
	configFileName = "config.yaml"
	cacheFileName  = "cidr.txt"
)

// defaultConfig is materialized on first run. It must stay parseable by
// LoadConfig.
const defaultConfig = `Providers:
    - https://api.fastly.com/public-ip-list
    - https://www.cloudflare.com/ips-v4
    - https://d7uri8nf7uskq.cloudfront.net/tools/list-cloudfront-ips
    - https://support.maxcdn.com/hc/en-us/article_attachments/360051920551/maxcdn_ips.txt
    - https://cachefly.cachefly.net/ips/rproxy.txt
    - https://docs-be.imperva.com/api/bundle/z-kb-articles-km/page/c85245b7.html
    - http://edge.sotoon.ir/ip-list.json
    - https://docs.oracle.com/en-us/iaas/tools/public_ip_ranges.json
    - https://raw.githubusercontent.com/m333rl1n/cdnx/main/static-CIDRs.txt
    - https://my.incapsula.com/api/integration/v1/ips

# default interval is 2 days
Interval: 172800

# Resolve through a specific DNS server instead of the system one:
# Resolver: "8.8.8.8:53"

# Render emitted lines through a template ({{host}} and {{port}} expand):
# OutputFormat: "https://{{host}}:{{port}}"
`

// DefaultPath returns the per-user config file path,
// ~/.config/cdnsift/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewConfigError("failed to resolve home directory", err)
	}
	return filepath.Join(home, ".config", configDirName, configFileName), nil
}

// EnsureDefault writes the built-in default configuration to configPath if
// no file exists there yet, creating parent directories as needed. Returns
// true when a new file was written.
func EnsureDefault(configPath string) (bool, error) {
	if _, err := os.Stat(configPath); err == nil {
		return false, nil
	} else if !stderrors.Is(err, fs.ErrNotExist) {
		return false, errors.NewConfigError("failed to stat config file", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return false, errors.NewConfigError("failed to create config directory", err)
	}
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return false, errors.NewConfigError("failed to write default config", err)
	}

	log.Infof("Created default configuration: %s", configPath)
	return true, nil
}

// LoadConfig reads and parses the YAML configuration at configPath. An
// Interval that is absent or unusable is replaced with DefaultInterval.
func LoadConfig(configPath string) (*Config, error) {
	configFile := filepath.Clean(configPath)

	if !filepath.IsAbs(configFile) {
		path, err := filepath.Abs(configFile)
		if err != nil {
			return nil, errors.NewConfigError("failed to get absolute path", err)
		}
		configFile = path
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		return nil, errors.NewConfigError("failed to read config file", err)
	}

	var config Config
	if err := yaml.Unmarshal(content, &config); err != nil {
		var terr *yaml.TypeError
		if stderrors.As(err, &terr) {
			for _, line := range terr.Errors {
				log.Errorf("Config error: %s", line)
			}
		}
		return nil, errors.NewConfigError("failed to parse config file", err)
	}

	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	config.absConfigFilePath = configFile

	log.Debugf("Configuration file path: %s", configFile)
	return &config, nil
}

// Path returns the absolute path the config was loaded from.
func (c *Config) Path() string {
	return c.absConfigFilePath
}

// Dir returns the directory holding the config file.
func (c *Config) Dir() string {
	return filepath.Dir(c.absConfigFilePath)
}

// CacheFile returns the CIDR cache path, which lives next to the config file.
func (c *Config) CacheFile() string {
	return filepath.Join(c.Dir(), cacheFileName)
}
