package config

import (
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cdnsift/cdnsift/src/internal/log"
)

// DefaultInterval is the refresh interval applied when the config file does
// not carry a usable one: two days, in seconds.
const DefaultInterval = 172800

// Interval is a refresh period in whole seconds. A value that cannot be
// decoded as an integer falls back to DefaultInterval instead of failing the
// whole config load.
type Interval int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (i *Interval) UnmarshalYAML(value *yaml.Node) error {
	var seconds int64
	if err := value.Decode(&seconds); err != nil {
		log.Warnf("Invalid Interval value %q, using default %d", value.Value, DefaultInterval)
		*i = DefaultInterval
		return nil
	}
	*i = Interval(seconds)
	return nil
}

// Duration converts the interval to a time.Duration.
func (i Interval) Duration() time.Duration {
	return time.Duration(i) * time.Second
}

// Config is the on-disk configuration. Providers and Interval are the
// contract every config carries; Resolver and OutputFormat are optional.
type Config struct {
	// Providers lists the URLs whose documents are scanned for CIDR ranges.
	Providers []string `yaml:"Providers" validate:"required,min=1,dive,url"`

	// Interval is the maximum cache age, in seconds, before a refresh.
	Interval Interval `yaml:"Interval"`

	// Resolver optionally overrides the DNS server used for lookups, as
	// an IP or IP:port.
	Resolver string `yaml:"Resolver,omitempty" validate:"omitempty,dns_addr"`

	// OutputFormat optionally re-renders every emitted line through a
	// template; {{host}} and {{port}} are the available variables.
	OutputFormat string `yaml:"OutputFormat,omitempty" validate:"omitempty,line_template"`

	absConfigFilePath string
}
