package binpack

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a Config fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config configures a Codec.
type Config struct {
	// Charset names the text charset, e.g. "UTF-8" or "GBK".
	// Empty means UTF-8.
	Charset string `yaml:"charset"`

	// MaxDepth limits list/dict nesting for both encode and decode.
	// Zero means DefaultMaxDepth.
	MaxDepth int `yaml:"maxDepth"`
}

// DefaultConfig returns a Config with UTF-8 text and the default depth limit.
func DefaultConfig() Config {
	return Config{
		Charset:  DefaultCharset,
		MaxDepth: DefaultMaxDepth,
	}
}

// ParseConfig parses a YAML config. Fields missing from data keep their
// DefaultConfig values.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// Validate checks that the charset resolves and the depth limit is usable.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: maxDepth %d is negative", ErrInvalidConfig, c.MaxDepth)
	}
	if _, err := LookupCharset(c.Charset); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) maxDepth() int {
	if c.MaxDepth == 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}
