// Package config loads the application configuration from a TOML file and
// watches it for changes. The API key is deliberately not part of the file;
// it comes from the environment only.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration so it can be written as "5m" in TOML.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the application configuration.
type Config struct {
	// Model is the Gemini model name.
	Model string `toml:"model"`

	// SystemPrompt is the assistant's system instruction.
	SystemPrompt string `toml:"system_prompt"`

	// Generation parameters, applied to every request.
	Temperature     float64 `toml:"temperature"`
	TopP            float64 `toml:"top_p"`
	TopK            int     `toml:"top_k"`
	MaxOutputTokens int     `toml:"max_output_tokens"`

	// RequestTimeout bounds a single completion call, e.g. "5m".
	RequestTimeout Duration `toml:"request_timeout"`

	// Listen is the HTTP gateway address for `neurocura serve`.
	Listen string `toml:"listen"`

	// LogPath receives logs while the terminal UI is running.
	LogPath string `toml:"log_path"`

	Debug bool `toml:"debug"`
}

// Default returns the configuration matching the application defaults.
func Default() Config {
	return Config{
		Model:           "gemini-1.5-flash",
		SystemPrompt:    DefaultSystemPrompt,
		Temperature:     1,
		TopP:            0.95,
		TopK:            64,
		MaxOutputTokens: 8192,
		RequestTimeout:  Duration(5 * time.Minute),
		Listen:          ":8080",
		LogPath:         "neurocura.log",
	}
}

// Load reads the configuration file at path, layered over the defaults. An
// empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return cfg, nil
}
