package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"cdecomp/internal/passes"
	"cdecomp/internal/program"
)

// FileName is the configuration file looked up next to the input
const FileName = "cdecomp.toml"

// Config holds the settings of one decompilation run. Command-line flags
// override the values read from the file.
type Config struct {
	Log    Log    `toml:"log"`
	Passes Passes `toml:"passes"`
	Output Output `toml:"output"`
}

type Log struct {
	// Verbosity follows commonlog: 0 is quiet, 1 errors, 2 warnings and so on
	Verbosity int    `toml:"verbosity"`
	Path      string `toml:"path"`
}

type Passes struct {
	// Skip lists optional passes by name
	Skip []string `toml:"skip"`
}

type Output struct {
	Color  string `toml:"color"` // auto, on or off
	Export string `toml:"export"`
}

var (
	ErrUnknownKey   = errors.New("unknown configuration key")
	ErrInvalidColor = errors.New("color must be auto, on or off")
)

// Default returns the settings used when no file is present
func Default() Config {
	return Config{
		Log:    Log{Verbosity: 1},
		Output: Output{Color: "auto"},
	}
}

// Load reads a TOML configuration file on top of the defaults. A missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the TOML decoder cannot
func (c Config) Validate() error {
	switch c.Output.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidColor, c.Output.Color)
	}

	for _, name := range c.Passes.Skip {
		pass, ok := program.ParsePassType(name)
		if !ok {
			return fmt.Errorf("unknown pass %q", name)
		}
		if pass != program.FixMainParameters {
			return fmt.Errorf("pass %s cannot be skipped", pass)
		}
	}
	return nil
}

// Skips reports whether the named pass is disabled
func (c Config) Skips(pass program.PassType) bool {
	for _, name := range c.Passes.Skip {
		if name == pass.String() {
			return true
		}
	}
	return false
}

// PipelineOptions turns the pass settings into pipeline options
func (c Config) PipelineOptions() passes.Options {
	opts := passes.DefaultOptions()
	opts.FixMain = !c.Skips(program.FixMainParameters)
	return opts
}
