package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dshills/keydrive/internal/config/loader"
	"github.com/dshills/keydrive/internal/logging"
)

// Input source names accepted by input.source.
const (
	SourceEvdev    = "evdev"
	SourceTerminal = "terminal"
)

// Config holds every keydrive setting.
type Config struct {
	Serial     SerialConfig
	Input      InputConfig
	Translator TranslatorConfig
	Logging    LoggingConfig
	Sound      SoundConfig

	// Path is the file the settings were read from, empty if none.
	Path string
}

// SerialConfig configures the robot link.
type SerialConfig struct {
	// Device is the serial port path.
	Device string
	// Baud is the line speed.
	Baud int
	// DryRun logs commands instead of opening the port.
	DryRun bool
	// Drain waits for each command to leave the UART before the next one.
	Drain bool
}

// InputConfig configures the keyboard source.
type InputConfig struct {
	// Source is "evdev" or "terminal".
	Source string
	// Device is the evdev device path, empty to auto-detect.
	Device string
	// Grab takes the evdev device exclusively.
	Grab bool
	// ReleaseTimeout is the silence after which the terminal source releases a key.
	ReleaseTimeout time.Duration
}

// TranslatorConfig configures key translation.
type TranslatorConfig struct {
	// Debounce is the speed key window.
	Debounce time.Duration
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string
	// File receives log output, stderr if empty.
	File string
}

// SoundConfig configures the mode change cue.
type SoundConfig struct {
	Enabled bool
	// Volume is between 0 and 1.
	Volume float64
}

// Default returns the built-in settings.
func Default() *Config {
	source := SourceTerminal
	if runtime.GOOS == "linux" {
		source = SourceEvdev
	}

	return &Config{
		Serial: SerialConfig{
			Device: "/dev/ttyUSB0",
			Baud:   9600,
		},
		Input: InputConfig{
			Source:         source,
			ReleaseTimeout: 600 * time.Millisecond,
		},
		Translator: TranslatorConfig{
			Debounce: 100 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Sound: SoundConfig{
			Volume: 0.5,
		},
	}
}

// Options controls where Load reads from.
type Options struct {
	// Path is the config file. Empty searches DefaultPaths and tolerates none.
	Path string
	// FS reads files, the OS if nil.
	FS loader.FileSystem
	// Env overlays KEYDRIVE_* variables when non-nil.
	Env *loader.EnvLoader
}

// Load reads defaults, the config file and the environment, then validates.
func Load(opts Options) (*Config, error) {
	fsys := opts.FS
	if fsys == nil {
		fsys = loader.DefaultFS()
	}

	path := opts.Path
	if path == "" {
		path = findDefault(fsys)
	} else if _, err := fsys.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	merged := make(map[string]any)
	if path != "" {
		data, err := loader.ForPath(fsys, path).Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, data)
	}

	if opts.Env != nil {
		data, err := opts.Env.Load()
		if err != nil {
			return nil, fmt.Errorf("environment: %w", err)
		}
		merged = loader.DeepMerge(merged, data)
	}

	cfg := Default()
	if err := cfg.Apply(merged); err != nil {
		return nil, err
	}
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPaths returns the config files searched when no path is given, in order.
func DefaultPaths() []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	base := filepath.Join(dir, "keydrive")
	return []string{
		filepath.Join(base, "keydrive.toml"),
		filepath.Join(base, "keydrive.yaml"),
		filepath.Join(base, "keydrive.yml"),
	}
}

func findDefault(fsys loader.FileSystem) string {
	for _, p := range DefaultPaths() {
		if _, err := fsys.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Apply overlays the settings present in m.
func (c *Config) Apply(m map[string]any) error {
	var errs []error
	set := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	set(getString(m, "serial.device", &c.Serial.Device))
	set(getInt(m, "serial.baud", &c.Serial.Baud))
	set(getBool(m, "serial.dry_run", &c.Serial.DryRun))
	set(getBool(m, "serial.drain", &c.Serial.Drain))

	set(getString(m, "input.source", &c.Input.Source))
	set(getString(m, "input.device", &c.Input.Device))
	set(getBool(m, "input.grab", &c.Input.Grab))
	set(getDuration(m, "input.release_timeout", &c.Input.ReleaseTimeout))

	set(getDuration(m, "translator.debounce", &c.Translator.Debounce))

	set(getString(m, "logging.level", &c.Logging.Level))
	set(getString(m, "logging.file", &c.Logging.File))

	set(getBool(m, "sound.enabled", &c.Sound.Enabled))
	set(getFloat(m, "sound.volume", &c.Sound.Volume))

	return errors.Join(errs...)
}

// Validate checks every setting and reports all failures together.
func (c *Config) Validate() error {
	var errs ValidationErrors
	fail := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	if c.Serial.Device == "" && !c.Serial.DryRun {
		fail("serial.device", "required unless dry_run is set", c.Serial.Device)
	}
	if c.Serial.Baud <= 0 {
		fail("serial.baud", "must be positive", c.Serial.Baud)
	}
	if c.Input.Source != SourceEvdev && c.Input.Source != SourceTerminal {
		fail("input.source", "must be evdev or terminal", c.Input.Source)
	}
	if c.Input.ReleaseTimeout <= 0 {
		fail("input.release_timeout", "must be positive", c.Input.ReleaseTimeout)
	}
	if c.Translator.Debounce < 0 {
		fail("translator.debounce", "must not be negative", c.Translator.Debounce)
	}
	if !logging.ValidLevel(c.Logging.Level) {
		fail("logging.level", "must be debug, info, warn or error", c.Logging.Level)
	}
	if c.Sound.Volume < 0 || c.Sound.Volume > 1 {
		fail("sound.volume", "must be between 0 and 1", c.Sound.Volume)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
