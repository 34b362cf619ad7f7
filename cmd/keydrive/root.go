package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/keydrive/internal/app"
	"github.com/dshills/keydrive/internal/config"
	"github.com/dshills/keydrive/internal/config/loader"
	"github.com/dshills/keydrive/internal/logging"
)

// runFlags holds the command line overrides.
type runFlags struct {
	configPath  string
	device      string
	baud        int
	source      string
	inputDevice string
	grab        bool
	dryRun      bool
	drain       bool
	logLevel    string
	logFile     string
	sound       bool
}

func newRootCmd() *cobra.Command {
	var f runFlags

	root := &cobra.Command{
		Use:   "keydrive",
		Short: "Drive a robot from the keyboard over a serial link",
		Long: `keydrive turns key presses into short serial commands.

Normal mode: W/S forward and back, A/D rotate, W+A W+D S+A S+D arcs,
Q stop, Space action, comma/period slower/faster, I enters insert mode.
Insert mode relays every key as a character until Escape.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSession(cmd, &f)
		},
	}

	addRunFlags(root, &f)

	run := &cobra.Command{
		Use:   "run",
		Short: "Start a teleop session (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSession(cmd, &f)
		},
	}
	addRunFlags(run, &f)

	root.AddCommand(run, newDevicesCmd(), newDecodeCmd(), newSimulateCmd(), newVersionCmd())
	return root
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "config file (TOML or YAML)")
	fl.StringVarP(&f.device, "device", "d", "", "serial device, e.g. /dev/ttyUSB0")
	fl.IntVarP(&f.baud, "baud", "b", 0, "serial baud rate")
	fl.StringVar(&f.source, "source", "", "key source: evdev or terminal")
	fl.StringVar(&f.inputDevice, "input-device", "", "evdev keyboard device (default: first keyboard)")
	fl.BoolVar(&f.grab, "grab", false, "grab the evdev keyboard exclusively")
	fl.BoolVar(&f.dryRun, "dry-run", false, "print commands instead of writing the serial port")
	fl.BoolVar(&f.drain, "drain", false, "wait for each command to leave the serial port")
	fl.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fl.StringVar(&f.logFile, "log-file", "", "write logs to this file")
	fl.BoolVar(&f.sound, "sound", false, "play a tone on mode changes (binary built with -tags sound)")
}

// loadConfig layers the command line flags over the loaded config.
func loadConfig(cmd *cobra.Command, f *runFlags) (*config.Config, config.Options, error) {
	opts := config.Options{
		Path: f.configPath,
		Env:  loader.NewEnvLoader(loader.EnvPrefix),
	}
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, opts, err
	}
	opts.Path = cfg.Path

	changed := cmd.Flags().Changed
	if changed("device") {
		cfg.Serial.Device = f.device
	}
	if changed("baud") {
		cfg.Serial.Baud = f.baud
	}
	if changed("dry-run") {
		cfg.Serial.DryRun = f.dryRun
	}
	if changed("drain") {
		cfg.Serial.Drain = f.drain
	}
	if changed("source") {
		cfg.Input.Source = f.source
	}
	if changed("input-device") {
		cfg.Input.Device = f.inputDevice
	}
	if changed("grab") {
		cfg.Input.Grab = f.grab
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if changed("log-file") {
		cfg.Logging.File = f.logFile
	}
	if changed("sound") {
		cfg.Sound.Enabled = f.sound
	}

	if err := cfg.Validate(); err != nil {
		return nil, opts, err
	}
	return cfg, opts, nil
}

func runSession(cmd *cobra.Command, f *runFlags) error {
	cfg, cfgOpts, err := loadConfig(cmd, f)
	if err != nil {
		return app.NewOperationError("load", f.configPath, err).WithContext("config")
	}

	// The terminal source owns the screen, so logs go to a file
	ownsScreen := cfg.Input.Source == config.SourceTerminal
	logPath := cfg.Logging.File
	if logPath == "" && ownsScreen {
		logPath = filepath.Join(os.TempDir(), "keydrive.log")
	}

	var logOut io.Writer = cmd.ErrOrStderr()
	if logPath != "" {
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return app.NewOperationError("open", logPath, err).WithContext("log file")
		}
		defer file.Close()
		logOut = file
	}

	cfgLog := logging.DefaultConfig()
	cfgLog.Level = logging.ParseLevel(cfg.Logging.Level)
	cfgLog.Output = logOut
	logger := logging.New(cfgLog)

	var dryRunOut io.Writer
	if !ownsScreen {
		dryRunOut = cmd.OutOrStdout()
	}

	opts, err := app.Components(cfg, logger, dryRunOut)
	if err != nil {
		return err
	}
	if cfgOpts.Path != "" {
		opts.Reload = &cfgOpts
		opts.KeepLogLevel = cmd.Flags().Changed("log-level")
	}

	session, err := app.New(opts)
	if err != nil {
		_ = opts.Conn.Close()
		_ = opts.Cue.Close()
		return err
	}

	if cfg.Path != "" {
		logger.Info("config %s", cfg.Path)
	}
	if logPath != "" && ownsScreen {
		fmt.Fprintf(cmd.ErrOrStderr(), "logging to %s\n", logPath)
	}

	return session.Run(cmd.Context())
}
