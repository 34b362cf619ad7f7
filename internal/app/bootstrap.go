package app

import (
	"fmt"
	"io"

	"github.com/dshills/keydrive/internal/config"
	"github.com/dshills/keydrive/internal/cue"
	"github.com/dshills/keydrive/internal/input/source"
	"github.com/dshills/keydrive/internal/logging"
	"github.com/dshills/keydrive/internal/transport"
)

// Components opens the parts of a session described by cfg.
// dryRunOut receives dry-run commands and may be nil.
// The serial port is the only resource opened; sources open their device in Run.
func Components(cfg *config.Config, logger *logging.Logger, dryRunOut io.Writer) (Options, error) {
	if logger == nil {
		logger = logging.Null()
	}

	src, err := newSource(cfg.Input, logger.WithComponent("input"))
	if err != nil {
		return Options{}, NewComponentError("source", "create", err)
	}

	conn, err := newConn(cfg.Serial, logger.WithComponent("serial"), dryRunOut)
	if err != nil {
		return Options{}, NewComponentError("serial", "open", err)
	}

	var c cue.Cue = cue.Noop{}
	if cfg.Sound.Enabled {
		tone, err := cue.NewTone(cfg.Sound.Volume)
		if err != nil {
			// Sound is optional
			logger.Warn("sound disabled: %v", err)
		} else {
			c = tone
		}
	}

	return Options{
		Source:     src,
		Conn:       conn,
		Cue:        c,
		Logger:     logger,
		Debounce:   cfg.Translator.Debounce,
		NoDebounce: cfg.Translator.Debounce == 0,
	}, nil
}

func newSource(cfg config.InputConfig, logger *logging.Logger) (source.Source, error) {
	switch cfg.Source {
	case config.SourceEvdev:
		return source.NewEvdevSource(
			source.WithDevicePath(cfg.Device),
			source.WithGrab(cfg.Grab),
			source.WithEvdevLogger(logger),
		), nil
	case config.SourceTerminal:
		return source.NewTerminalSource(
			source.WithReleaseTimeout(cfg.ReleaseTimeout),
			source.WithTerminalLogger(logger),
		), nil
	default:
		return nil, fmt.Errorf("unknown input source %q", cfg.Source)
	}
}

func newConn(cfg config.SerialConfig, logger *logging.Logger, dryRunOut io.Writer) (transport.Conn, error) {
	if cfg.DryRun {
		return transport.NewDryRun(dryRunOut, logger), nil
	}
	link, err := transport.Open(transport.Config{
		Device: cfg.Device,
		Baud:   cfg.Baud,
		Drain:  cfg.Drain,
	}, transport.WithLinkLogger(logger))
	if err != nil {
		return nil, err
	}
	return link, nil
}
