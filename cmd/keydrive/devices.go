package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/keydrive/internal/input/source"
	"github.com/dshills/keydrive/internal/transport"
)

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List serial ports and keyboards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listDevices(cmd, transport.ListPorts, source.ListKeyboards)
		},
	}
}

func listDevices(cmd *cobra.Command, ports func() ([]transport.PortInfo, error), keyboards func() ([]source.Keyboard, error)) error {
	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "SERIAL PORTS")
	list, err := ports()
	switch {
	case err != nil:
		return fmt.Errorf("listing serial ports: %w", err)
	case len(list) == 0:
		fmt.Fprintln(w, "  (none)")
	}
	for _, p := range list {
		if p.USB {
			fmt.Fprintf(w, "  %s\tUSB %s:%s\t%s\n", p.Name, p.VID, p.PID, p.Product)
		} else {
			fmt.Fprintf(w, "  %s\t\t\n", p.Name)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "KEYBOARDS")
	kbds, err := keyboards()
	switch {
	case errors.Is(err, source.ErrUnsupported):
		fmt.Fprintln(w, "  (evdev not available, use --source terminal)")
	case err != nil:
		return fmt.Errorf("listing keyboards: %w", err)
	case len(kbds) == 0:
		fmt.Fprintln(w, "  (none readable, check permissions on /dev/input)")
	}
	for _, k := range kbds {
		fmt.Fprintf(w, "  %s\t%s\t\n", k.Path, k.Name)
	}

	return w.Flush()
}
