package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/keydrive/internal/app"
	"github.com/dshills/keydrive/internal/protocol"
)

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a captured command stream",
		Long: `decode reads raw link bytes from a file or standard input, for example a
capture taken with "cat /dev/ttyUSB0 > capture.bin", and prints one line per
command. Bytes between commands are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return app.NewOperationError("open", args[0], err).WithContext("capture")
				}
				defer f.Close()
				in = f
			}
			return decodeStream(cmd.OutOrStdout(), in)
		},
	}
}

func decodeStream(out io.Writer, in io.Reader) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	sc := bufio.NewScanner(in)
	sc.Split(protocol.ScanCommands)

	var good, bad int
	for sc.Scan() {
		raw := sc.Text()
		d, err := protocol.Decode(raw)
		if err != nil {
			bad++
			fmt.Fprintf(w, "%s\tmalformed\t\n", strconv.Quote(raw))
			continue
		}
		good++
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Encode().Quote(), d.Kind, describe(d))
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading stream: %w", err)
	}

	fmt.Fprintf(w, "\n%d commands, %d malformed\n", good, bad)
	return w.Flush()
}

func describe(d protocol.Decoded) string {
	if d.Insert() {
		return strconv.Quote(d.Payload)
	}
	return d.Code.String()
}
