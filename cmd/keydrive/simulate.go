package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/keydrive/internal/app"
	"github.com/dshills/keydrive/internal/input/key"
	"github.com/dshills/keydrive/internal/protocol"
	"github.com/dshills/keydrive/internal/translator"
)

// simStart is the fixed origin of the simulated clock.
var simStart = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

func newSimulateCmd() *cobra.Command {
	var (
		debounce time.Duration
		rules    bool
	)

	cmd := &cobra.Command{
		Use:   "simulate [file]",
		Short: "Replay a key script and print the commands it would send",
		Long: `simulate feeds a key script through the translator without touching any
device. The script is read from a file or standard input, one or more tokens
per line, "#" starts a comment:

  w         tap w (press, then release)
  +w  -w    press or release w
  wait:150ms
            advance the clock (speed keys are debounced against it)

Keys are single characters or names such as space, esc, enter, shift_l.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rules {
				return printRules(cmd.OutOrStdout())
			}
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return app.NewOperationError("open", args[0], err).WithContext("key script")
				}
				defer f.Close()
				in = f
			}
			return simulate(cmd.OutOrStdout(), in, debounce)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", translator.DefaultDebounceWindow, "speed key window, 0 disables")
	cmd.Flags().BoolVar(&rules, "rules", false, "print the motion rule table and exit")
	return cmd
}

// simStep is one parsed script token.
type simStep struct {
	token  string
	events []key.Event
	wait   time.Duration
}

func parseSimToken(tok string) (simStep, error) {
	step := simStep{token: tok}

	if rest, ok := strings.CutPrefix(tok, "wait:"); ok {
		d, err := time.ParseDuration(rest)
		if err != nil || d < 0 {
			return step, fmt.Errorf("bad wait %q", tok)
		}
		step.wait = d
		return step, nil
	}

	action, name := key.Action(0), tok
	if len(tok) > 1 && (tok[0] == '+' || tok[0] == '-') {
		action, name = key.Press, tok[1:]
		if tok[0] == '-' {
			action = key.Release
		}
	}

	id := key.FromName(name)
	if id == key.None {
		return step, fmt.Errorf("unknown key %q (names: %s)", name, knownNames())
	}

	switch action {
	case key.Press:
		step.events = []key.Event{key.NewPress(id)}
	case key.Release:
		step.events = []key.Event{key.NewRelease(id)}
	default:
		step.events = []key.Event{key.NewPress(id), key.NewRelease(id)}
	}
	return step, nil
}

func knownNames() string {
	names := key.Names()
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}

func simulate(out io.Writer, in io.Reader, debounce time.Duration) error {
	now := simStart
	var sent []protocol.Command
	tr := translator.New(
		translator.SinkFunc(func(cmd protocol.Command) { sent = append(sent, cmd) }),
		translator.WithClock(func() time.Time { return now }),
		translator.WithDebounceWindow(debounce),
	)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tEVENT\tMODE\tHELD\tSENT")

	sc := bufio.NewScanner(in)
	for line := 1; sc.Scan(); line++ {
		text, _, _ := strings.Cut(sc.Text(), "#")
		for _, tok := range strings.Fields(text) {
			step, err := parseSimToken(tok)
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			if step.events == nil {
				now = now.Add(step.wait)
				continue
			}

			sent = sent[:0]
			for _, ev := range step.events {
				tr.Handle(ev)
			}
			fmt.Fprintf(w, "+%s\t%s\t%s\t%s\t%s\n",
				now.Sub(simStart), step.token, tr.Mode().DisplayName(), heldList(tr.Pressed()), quoteAll(sent))
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading script: %w", err)
	}

	st := tr.Stats()
	fmt.Fprintf(w, "\n%d commands, %d speed repeats suppressed, %d mode changes, last speed %s\n",
		st.Commands, st.SpeedSuppressed, st.ModeChanges, tr.Debounce().LastDirection)
	return w.Flush()
}

// printRules lists the motion rules, first match wins.
func printRules(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tKEYS\tSENDS\tACTION")
	for i, r := range translator.MotionRules() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, heldList(r.Keys), r.Command().Quote(), r.Code)
	}
	return w.Flush()
}

func heldList(ids []key.ID) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, "+")
}

func quoteAll(cmds []protocol.Command) string {
	if len(cmds) == 0 {
		return "-"
	}
	parts := make([]string, len(cmds))
	for i, c := range cmds {
		parts[i] = c.Quote()
	}
	return strings.Join(parts, " ")
}
