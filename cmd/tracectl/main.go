// Command tracectl converts, analyzes and plots match traces offline, and
// drives load against a running fieldtrace service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/fieldtrace/internal/domain/season"
	"github.com/okian/fieldtrace/internal/domain/trace"
)

// errUsage marks errors already explained by a usage message.
var errUsage = errors.New("usage")

type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, e env, args []string) error
}

func commands() []command {
	return []command{
		{"encode", "Encode a trace into the compressed envelope", runEncode},
		{"decode", "Decode any accepted trace form into point tuples", runDecode},
		{"analyze", "Print the match report for a trace", runAnalyze},
		{"plot", "Render a trace as an image", runPlot},
		{"schema", "Print the JSON Schema for traces or submissions", runSchema},
		{"loadgen", "Submit synthetic traces to a running service", runLoadgen},
		{"rankings", "Fetch team rankings from a running service", runRankings},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr})
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, e env) int {
	if len(args) < 1 {
		printUsage(e.stderr)
		return 2
	}
	name := args[0]
	if name == "help" || name == "-h" || name == "--help" {
		printUsage(e.stdout)
		return 0
	}
	for _, c := range commands() {
		if c.name != name {
			continue
		}
		if err := c.run(ctx, e, args[1:]); err != nil {
			if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
				return 2
			}
			fmt.Fprintf(e.stderr, "tracectl %s: %v\n", name, err)
			return 1
		}
		return 0
	}
	fmt.Fprintf(e.stderr, "Unknown command: %s\n\n", name)
	printUsage(e.stderr)
	return 2
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "tracectl - match trace toolkit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: tracectl <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands() {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.usage)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'tracectl <command> -h' for command options.")
}

// seasonFlags are shared by every command that needs season rules.
type seasonFlags struct {
	year int
	file string
}

func (s *seasonFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&s.year, "season", 0, "Season year (0 selects the latest)")
	fs.StringVar(&s.file, "season-file", "", "Extra season definition (YAML) to register")
}

func (s *seasonFlags) resolve() (season.Season, error) {
	all := season.Builtin()
	if s.file != "" {
		b, err := season.LoadFile(s.file)
		if err != nil {
			return nil, err
		}
		all = append(all, b)
	}
	reg, err := season.NewRegistry(season.WithSeasons(all...))
	if err != nil {
		return nil, err
	}
	return reg.Resolve(s.year)
}

func newFlagSet(name string, e env) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

// readInput reads the named file, or stdin for "" and "-".
func readInput(path string, e env) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(e.stdin)
	}
	return os.ReadFile(path)
}

// loadTrace reads and parses a trace in any accepted wire form.
func loadTrace(path string, sf *seasonFlags, e env) (*trace.Trace, season.Season, error) {
	s, err := sf.resolve()
	if err != nil {
		return nil, nil, err
	}
	data, err := readInput(path, e)
	if err != nil {
		return nil, nil, fmt.Errorf("read trace: %w", err)
	}
	t, err := trace.Parse(data, s.Grid())
	if err != nil {
		return nil, nil, err
	}
	return t, s, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
