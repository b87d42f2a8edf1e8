package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log/level"

	"github.com/reoring/elster"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "render":
		renderCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "elster CLI\n\nUsage:\n  elster render [-config file.yaml] [-o out.json] [-max-depth N] [-max-bytes N] [-dup ignore|warn|error] [-marshaler go-json|encoding/json] [-v] input.yaml\n\nNotes:\n  - Use - as input to read YAML from stdin.\n  - Several YAML documents are written as one top-level array.\n  - Empty mappings and sequences are written as null; an empty top-level\n    mapping or sequence, like an empty input, is written as {}.")
}

func renderCmd(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	var (
		cfgPath   string
		out       string
		maxDepth  int
		maxBytes  int64
		dup       string
		marshaler string
		verbose   bool
	)
	fs.StringVar(&cfgPath, "config", "", "YAML configuration file")
	fs.StringVar(&out, "o", "", "output filename (default stdout)")
	fs.IntVar(&maxDepth, "max-depth", 0, "maximum container nesting, 0 for unlimited")
	fs.Int64Var(&maxBytes, "max-bytes", 0, "maximum output size in bytes, 0 for unlimited")
	fs.StringVar(&dup, "dup", "", "duplicate key policy: ignore, warn or error")
	fs.StringVar(&marshaler, "marshaler", "", "serializer for escaped strings and composite values: go-json or encoding/json")
	fs.BoolVar(&verbose, "v", false, "enable debug logs")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-depth":
			cfg.MaxDepth = maxDepth
		case "max-bytes":
			cfg.MaxBytes = maxBytes
		case "dup":
			cfg.DuplicateKeys = dup
		case "marshaler":
			cfg.Marshaler = marshaler
		case "v":
			cfg.Verbose = verbose
		}
	})
	logger := newLogger(os.Stderr, cfg.Verbose)
	opt, err := cfg.options(logger)
	if err != nil {
		fatalf("%v", err)
	}

	in := io.Reader(os.Stdin)
	if name := fs.Arg(0); name != "-" {
		f, err := os.Open(name)
		if err != nil {
			fatalf("opening input: %v", err)
		}
		defer f.Close()
		in = f
	}
	sink := bufferedSink{Writer: bufio.NewWriter(os.Stdout)}
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			fatalf("creating output: %v", err)
		}
		sink = bufferedSink{Writer: bufio.NewWriter(f), c: f}
	}

	s, docs, err := render(sink, in, opt)
	if err != nil {
		_ = sink.Close()
		fatalf("render %s: %v", fs.Arg(0), err)
	}
	if err := s.CloseSink(); err != nil {
		fatalf("writing output: %v", err)
	}
	level.Debug(logger).Log("msg", "rendered", "input", fs.Arg(0), "documents", docs, "bytes", s.Offset(), "marshaler", opt.Marshaler.Name())
}

// render streams the YAML read from r into a new Streamer on w. The document
// is left open so the caller decides how the sink is closed.
func render(w io.Writer, r io.Reader, opt elster.Opt) (*elster.Streamer, int, error) {
	s := elster.New(w, opt)
	docs, err := renderYAML(s, r)
	return s, docs, err
}

// bufferedSink flushes on Close and then closes the underlying file, if any.
type bufferedSink struct {
	*bufio.Writer
	c io.Closer
}

func (b bufferedSink) Close() error {
	err := b.Flush()
	if b.c != nil {
		if cerr := b.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
