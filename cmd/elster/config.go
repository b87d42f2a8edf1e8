package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gopkg.in/yaml.v3"

	"github.com/reoring/elster"
	"github.com/reoring/elster/marshal/stdjson"
)

// config is the render configuration. Values come from an optional YAML file
// and are then overridden by flags given on the command line.
type config struct {
	MaxDepth      int    `yaml:"maxDepth"`
	MaxBytes      int64  `yaml:"maxBytes"`
	DuplicateKeys string `yaml:"duplicateKeys"`
	Marshaler     string `yaml:"marshaler"`
	EscapeHTML    *bool  `yaml:"escapeHTML"`
	Verbose       bool   `yaml:"verbose"`
}

func loadConfig(path string) (config, error) {
	var c config
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return c, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func parseSeverity(s string) (elster.Severity, error) {
	switch s {
	case "", "ignore":
		return elster.Ignore, nil
	case "warn":
		return elster.Warn, nil
	case "error":
		return elster.Error, nil
	}
	return elster.Ignore, fmt.Errorf("unknown duplicate key policy %q (want ignore, warn or error)", s)
}

func pickMarshaler(name string, escapeHTML *bool) (elster.Marshaler, error) {
	switch name {
	case "", "go-json":
		return elster.DefaultMarshaler(), nil
	case "encoding/json":
		if escapeHTML != nil && !*escapeHTML {
			return stdjson.MarshalerNoHTMLEscape(), nil
		}
		return stdjson.Marshaler(), nil
	}
	return nil, fmt.Errorf("unknown marshaler %q (want go-json or encoding/json)", name)
}

// options turns the configuration into Streamer options logging to logger.
func (c config) options(logger log.Logger) (elster.Opt, error) {
	dup, err := parseSeverity(c.DuplicateKeys)
	if err != nil {
		return elster.Opt{}, err
	}
	m, err := pickMarshaler(c.Marshaler, c.EscapeHTML)
	if err != nil {
		return elster.Opt{}, err
	}
	return elster.Opt{
		MaxDepth:       c.MaxDepth,
		MaxBytes:       c.MaxBytes,
		OnDuplicateKey: dup,
		Marshaler:      m,
		Logger:         logger,
	}, nil
}

func newLogger(w io.Writer, verbose bool) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	if verbose {
		return level.NewFilter(logger, level.AllowDebug())
	}
	return level.NewFilter(logger, level.AllowInfo())
}
