package elster

import (
	"github.com/go-kit/log"

	eng "github.com/reoring/elster/internal/engine"
)

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

func (s Severity) String() string {
	switch s {
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "ignore"
	}
}

// Opt configures a Streamer. When several are passed, the last one wins.
type Opt struct {
	// MaxDepth limits how many containers may be open at once, the
	// top-level one included. 0 means unlimited.
	MaxDepth int
	// MaxBytes caps the bytes written to the sink. A write that would cross
	// the cap fails with ErrTruncated and writes nothing; the document is then
	// incomplete, so every later Key, Add and Close returns the same fault.
	// 0 means unlimited.
	MaxBytes int64
	// OnDuplicateKey selects how a key repeated within one object is treated.
	// Detection keeps every key of each open object in memory.
	OnDuplicateKey Severity
	// IssueSink receives non-fatal issues (duplicate keys under Warn).
	IssueSink func(Issue)
	// Marshaler overrides the package-wide general serializer.
	Marshaler Marshaler
	// Logger receives diagnostics. Defaults to a no-op logger.
	Logger log.Logger
}

func lastOpt(opts []Opt) Opt {
	var opt Opt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return opt
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}
