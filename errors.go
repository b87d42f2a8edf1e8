package elster

import (
	"errors"
	"fmt"

	"github.com/reoring/elster/i18n"
	eng "github.com/reoring/elster/internal/engine"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeContainerType = "container_type"
	CodeClosed        = "closed"
	CodeOpenBlock     = "open_block"
	CodeEncode        = "encode_error"
	CodeMaxDepth      = "max_depth"
	CodeDuplicateKey  = "duplicate_key"
	CodeTruncated     = "truncated"
)

// Issue is a fault raised by the Streamer itself. Sink write errors are
// returned unchanged and never wrapped in an Issue.
type Issue struct {
	Path    string // JSON Pointer of the item being written (for example: /items/2).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	// Params carries structured parameters (e.g., {"want":"object","got":"array"})
	// for i18n and observability.
	Params map[string]string
}

func (i *Issue) Error() string {
	msg := i.Code + ": " + i.Message
	if i.Path != "" {
		msg = fmt.Sprintf("%s at %s: %s", i.Code, i.Path, i.Message)
	}
	if i.Cause != nil {
		msg += ": " + i.Cause.Error()
	}
	return msg
}

func (i *Issue) Unwrap() error { return i.Cause }

// Is matches any Issue carrying the same code, so the sentinels below work
// with errors.Is.
func (i *Issue) Is(target error) bool {
	t, ok := target.(*Issue)
	return ok && t.Code == i.Code
}

var (
	// ErrContainerType is matched by faults raised when Key is called on an
	// array level or Add on an object level.
	ErrContainerType = &Issue{Code: CodeContainerType, Message: "container type mismatch"}
	// ErrClosed is matched by faults raised by any call after Close.
	ErrClosed = &Issue{Code: CodeClosed, Message: "operation on closed encoder"}
	// ErrOpenBlock is matched when Close is called from inside a nested block.
	ErrOpenBlock = &Issue{Code: CodeOpenBlock, Message: "close inside nested block"}
	// ErrEncode is matched when a value or key has no JSON representation.
	ErrEncode = &Issue{Code: CodeEncode, Message: "value cannot be encoded"}
	// ErrMaxDepth is matched when a nested block would exceed Opt.MaxDepth.
	ErrMaxDepth = &Issue{Code: CodeMaxDepth, Message: "max depth exceeded"}
	// ErrDuplicateKey is matched when a repeated key is rejected under Error.
	ErrDuplicateKey = &Issue{Code: CodeDuplicateKey, Message: "duplicate key"}
	// ErrTruncated is matched when a write would exceed Opt.MaxBytes.
	ErrTruncated = &Issue{Code: CodeTruncated, Message: "max bytes exceeded"}
)

// AsIssue extracts an Issue from an error using errors.As internally.
func AsIssue(err error) (*Issue, bool) {
	if err == nil {
		return nil, false
	}
	var iss *Issue
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

func newIssue(code, path string, cause error, params map[string]string) *Issue {
	return &Issue{
		Path:    eng.NormalizePath(path),
		Code:    code,
		Message: i18n.T(code, params),
		Cause:   cause,
		Params:  params,
	}
}

// fromEngineIssue converts enforcement failures to Issues and passes any
// other error through.
func fromEngineIssue(err error) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return &Issue{Path: eng.NormalizePath(ie.Path), Code: ie.Code, Message: ie.Message}
	}
	return err
}
