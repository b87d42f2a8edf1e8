package engine

import "strconv"

// Enforcement applied to an encoder before each write: duplicate key policy,
// maximum nesting depth, and a cap on bytes written to the sink.

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// SimpleIssue is a minimal issue representation used by internal helpers.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	// MaxDepth limits the number of simultaneously open containers, the
	// top-level one included. 0 disables the check.
	MaxDepth int
	// MaxBytes caps the total bytes written. 0 disables the check.
	MaxBytes int64
	// IssueSink receives non-fatal issues (duplicate keys under DupWarn).
	IssueSink func(SimpleIssue)
}

// Guard checks writes against EnforceOptions. Checks never mutate state;
// RecordKey and Leave commit it once a write succeeded.
type Guard struct {
	opt EnforceOptions
	// keys holds the keys seen per object level, indexed by depth. Only
	// populated when duplicate detection is enabled.
	keys []map[string]struct{}
}

// NewGuard returns a Guard for opt.
func NewGuard(opt EnforceOptions) *Guard { return &Guard{opt: opt} }

// Enabled reports whether any check is active.
func (g *Guard) Enabled() bool {
	return g.opt.OnDuplicate != DupIgnore || g.opt.MaxDepth > 0 || g.opt.MaxBytes > 0
}

// CheckDepth fails when opening a container at nesting level depth (1 for
// the top-level container) would exceed MaxDepth.
func (g *Guard) CheckDepth(depth int, path string) error {
	if g.opt.MaxDepth > 0 && depth > g.opt.MaxDepth {
		return IssueError{SimpleIssue{
			Code:    "max_depth",
			Path:    NormalizePath(path),
			Message: "max depth " + strconv.Itoa(g.opt.MaxDepth) + " exceeded",
		}}
	}
	return nil
}

// CheckKey applies the duplicate key policy to key at the object level depth
// before it is written. Only DupError fails here; DupWarn reports from
// RecordKey once the member has actually been written.
func (g *Guard) CheckKey(depth int, key, path string) error {
	if g.opt.OnDuplicate != DupError || !g.seen(depth, key) {
		return nil
	}
	return IssueError{duplicateIssue(key, path)}
}

// RecordKey remembers key as written at the object level depth. Under
// DupWarn a key already present is reported to the sink.
func (g *Guard) RecordKey(depth int, key, path string) {
	if g.opt.OnDuplicate == DupIgnore {
		return
	}
	if g.opt.OnDuplicate == DupWarn && g.opt.IssueSink != nil && g.seen(depth, key) {
		g.opt.IssueSink(duplicateIssue(key, path))
	}
	for len(g.keys) <= depth {
		g.keys = append(g.keys, nil)
	}
	if g.keys[depth] == nil {
		g.keys[depth] = make(map[string]struct{})
	}
	g.keys[depth][key] = struct{}{}
}

func (g *Guard) seen(depth int, key string) bool {
	if depth >= len(g.keys) {
		return false
	}
	_, ok := g.keys[depth][key]
	return ok
}

func duplicateIssue(key, path string) SimpleIssue {
	return SimpleIssue{Code: "duplicate_key", Path: NormalizePath(path), Message: "key '" + key + "' duplicated"}
}

// Leave forgets the keys recorded at level depth and below it.
func (g *Guard) Leave(depth int) {
	if depth < len(g.keys) {
		for i := depth; i < len(g.keys); i++ {
			g.keys[i] = nil
		}
		g.keys = g.keys[:depth]
	}
}

// CheckBytes fails when writing n more bytes after offset would exceed
// MaxBytes.
func (g *Guard) CheckBytes(offset int64, n int, path string) error {
	if g.opt.MaxBytes > 0 && offset+int64(n) > g.opt.MaxBytes {
		return IssueError{SimpleIssue{Code: "truncated", Path: NormalizePath(path), Message: "max bytes exceeded"}}
	}
	return nil
}
