package engine

import (
	"strconv"
	"strings"
)

// Kind is the container kind decided for a nesting level by its first item.
type Kind int

const (
	KindUnset Kind = iota
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unset"
	}
}

// Frame is the saved state of one nesting level.
type Frame struct {
	Count int
	Kind  Kind
	Path  string // JSON Pointer of the container ("" for the document root).
}

// Stack tracks nesting state for a forward-only encoder. The active level is
// held inline; frames holds the suspended parent levels, innermost last.
//
// The zero value is ready to use and describes an empty top level.
type Stack struct {
	cur    Frame
	frames []Frame
}

// Count returns the number of items written at the active level.
func (s *Stack) Count() int { return s.cur.Count }

// Kind returns the kind of the active level.
func (s *Stack) Kind() Kind { return s.cur.Kind }

// Depth returns the number of suspended levels below the active one.
func (s *Stack) Depth() int { return len(s.frames) }

// Path returns the JSON Pointer of the active level.
func (s *Stack) Path() string { return s.cur.Path }

// Accepts reports whether an item of kind k may be written at the active level.
func (s *Stack) Accepts(k Kind) bool {
	return s.cur.Kind == KindUnset || s.cur.Kind == k
}

// EnterSection fixes the active level's kind. It has no effect once the kind
// is set.
func (s *Stack) EnterSection(k Kind) {
	if s.cur.Kind == KindUnset {
		s.cur.Kind = k
	}
}

// NeedsSeparator reports whether the next item must be preceded by a comma.
func (s *Stack) NeedsSeparator() bool { return s.cur.Count > 0 }

// AppendSeparator appends what must precede the next item of kind k: a comma
// when the level already has items, otherwise the level's opening bracket.
func (s *Stack) AppendSeparator(dst []byte, k Kind) []byte {
	if s.NeedsSeparator() {
		return append(dst, ',')
	}
	if s.cur.Kind != KindUnset {
		k = s.cur.Kind
	}
	return append(dst, OpenBracket(k))
}

// Increment records one more item at the active level.
func (s *Stack) Increment() { s.cur.Count++ }

// Push suspends the active level and starts a fresh one at path.
func (s *Stack) Push(path string) {
	s.frames = append(s.frames, s.cur)
	s.cur = Frame{Path: path}
}

// Pop discards the active level and restores the most recently suspended
// one. The caller increments the restored level's count for the nested
// container. Pop on an empty stack is a no-op.
func (s *Stack) Pop() {
	n := len(s.frames)
	if n == 0 {
		return
	}
	s.cur = s.frames[n-1]
	s.frames = s.frames[:n-1]
}

// CloseBracket returns the closing bracket of the active level. An unset
// level closes as an object.
func (s *Stack) CloseBracket() byte {
	if s.cur.Kind == KindArray {
		return ']'
	}
	return '}'
}

// OpenBracket returns the opening bracket for kind k; unset opens an object.
func OpenBracket(k Kind) byte {
	if k == KindArray {
		return '['
	}
	return '{'
}

// ItemPath returns the JSON Pointer of the next item at the active level.
// key is used for object levels and ignored for arrays.
func (s *Stack) ItemPath(k Kind, key string) string {
	if s.cur.Kind == KindArray || (s.cur.Kind == KindUnset && k == KindArray) {
		return JoinJSONPointer(s.cur.Path, strconv.Itoa(s.cur.Count))
	}
	return JoinJSONPointer(s.cur.Path, key)
}

var jsonPointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// JoinJSONPointer appends an escaped reference token to base.
func JoinJSONPointer(base, token string) string {
	return base + "/" + jsonPointerEscaper.Replace(token)
}

// NormalizePath renders the document root as "/".
func NormalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
