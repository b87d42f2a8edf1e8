package elster

import (
	"github.com/go-kit/log/level"

	eng "github.com/reoring/elster/internal/engine"
)

// nest runs fn on a fresh level at path. The level is finalized on every
// exit path, including a panic inside fn: an empty level becomes null in its
// parent, a non-empty one gets its closing bracket, and the parent counts it
// as one item either way. Bytes fn already wrote are not retracted.
//
// fn's error is returned as-is and takes precedence over a failure to write
// the closing token.
func (s *Streamer) nest(path string, fn Block) (err error) {
	s.stack.Push(path)
	depth := s.stack.Depth()
	defer func() {
		written := s.stack.Count()
		if ferr := s.finish(depth); err == nil {
			err = ferr
		}
		if err != nil {
			level.Debug(s.logger).Log("msg", "nested block failed", "path", eng.NormalizePath(path), "items", written, "err", err)
		}
	}()
	return fn(s)
}

func (s *Streamer) finish(depth int) error {
	buf := s.buf[:0]
	if s.stack.Kind() == eng.KindUnset {
		buf = append(buf, "null"...)
	} else {
		buf = append(buf, s.stack.CloseBracket())
	}
	path := s.stack.Path()
	s.guard.Leave(depth)
	s.stack.Pop()
	s.stack.Increment()
	return s.emit(buf, path)
}
