package elster

import (
	"errors"
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/reoring/elster/internal/encode"
	eng "github.com/reoring/elster/internal/engine"
)

// Block populates a nested container through further Key/Add calls on s.
// Returning an error aborts the block; the container is still closed before
// the error reaches the caller of Key/Add.
type Block func(s *Streamer) error

// Streamer writes one JSON document to a sink as Key/Add calls arrive. The
// container kind of each level is decided by its first item: Key makes it an
// object, Add an array.
//
// A Streamer is not safe for concurrent use.
type Streamer struct {
	sink    io.Writer
	stack   eng.Stack
	guard   *eng.Guard
	marshal encode.MarshalFunc
	logger  log.Logger
	buf     []byte
	offset  int64
	closed  bool

	// truncated holds the first MaxBytes fault. Once set the document can
	// no longer be completed and every later write returns it.
	truncated error
}

// New creates a Streamer writing to w. w is not owned by the Streamer and is
// only closed by CloseSink.
func New(w io.Writer, opts ...Opt) *Streamer {
	opt := lastOpt(opts)
	m := opt.Marshaler
	if m == nil {
		m = getMarshaler()
	}
	logger := opt.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	sink := opt.IssueSink
	forward := func(si eng.SimpleIssue) {
		level.Warn(logger).Log("msg", si.Message, "code", si.Code, "path", si.Path)
		if sink != nil {
			sink(Issue{Path: si.Path, Code: si.Code, Message: si.Message})
		}
	}
	return &Streamer{
		sink:    w,
		marshal: m.Marshal,
		logger:  logger,
		guard: eng.NewGuard(eng.EnforceOptions{
			OnDuplicate: toEngineDup(opt.OnDuplicateKey),
			MaxDepth:    opt.MaxDepth,
			MaxBytes:    opt.MaxBytes,
			IssueSink:   forward,
		}),
	}
}

// Key writes an object member. If value is a Block (or a func(*Streamer)
// error) the member's value is produced by that block, as with KeyBlock.
//
//	s.Key("mistake", "HUGE!")
//
//	{"mistake":"HUGE!"}
//
// name is coerced to a JSON string: strings as-is, encoding.TextMarshaler
// and fmt.Stringer by their text, numbers and booleans by their literal.
func (s *Streamer) Key(name, value any) error {
	if fn, ok := asBlock(value); ok {
		return s.KeyBlock(name, fn)
	}
	key, path, err := s.beginKey(name)
	if err != nil {
		return err
	}
	buf, err := s.appendKey(s.buf[:0], key, path)
	if err != nil {
		return err
	}
	buf, err = encode.AppendValue(buf, value, s.marshal)
	if err != nil {
		return newIssue(CodeEncode, path, err, nil)
	}
	if err := s.emit(buf, path); err != nil {
		return err
	}
	s.commitKey(key, path)
	s.stack.Increment()
	return nil
}

// KeyBlock writes an object member whose value is a container populated by
// fn. A block that writes nothing yields null.
//
//	s.KeyBlock("mistake", func(s *elster.Streamer) error {
//		return s.Key("type", "HUGE!")
//	})
//
//	{"mistake":{"type":"HUGE!"}}
func (s *Streamer) KeyBlock(name any, fn Block) error {
	if fn == nil {
		return s.Key(name, nil)
	}
	key, path, err := s.beginKey(name)
	if err != nil {
		return err
	}
	if err := s.guard.CheckDepth(s.stack.Depth()+2, path); err != nil {
		return fromEngineIssue(err)
	}
	buf, err := s.appendKey(s.buf[:0], key, path)
	if err != nil {
		return err
	}
	if err := s.emit(buf, path); err != nil {
		return err
	}
	s.commitKey(key, path)
	return s.nest(path, fn)
}

// Add writes an array element. If value is a Block (or a func(*Streamer)
// error) the element is produced by that block, as with AddBlock. Add(nil)
// writes null.
//
//	s.Add(1)
//	s.Add("Ansible")
//
//	[1,"Ansible"]
func (s *Streamer) Add(value any) error {
	if fn, ok := asBlock(value); ok {
		return s.AddBlock(fn)
	}
	path, err := s.beginAdd()
	if err != nil {
		return err
	}
	buf := s.stack.AppendSeparator(s.buf[:0], eng.KindArray)
	buf, err = encode.AppendValue(buf, value, s.marshal)
	if err != nil {
		return newIssue(CodeEncode, path, err, nil)
	}
	if err := s.emit(buf, path); err != nil {
		return err
	}
	s.stack.EnterSection(eng.KindArray)
	s.stack.Increment()
	return nil
}

// AddBlock writes an array element that is a container populated by fn.
// A block that writes nothing yields null.
//
//	s.Add(1)
//	s.AddBlock(func(s *elster.Streamer) error {
//		return s.Key("name", "Wiggens")
//	})
//
//	[1,{"name":"Wiggens"}]
func (s *Streamer) AddBlock(fn Block) error {
	if fn == nil {
		return s.Add(nil)
	}
	path, err := s.beginAdd()
	if err != nil {
		return err
	}
	if err := s.guard.CheckDepth(s.stack.Depth()+2, path); err != nil {
		return fromEngineIssue(err)
	}
	buf := s.stack.AppendSeparator(s.buf[:0], eng.KindArray)
	if err := s.emit(buf, path); err != nil {
		return err
	}
	s.stack.EnterSection(eng.KindArray)
	return s.nest(path, fn)
}

// Close writes the closing bracket of the document. A document without any
// item is written as {}. Any call after Close fails with ErrClosed. After a
// write was rejected for MaxBytes, Close writes nothing and returns that
// ErrTruncated fault.
func (s *Streamer) Close() error {
	if s.closed {
		return newIssue(CodeClosed, "", nil, nil)
	}
	if s.stack.Depth() > 0 {
		return newIssue(CodeOpenBlock, s.stack.Path(), nil, nil)
	}
	if s.truncated != nil {
		return s.truncated
	}
	buf := s.buf[:0]
	if s.stack.Kind() == eng.KindUnset {
		buf = append(buf, eng.OpenBracket(eng.KindObject))
	}
	buf = append(buf, s.stack.CloseBracket())
	err := s.emit(buf, "")
	s.closed = s.truncated == nil
	return err
}

// CloseSink closes the document like Close and then closes the sink when it
// implements io.Closer. The sink is closed even if writing the final bracket
// failed; the first error is returned.
func (s *Streamer) CloseSink() error {
	err := s.Close()
	if errors.Is(err, ErrClosed) || errors.Is(err, ErrOpenBlock) {
		return err
	}
	if c, ok := s.sink.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Depth returns the number of nested blocks currently open (0 at top level).
func (s *Streamer) Depth() int { return s.stack.Depth() }

// Path returns the JSON Pointer of the container being written.
func (s *Streamer) Path() string { return eng.NormalizePath(s.stack.Path()) }

// Offset returns the number of bytes written to the sink.
func (s *Streamer) Offset() int64 { return s.offset }

// Closed reports whether Close completed the document.
func (s *Streamer) Closed() bool { return s.closed }

func (s *Streamer) usable(k eng.Kind, op string) error {
	if s.closed {
		return newIssue(CodeClosed, s.stack.Path(), nil, map[string]string{"op": op})
	}
	if s.truncated != nil {
		return s.truncated
	}
	if !s.stack.Accepts(k) {
		return newIssue(CodeContainerType, s.stack.Path(), nil, map[string]string{
			"op":    op,
			"want":  k.String(),
			"level": s.stack.Kind().String(),
		})
	}
	return nil
}

func (s *Streamer) beginKey(name any) (key, path string, err error) {
	if err := s.usable(eng.KindObject, "key"); err != nil {
		return "", "", err
	}
	key, err = encode.KeyText(name)
	if err != nil {
		return "", "", newIssue(CodeEncode, s.stack.Path(), err, nil)
	}
	path = s.stack.ItemPath(eng.KindObject, key)
	if err := s.guard.CheckKey(s.stack.Depth(), key, path); err != nil {
		return "", "", fromEngineIssue(err)
	}
	return key, path, nil
}

func (s *Streamer) beginAdd() (path string, err error) {
	if err := s.usable(eng.KindArray, "add"); err != nil {
		return "", err
	}
	return s.stack.ItemPath(eng.KindArray, ""), nil
}

// appendKey appends the separator or opening brace, the quoted key and ':'.
func (s *Streamer) appendKey(dst []byte, key, path string) ([]byte, error) {
	dst = s.stack.AppendSeparator(dst, eng.KindObject)
	dst, err := encode.AppendString(dst, key, s.marshal)
	if err != nil {
		return dst, newIssue(CodeEncode, path, err, nil)
	}
	return append(dst, ':'), nil
}

func (s *Streamer) commitKey(key, path string) {
	s.stack.EnterSection(eng.KindObject)
	s.guard.RecordKey(s.stack.Depth(), key, path)
}

// emit writes buf to the sink in a single call. buf must be built on s.buf,
// whose capacity is kept for the next item.
func (s *Streamer) emit(buf []byte, path string) error {
	s.buf = buf[:0]
	if s.truncated != nil {
		return s.truncated
	}
	if err := s.guard.CheckBytes(s.offset, len(buf), path); err != nil {
		s.truncated = fromEngineIssue(err)
		return s.truncated
	}
	n, err := s.sink.Write(buf)
	s.offset += int64(n)
	return err
}

func asBlock(v any) (Block, bool) {
	switch fn := v.(type) {
	case Block:
		return fn, true
	case func(*Streamer) error:
		return Block(fn), true
	}
	return nil, false
}
