package elster_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/reoring/elster"
)

type recordingMarshaler struct {
	calls []any
}

func (m *recordingMarshaler) Marshal(v any) ([]byte, error) {
	m.calls = append(m.calls, v)
	return elster.DefaultMarshaler().Marshal(v)
}

func (m *recordingMarshaler) Name() string { return "recording" }

func TestMarshaler_OnlyForEscapesAndComposites(t *testing.T) {
	m := &recordingMarshaler{}
	f := newFixture(t, elster.Opt{Marshaler: m})
	f.must(f.s.Key("plain", "fast path"))
	f.must(f.s.Key("n", 42))
	f.must(f.s.Key("escaped", "line\nbreak"))
	f.must(f.s.Key("list", []string{"x"}))
	f.close()
	if len(m.calls) != 2 {
		t.Fatalf("want 2 marshaler calls, got %d: %v", len(m.calls), m.calls)
	}
	f.want(map[string]any{"plain": "fast path", "n": float64(42), "escaped": "line\nbreak", "list": []any{"x"}})
}

type failingMarshaler struct{}

var errMarshal = errors.New("marshal failed")

func (failingMarshaler) Marshal(any) ([]byte, error) { return nil, errMarshal }
func (failingMarshaler) Name() string                { return "failing" }

func TestSetMarshaler(t *testing.T) {
	elster.SetMarshaler(failingMarshaler{})
	defer elster.UseDefaultMarshaler()

	var buf bytes.Buffer
	s := elster.New(&buf)
	err := s.Add(map[string]int{"a": 1})
	if !errors.Is(err, elster.ErrEncode) || !errors.Is(err, errMarshal) {
		t.Fatalf("want ErrEncode wrapping the marshal error, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written, got %q", buf.String())
	}

	// nil is ignored
	elster.SetMarshaler(nil)
	elster.UseDefaultMarshaler()
	s = elster.New(&buf)
	if err := s.Add(map[string]int{"a": 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elster.DefaultMarshaler().Name() != "go-json" {
		t.Fatalf("default marshaler should be go-json")
	}
}
