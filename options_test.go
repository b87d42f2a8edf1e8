package elster_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/reoring/elster"
)

func TestMaxDepth(t *testing.T) {
	f := newFixture(t, elster.Opt{MaxDepth: 2})
	var inner error
	f.must(f.s.KeyBlock("a", func(s *elster.Streamer) error {
		if err := s.Key("ok", 1); err != nil {
			return err
		}
		inner = s.KeyBlock("too_deep", func(s *elster.Streamer) error {
			t.Fatal("block beyond max depth must not run")
			return nil
		})
		return nil
	}))
	if !errors.Is(inner, elster.ErrMaxDepth) {
		t.Fatalf("want ErrMaxDepth, got %v", inner)
	}
	iss, _ := elster.AsIssue(inner)
	if iss.Path != "/a/too_deep" {
		t.Fatalf("path=%s", iss.Path)
	}
	f.close()
	if got, want := f.buf.String(), `{"a":{"ok":1}}`; got != want {
		t.Fatalf("want %s, got %s", want, got)
	}
}

func TestMaxBytes(t *testing.T) {
	f := newFixture(t, elster.Opt{MaxBytes: 9})
	f.must(f.s.Add("abc")) // ["abc"
	err := f.s.Add("defg")
	if !errors.Is(err, elster.ErrTruncated) {
		t.Fatalf("want ErrTruncated, got %v", err)
	}
	// the document can no longer be completed
	if err := f.s.Add(1); !errors.Is(err, elster.ErrTruncated) {
		t.Fatalf("want ErrTruncated after truncation, got %v", err)
	}
	if err := f.s.Close(); !errors.Is(err, elster.ErrTruncated) {
		t.Fatalf("close: want ErrTruncated, got %v", err)
	}
	if got, want := f.buf.String(), `["abc"`; got != want {
		t.Fatalf("want %s, got %s", want, got)
	}
	if f.s.Offset() != 6 {
		t.Fatalf("offset=%d", f.s.Offset())
	}
}

func TestMaxBytes_NestedClose(t *testing.T) {
	cases := []struct {
		name  string
		max   int64
		write func(s *elster.Streamer) error
		want  string
	}{
		{
			// the null of the empty block does not fit
			name: "empty block",
			max:  4,
			write: func(s *elster.Streamer) error {
				if err := s.Add(1); err != nil {
					return err
				}
				return s.AddBlock(func(*elster.Streamer) error { return nil })
			},
			want: "[1,",
		},
		{
			name: "item inside block",
			max:  7,
			write: func(s *elster.Streamer) error {
				return s.KeyBlock("a", func(s *elster.Streamer) error { return s.Add(12) })
			},
			want: `{"a":`,
		},
		{
			// the nested bracket fits but the outer one does not
			name: "closing bracket",
			max:  8,
			write: func(s *elster.Streamer) error {
				return s.KeyBlock("a", func(s *elster.Streamer) error { return s.Add(1) })
			},
			want: `{"a":[1]`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := elster.New(&buf, elster.Opt{MaxBytes: tc.max})
			err := tc.write(s)
			if err == nil {
				err = s.Close()
			} else {
				if err := s.Add(2); !errors.Is(err, elster.ErrTruncated) {
					t.Fatalf("add after truncation: want ErrTruncated, got %v", err)
				}
				if err := s.Key("b", 1); !errors.Is(err, elster.ErrTruncated) {
					t.Fatalf("key after truncation: want ErrTruncated, got %v", err)
				}
				if cerr := s.Close(); !errors.Is(cerr, elster.ErrTruncated) {
					t.Fatalf("close: want ErrTruncated, got %v", cerr)
				}
			}
			if !errors.Is(err, elster.ErrTruncated) {
				t.Fatalf("want ErrTruncated, got %v", err)
			}
			if got := buf.String(); got != tc.want {
				t.Fatalf("want %s, got %s", tc.want, got)
			}
			if s.Closed() {
				t.Fatalf("a truncated document must not report closed")
			}
		})
	}
}

func TestDuplicateKeys_Ignore(t *testing.T) {
	f := newFixture(t)
	f.must(f.s.Key("a", 1))
	f.must(f.s.Key("a", 2))
	f.close()
	if got, want := f.buf.String(), `{"a":1,"a":2}`; got != want {
		t.Fatalf("want %s, got %s", want, got)
	}
}

func TestDuplicateKeys_Error(t *testing.T) {
	f := newFixture(t, elster.Opt{OnDuplicateKey: elster.Error})
	f.must(f.s.Key("a", 1))
	err := f.s.KeyBlock("a", func(*elster.Streamer) error {
		t.Fatal("block must not run for a rejected key")
		return nil
	})
	if !errors.Is(err, elster.ErrDuplicateKey) {
		t.Fatalf("want ErrDuplicateKey, got %v", err)
	}
	// sibling objects track keys separately
	f.must(f.s.KeyBlock("list", func(s *elster.Streamer) error {
		for i := 0; i < 2; i++ {
			if err := s.AddBlock(func(s *elster.Streamer) error { return s.Key("a", i) }); err != nil {
				return err
			}
		}
		return nil
	}))
	f.close()
	if got, want := f.buf.String(), `{"a":1,"list":[{"a":0},{"a":1}]}`; got != want {
		t.Fatalf("want %s, got %s", want, got)
	}
}

func TestDuplicateKeys_WarnReportsAndWrites(t *testing.T) {
	var issues []elster.Issue
	var logs bytes.Buffer
	f := newFixture(t, elster.Opt{
		OnDuplicateKey: elster.Warn,
		IssueSink:      func(iss elster.Issue) { issues = append(issues, iss) },
		Logger:         log.NewLogfmtLogger(&logs),
	})
	f.must(f.s.KeyBlock("o", func(s *elster.Streamer) error {
		if err := s.Key("x", 1); err != nil {
			return err
		}
		return s.Key("x", 2)
	}))
	f.close()
	if got, want := f.buf.String(), `{"o":{"x":1,"x":2}}`; got != want {
		t.Fatalf("want %s, got %s", want, got)
	}
	if len(issues) != 1 || issues[0].Code != elster.CodeDuplicateKey || issues[0].Path != "/o/x" {
		t.Fatalf("unexpected issues: %+v", issues)
	}
	if !strings.Contains(logs.String(), "level=warn") || !strings.Contains(logs.String(), "path=/o/x") {
		t.Fatalf("unexpected log output: %s", logs.String())
	}
}

func TestDuplicateKeys_WarnOnlyForWrittenMembers(t *testing.T) {
	var issues []elster.Issue
	f := newFixture(t, elster.Opt{
		OnDuplicateKey: elster.Warn,
		IssueSink:      func(iss elster.Issue) { issues = append(issues, iss) },
	})
	f.must(f.s.Key("x", 1))
	if err := f.s.Key("x", make(chan int)); !errors.Is(err, elster.ErrEncode) {
		t.Fatalf("want ErrEncode, got %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("a member that was not written must not be reported: %+v", issues)
	}
	f.must(f.s.Key("x", 2))
	f.close()
	if len(issues) != 1 || issues[0].Path != "/x" {
		t.Fatalf("unexpected issues: %+v", issues)
	}
	if got, want := f.buf.String(), `{"x":1,"x":2}`; got != want {
		t.Fatalf("want %s, got %s", want, got)
	}

	// a member rejected by the sink is not reported either
	issues = nil
	sinkErr := errors.New("disk full")
	s := elster.New(&failingWriter{after: 1, err: sinkErr}, elster.Opt{
		OnDuplicateKey: elster.Warn,
		IssueSink:      func(iss elster.Issue) { issues = append(issues, iss) },
	})
	if err := s.Key("y", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Key("y", 2); err != sinkErr {
		t.Fatalf("want sink error, got %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %+v", issues)
	}
}

func TestLogger_FailedBlock(t *testing.T) {
	var logs bytes.Buffer
	logger := level.NewFilter(log.NewLogfmtLogger(&logs), level.AllowDebug())
	f := newFixture(t, elster.Opt{Logger: logger})
	boom := errors.New("boom")
	if err := f.s.KeyBlock("p", func(s *elster.Streamer) error {
		if err := s.Add(1); err != nil {
			return err
		}
		return boom
	}); err != boom {
		t.Fatalf("want boom, got %v", err)
	}
	out := logs.String()
	for _, want := range []string{"level=debug", `msg="nested block failed"`, "path=/p", "items=1", "err=boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output %q lacks %q", out, want)
		}
	}
}

func TestOpt_LastWins(t *testing.T) {
	f := newFixture(t, elster.Opt{MaxDepth: 1}, elster.Opt{})
	f.must(f.s.KeyBlock("a", func(s *elster.Streamer) error { return s.Add(1) }))
	f.close()
	if got, want := f.buf.String(), `{"a":[1]}`; got != want {
		t.Fatalf("want %s, got %s", want, got)
	}
}

func TestSeverity_String(t *testing.T) {
	for sev, want := range map[elster.Severity]string{elster.Ignore: "ignore", elster.Warn: "warn", elster.Error: "error"} {
		if sev.String() != want {
			t.Fatalf("%d: want %s, got %s", sev, want, sev.String())
		}
	}
}
