package elster

import (
	"bytes"
	"context"
	"io"
)

type contextKey int

const _ctxKeyStreamer contextKey = iota

// NewContext returns a child context carrying s as the active Streamer.
func NewContext(ctx context.Context, s *Streamer) context.Context {
	return context.WithValue(ctx, _ctxKeyStreamer, s)
}

// FromContext returns the active Streamer carried by ctx, if any.
func FromContext(ctx context.Context) (*Streamer, bool) {
	s, ok := ctx.Value(_ctxKeyStreamer).(*Streamer)
	return s, ok && s != nil
}

// Template produces a document (or a fragment of one) through s. ctx carries
// s, so templates that include other templates can pass it on.
type Template func(ctx context.Context, s *Streamer) error

// Render runs t into a fresh buffer and returns the closed document.
//
// When ctx already carries an active Streamer, t writes into it instead and
// Render returns nil bytes: an included template becomes part of the
// enclosing document rather than a second one.
func Render(ctx context.Context, t Template, opts ...Opt) ([]byte, error) {
	if s, ok := FromContext(ctx); ok {
		return nil, t(ctx, s)
	}
	var buf bytes.Buffer
	if err := RenderTo(ctx, &buf, t, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderTo runs t into w and closes the document. w is not closed. When ctx
// already carries an active Streamer, t writes into it and w is untouched.
func RenderTo(ctx context.Context, w io.Writer, t Template, opts ...Opt) error {
	if s, ok := FromContext(ctx); ok {
		return t(ctx, s)
	}
	s := New(w, opts...)
	if err := t(NewContext(ctx, s), s); err != nil {
		return err
	}
	return s.Close()
}
