package elster

import (
	"sync"

	gojson "github.com/goccy/go-json"
)

// Marshaler is the general-purpose JSON serializer behind the Streamer. It
// escapes strings outside the safe ASCII fast path and encodes composite
// values (maps, slices, structs) in one pass. The default implementation is
// backed by goccy/go-json and may be swapped with SetMarshaler.
type Marshaler interface {
	Marshal(v any) ([]byte, error)
	Name() string
}

var (
	marshalerMu      sync.RWMutex
	currentMarshaler Marshaler = defaultMarshaler{}
)

// SetMarshaler replaces the package-wide Marshaler; nil values are ignored.
// Streamers already created keep the Marshaler they started with.
func SetMarshaler(m Marshaler) {
	if m == nil {
		return
	}
	marshalerMu.Lock()
	currentMarshaler = m
	marshalerMu.Unlock()
}

// UseDefaultMarshaler restores the go-json backed Marshaler.
func UseDefaultMarshaler() {
	marshalerMu.Lock()
	currentMarshaler = defaultMarshaler{}
	marshalerMu.Unlock()
}

// DefaultMarshaler returns the go-json backed Marshaler.
func DefaultMarshaler() Marshaler { return defaultMarshaler{} }

func getMarshaler() Marshaler {
	marshalerMu.RLock()
	m := currentMarshaler
	marshalerMu.RUnlock()
	return m
}

// defaultMarshaler wraps goccy/go-json.
type defaultMarshaler struct{}

func (defaultMarshaler) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }
func (defaultMarshaler) Name() string                  { return "go-json" }
