//go:build stdjson

package elster_test

import (
	"github.com/reoring/elster"
	"github.com/reoring/elster/marshal/stdjson"
)

func init() {
	elster.SetMarshaler(stdjson.Marshaler())
}
