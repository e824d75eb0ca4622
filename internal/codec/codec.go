// Package codec implements the record encodings a repository can store:
// JSON (the default) and YAML. Both produce self-describing field maps.
package codec

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// errNotObject is returned when a record decodes to something other than a
// field map.
var errNotObject = errors.New("record is not an object")

var errTrailingData = errors.New("record has data after the object")

// ForFormat returns the codec registered for format ("json" or "yaml").
// An empty format selects JSON.
func ForFormat(format string) (types.Codec, error) {
	switch format {
	case "", types.FormatJSON:
		return JSON{}, nil
	case types.FormatYAML:
		return YAML{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrFormatUnknown, format)
	}
}
