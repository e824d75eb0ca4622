package codec

import (
	"bytes"
	"errors"
	"io"

	json "github.com/goccy/go-json"
)

// JSON encodes records as compact single-line JSON objects. Numbers decode
// as json.Number so large integers survive the round trip.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Ext() string { return ".json" }

func (JSON) Marshal(values map[string]any) ([]byte, error) {
	return json.Marshal(values)
}

func (JSON) Unmarshal(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errNotObject
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return out, nil
}
