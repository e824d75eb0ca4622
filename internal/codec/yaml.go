package codec

import "gopkg.in/yaml.v3"

// YAML encodes records as YAML mappings, for stores meant to be read and
// edited by hand.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Ext() string { return ".yaml" }

func (YAML) Marshal(values map[string]any) ([]byte, error) {
	return yaml.Marshal(values)
}

func (YAML) Unmarshal(data []byte) (map[string]any, error) {
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errNotObject
	}
	return out, nil
}
