package mix

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes and validates a YAML mix. Unknown fields are rejected so
// that typos in hand-written mixes surface at load time.
func Parse(data []byte) (Mix, error) {
	var m Mix
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Mix{}, fmt.Errorf("decode mix: %w", err)
	}
	if m.TimeConstant == 0 {
		m.TimeConstant = DefaultTimeConstant
	}
	if m.MasterGain == 0 {
		m.MasterGain = 1
	}
	if err := m.Validate(); err != nil {
		return Mix{}, err
	}
	return m, nil
}

// Load reads a mix file.
func Load(path string) (Mix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Mix{}, fmt.Errorf("read mix: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return Mix{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Marshal encodes m as YAML.
func Marshal(m Mix) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encode mix: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode mix: %w", err)
	}
	return buf.Bytes(), nil
}

// Write validates m and writes it to path.
func Write(m Mix, path string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
