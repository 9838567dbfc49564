package backend

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"taskboard/internal/state"

	"gopkg.in/yaml.v3"
)

// LoadSeed reads a YAML seed file with top-level groups, tasks and comments keys.
func LoadSeed(path string) (state.Tree, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return state.Tree{}, err
	}
	t, err := ParseSeed(b)
	if err != nil {
		return state.Tree{}, fmt.Errorf("seed %s: %w", path, err)
	}
	return t, nil
}

// ParseSeed decodes and strictly validates a seed. Unknown keys are rejected.
func ParseSeed(b []byte) (state.Tree, error) {
	var t state.Tree
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return state.Tree{}, err
	}
	t = t.Normalize()
	if err := state.Validate(t); err != nil {
		return state.Tree{}, err
	}
	return t, nil
}

// MarshalSeed writes t in the seed format.
func MarshalSeed(t state.Tree) ([]byte, error) {
	return yaml.Marshal(t.Normalize())
}
