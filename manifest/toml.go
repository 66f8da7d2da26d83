package manifest

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/wippyai/rodata/errors"
)

// TOMLLoader reads TOML manifests. Unknown keys are rejected.
type TOMLLoader struct{}

// NewTOMLLoader creates a new TOML manifest loader.
func NewTOMLLoader() *TOMLLoader {
	return &TOMLLoader{}
}

type tomlRoot struct {
	SlotIndex         *int            `toml:"slot_index"`
	Hasher            *string         `toml:"hasher"`
	CompilerGenerated *bool           `toml:"compiler_generated"`
	WellKnown         []tomlWellKnown `toml:"well_known"`
	Blobs             []tomlBlob      `toml:"blob"`
	Helpers           []tomlHelper    `toml:"helper"`
}

type tomlWellKnown struct {
	Name string `toml:"name"`
	Size uint32 `toml:"size"`
}

type tomlBlob struct {
	Label string  `toml:"label"`
	Text  *string `toml:"text"`
	Hex   *string `toml:"hex"`
	File  *string `toml:"file"`
}

type tomlHelper struct {
	Name  string `toml:"name"`
	Kind  string `toml:"kind"`
	Blob  string `toml:"blob"`
	Value int64  `toml:"value"`
}

// Load reads and decodes one TOML manifest.
func (l *TOMLLoader) Load(_ context.Context, path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.IO(errors.PhaseConfig, "open "+path, err)
	}
	defer f.Close()

	var root tomlRoot
	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&root); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "decode "+path)
	}

	m := newModel()
	m.Dir = filepath.Dir(path)
	if root.SlotIndex != nil {
		m.SlotIndex = *root.SlotIndex
	}
	if root.Hasher != nil {
		m.Hasher = *root.Hasher
	}
	if root.CompilerGenerated != nil {
		m.CompilerGenerated = *root.CompilerGenerated
	}
	for _, wk := range root.WellKnown {
		m.WellKnown = append(m.WellKnown, WellKnown(wk))
	}
	for _, b := range root.Blobs {
		m.Blobs = append(m.Blobs, Blob{Label: b.Label, Text: b.Text, Hex: b.Hex, File: b.File})
	}
	for _, h := range root.Helpers {
		m.Helpers = append(m.Helpers, Helper(h))
	}
	return m, nil
}
