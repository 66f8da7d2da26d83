package manifest

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/wippyai/rodata/contenthash"
	"github.com/wippyai/rodata/errors"
)

// Model is the format-agnostic representation of a manifest.
type Model struct {
	// Dir resolves relative blob file paths. Loaders set it to the
	// manifest's directory.
	Dir               string
	Hasher            string
	WellKnown         []WellKnown
	Blobs             []Blob
	Helpers           []Helper
	SlotIndex         int
	CompilerGenerated bool
}

// WellKnown names a primitive type reused for blobs of its exact size.
type WellKnown struct {
	Name string
	Size uint32
}

// Blob is one byte sequence. Exactly one of Text, Hex and File is set.
type Blob struct {
	Text  *string
	Hex   *string
	File  *string
	Label string
}

// Helper is one synthesized method.
type Helper struct {
	Name  string
	Kind  string
	Blob  string
	Value int64
}

// newModel returns a Model with defaults applied.
func newModel() *Model {
	return &Model{
		SlotIndex: -1,
		Hasher:    contenthash.NameSHA256,
	}
}

// Source names which content attribute the blob uses.
func (b *Blob) Source() string {
	switch {
	case b.Text != nil:
		return "text"
	case b.Hex != nil:
		return "hex"
	case b.File != nil:
		return "file"
	}
	return ""
}

// Bytes resolves the blob content. Relative file paths are joined to dir.
func (b *Blob) Bytes(dir string) ([]byte, error) {
	switch {
	case b.Text != nil:
		return []byte(*b.Text), nil
	case b.Hex != nil:
		data, err := hex.DecodeString(*b.Hex)
		if err != nil {
			return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Entity("blob", b.Label).
				Cause(err).
				Detail("invalid hex content").
				Build()
		}
		return data, nil
	case b.File != nil:
		path := *b.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.IO(errors.PhaseConfig, "read blob "+b.Label, err)
		}
		return data, nil
	}
	return nil, errors.InvalidInput(errors.PhaseConfig, []string{"blob", b.Label}, "no content attribute")
}
