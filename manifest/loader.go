package manifest

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/rodata/errors"
)

// Loader reads a manifest file in one format into a Model. The returned
// Model has defaults applied but is not yet validated.
type Loader interface {
	Load(ctx context.Context, path string) (*Model, error)
}

// LoaderFor picks a loader by file extension.
func LoaderFor(path string) (Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return NewHCLLoader(), nil
	case ".toml":
		return NewTOMLLoader(), nil
	}
	return nil, errors.Unsupported(errors.PhaseConfig, "manifest extension "+filepath.Ext(path))
}

// Load reads and validates the manifest at path.
func Load(ctx context.Context, path string) (*Model, error) {
	loader, err := LoaderFor(path)
	if err != nil {
		return nil, err
	}
	m, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := Validate(m); err != nil {
		return nil, err
	}

	Logger().Debug("manifest loaded",
		zap.String("path", path),
		zap.Int("blobs", len(m.Blobs)),
		zap.Int("helpers", len(m.Helpers)),
		zap.Int("well_known", len(m.WellKnown)),
	)
	return m, nil
}
