package manifest

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/rodata/contenthash"
	"github.com/wippyai/rodata/details"
	"github.com/wippyai/rodata/errors"
	"github.com/wippyai/rodata/helper"
)

// NewContainer creates an open container configured by the model's hasher,
// slot index, well-known types and attributes.
func NewContainer(m *Model) (*details.Container, error) {
	hasher, err := contenthash.Lookup(m.Hasher)
	if err != nil {
		return nil, err
	}

	opts := []details.Option{details.WithSlotIndex(m.SlotIndex)}
	if len(m.WellKnown) > 0 {
		wk := make([]details.TypeRef, 0, len(m.WellKnown))
		for _, w := range m.WellKnown {
			wk = append(wk, details.WellKnownType{TypeName: w.Name, ByteSize: w.Size})
		}
		opts = append(opts, details.WithWellKnownTypes(wk...))
	}
	if m.CompilerGenerated {
		opts = append(opts, details.WithCompilerGeneratedAttribute(details.CompilerGenerated))
	}
	return details.New(hasher, opts...), nil
}

// Apply registers the model's blobs and then its helpers into an open
// container, running at most workers registrations at a time. It returns
// the field created for each blob label.
//
// Registration cannot be undone. When Apply fails, the entries registered
// before the failure stay in the container; callers should discard it
// rather than freeze and emit it.
func Apply(ctx context.Context, c *details.Container, m *Model, workers int) (map[string]*details.Field, error) {
	if c.Frozen() {
		return nil, errors.Lifecycle("manifest.Apply", "frozen")
	}
	if workers < 1 {
		workers = 1
	}

	fields := make([]*details.Field, len(m.Blobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range m.Blobs {
		i := i
		b := &m.Blobs[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := b.Bytes(m.Dir)
			if err != nil {
				return err
			}
			fields[i] = c.GetOrCreateField(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byLabel := make(map[string]*details.Field, len(fields))
	for i, f := range fields {
		byLabel[m.Blobs[i].Label] = f
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, h := range m.Helpers {
		h := h
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			body, err := helperBody(h, byLabel)
			if err != nil {
				return err
			}
			if !c.TryAddMethod(h.Name, body) {
				return errors.Duplicate(errors.PhaseRegister, []string{"helper", h.Name}, "method", h.Name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	Logger().Debug("manifest applied",
		zap.String("container", c.Name()),
		zap.Int("blobs", len(m.Blobs)),
		zap.Int("helpers", len(m.Helpers)),
		zap.Int("workers", workers),
	)
	return byLabel, nil
}

func helperBody(h Helper, fields map[string]*details.Field) (any, error) {
	switch h.Kind {
	case helper.KindConst:
		return helper.Const{Value: h.Value}, nil
	case helper.KindStringHash:
		return helper.StringHash{}, nil
	case helper.KindFieldAddress:
		f, ok := fields[h.Blob]
		if !ok {
			return nil, errors.NotFound(errors.PhaseRegister, "blob", h.Blob)
		}
		return helper.FieldAddress{Field: f.Name()}, nil
	}
	return nil, errors.Unsupported(errors.PhaseRegister, "helper kind "+h.Kind)
}
