package main

import (
	"context"

	"github.com/samber/do"
	"go.uber.org/zap"

	"github.com/wippyai/rodata/details"
	"github.com/wippyai/rodata/llvmemit"
	"github.com/wippyai/rodata/manifest"
	"github.com/wippyai/rodata/wasmemit"
)

const (
	formatWasm = "wasm"
	formatLLVM = "llvm"
)

type options struct {
	manifest string
	format   string
	output   string
	workers  int
	list     bool
	verify   bool
}

// Writer encodes a frozen container in one output format.
type Writer interface {
	Write(ctx context.Context, c *details.Container) ([]byte, error)
}

type wasmWriter struct {
	verify bool
}

func (w wasmWriter) Write(ctx context.Context, c *details.Container) ([]byte, error) {
	out, err := wasmemit.Emit(c)
	if err != nil {
		return nil, err
	}
	if w.verify {
		if err := wasmemit.Verify(ctx, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type llvmWriter struct{}

func (llvmWriter) Write(_ context.Context, c *details.Container) ([]byte, error) {
	s, err := llvmemit.EmitString(c)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// newInjector wires the build pipeline: manifest, frozen container and
// the writers by format name.
func newInjector(ctx context.Context, opts options, logger *zap.Logger) *do.Injector {
	i := do.New()

	do.ProvideValue(i, logger)
	do.ProvideNamedValue[Writer](i, formatWasm, wasmWriter{verify: opts.verify})
	do.ProvideNamedValue[Writer](i, formatLLVM, llvmWriter{})

	do.Provide(i, func(i *do.Injector) (*manifest.Model, error) {
		return manifest.Load(ctx, opts.manifest)
	})

	do.Provide(i, func(i *do.Injector) (*details.Container, error) {
		m, err := do.Invoke[*manifest.Model](i)
		if err != nil {
			return nil, err
		}
		c, err := manifest.NewContainer(m)
		if err != nil {
			return nil, err
		}
		if _, err := manifest.Apply(ctx, c, m, opts.workers); err != nil {
			return nil, err
		}
		c.Freeze()

		st := c.Stats()
		do.MustInvoke[*zap.Logger](i).Info("container frozen",
			zap.String("name", c.Name()),
			zap.Int("fields", st.Fields),
			zap.Int("nested_types", st.NestedTypes),
			zap.Int("methods", st.Methods),
			zap.Int("data_bytes", st.DataBytes),
		)
		return c, nil
	})

	return i
}
