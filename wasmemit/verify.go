package wasmemit

import (
	"context"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/rodata/errors"
)

// Verify compiles module with wazero and reports any validation failure.
func Verify(ctx context.Context, module []byte) error {
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, module)
	if err != nil {
		return errors.Wrap(errors.PhaseEmit, errors.KindInvalidInput, err, "compile emitted module")
	}
	return compiled.Close(ctx)
}
