package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/samber/do"
	"go.uber.org/zap"

	"github.com/wippyai/rodata/contenthash"
	"github.com/wippyai/rodata/details"
	"github.com/wippyai/rodata/errors"
	"github.com/wippyai/rodata/helper"
)

func run(ctx context.Context, opts options, logger *zap.Logger, stdout io.Writer) error {
	if opts.format != formatWasm && opts.format != formatLLVM {
		return errors.Unsupported(errors.PhaseConfig, "output format "+opts.format)
	}

	injector := newInjector(ctx, opts, logger)
	defer injector.Shutdown() //nolint:errcheck

	c, err := do.Invoke[*details.Container](injector)
	if err != nil {
		return err
	}

	if opts.list {
		printListing(stdout, c)
		return nil
	}

	w, err := do.InvokeNamed[Writer](injector, opts.format)
	if err != nil {
		return err
	}
	out, err := w.Write(ctx, c)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = stdout.Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return errors.IO(errors.PhaseEmit, "write "+opts.output, err)
	}
	logger.Info("output written", zap.String("path", opts.output), zap.Int("bytes", len(out)))
	return nil
}

func printListing(w io.Writer, c *details.Container) {
	st := c.Stats()
	fmt.Fprintf(w, "Container: %s\n", c.Name())
	fmt.Fprintf(w, "Fields: %d\n", st.Fields)
	fmt.Fprintf(w, "Nested types: %d\n", st.NestedTypes)
	fmt.Fprintf(w, "Methods: %d\n", st.Methods)
	fmt.Fprintf(w, "Data bytes: %d\n", st.DataBytes)

	fmt.Fprintf(w, "\nFields:\n")
	for _, f := range c.Fields() {
		fmt.Fprintf(w, "  %s  %s  %d  %s\n", f.Name(), f.Type().Name(), f.Len(), contenthash.CID(f.Data()))
	}

	fmt.Fprintf(w, "\nNested types:\n")
	for _, t := range c.NestedTypes() {
		fmt.Fprintf(w, "  %s  size=%d\n", t.Name(), t.Size())
	}

	fmt.Fprintf(w, "\nMethods:\n")
	for _, m := range c.Methods() {
		fmt.Fprintf(w, "  %s  %s\n", m.Name, helper.Describe(m.Body))
	}
}
