package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/rodata/details"
	"github.com/wippyai/rodata/llvmemit"
	"github.com/wippyai/rodata/manifest"
	"github.com/wippyai/rodata/wasmemit"
)

func main() {
	var (
		manifestFile = flag.String("manifest", "", "Path to manifest (.hcl or .toml)")
		format       = flag.String("format", formatWasm, "Output format: wasm or llvm")
		output       = flag.String("o", "", "Output file (default stdout)")
		workers      = flag.Int("workers", runtime.NumCPU(), "Concurrent registrations")
		list         = flag.Bool("list", false, "List fields, types and methods and exit")
		verify       = flag.Bool("verify", false, "Compile the wasm output with wazero before writing")
		interactive  = flag.Bool("i", false, "Interactive mode with TUI")
		verbose      = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *manifestFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: rodatagen -manifest <file.hcl|file.toml> [-format wasm|llvm] [-o out]")
		fmt.Fprintln(os.Stderr, "       rodatagen -manifest <file> -list")
		fmt.Fprintln(os.Stderr, "       rodatagen -manifest <file> -i  (interactive mode)")
		os.Exit(1)
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck
	installLogger(logger)

	opts := options{
		manifest: *manifestFile,
		format:   *format,
		output:   *output,
		workers:  *workers,
		list:     *list,
		verify:   *verify,
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(context.Background(), opts, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(context.Background(), opts, logger, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

func installLogger(l *zap.Logger) {
	details.SetLogger(l.Named("details"))
	manifest.SetLogger(l.Named("manifest"))
	wasmemit.SetLogger(l.Named("wasmemit"))
	llvmemit.SetLogger(l.Named("llvmemit"))
}
