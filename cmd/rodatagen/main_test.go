package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	rderrors "github.com/wippyai/rodata/errors"
	"github.com/wippyai/rodata/helper"
)

const testManifest = `
slot_index = 1

well_known "Int32" { size = 4 }

blob "greeting" { text = "hello" }
blob "word"     { hex = "01020304" }

helper "answer" {
  kind  = "const"
  value = 42
}

helper "greeting_addr" {
  kind = "field_address"
  blob = "greeting"
}

helper "ComputeStringHash" { kind = "string_hash" }
`

func writeTestManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rodata.hcl")
	if err := os.WriteFile(path, []byte(testManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testOptions(t *testing.T) options {
	return options{manifest: writeTestManifest(t), format: formatWasm, workers: 4}
}

func TestRun_List(t *testing.T) {
	opts := testOptions(t)
	opts.list = true

	var out bytes.Buffer
	if err := run(context.Background(), opts, zap.NewNop(), &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, want := range []string{
		"Container: <PrivateImplementationDetails>1",
		"Fields: 2",
		"Nested types: 1",
		"Methods: 3",
		"__StaticArrayInitTypeSize=5  size=5",
		"Int32  4  bafk",
		"answer  () -> i64 = 42",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("listing missing %q:\n%s", want, out.String())
		}
	}
}

func TestRun_Wasm(t *testing.T) {
	opts := testOptions(t)
	opts.verify = true
	opts.output = filepath.Join(t.TempDir(), "out.wasm")

	if err := run(context.Background(), opts, zap.NewNop(), &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	bin, err := os.ReadFile(opts.output)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)
	mod, err := rt.Instantiate(ctx, bin)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	res, err := mod.ExportedFunction("answer").Call(ctx)
	if err != nil {
		t.Fatalf("call answer: %v", err)
	}
	if res[0] != 42 {
		t.Errorf("answer = %d, want 42", res[0])
	}
}

func TestRun_LLVM(t *testing.T) {
	opts := testOptions(t)
	opts.format = formatLLVM

	var out bytes.Buffer
	if err := run(context.Background(), opts, zap.NewNop(), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), `c"hello"`) {
		t.Errorf("IR missing greeting:\n%s", out.String())
	}
}

func TestRun_Errors(t *testing.T) {
	t.Run("unknown format", func(t *testing.T) {
		opts := testOptions(t)
		opts.format = "elf"
		err := run(context.Background(), opts, zap.NewNop(), &bytes.Buffer{})
		if !errors.Is(err, &rderrors.Error{Phase: rderrors.PhaseConfig, Kind: rderrors.KindUnsupported}) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing manifest", func(t *testing.T) {
		opts := options{manifest: filepath.Join(t.TempDir(), "none.toml"), format: formatWasm, workers: 1}
		err := run(context.Background(), opts, zap.NewNop(), &bytes.Buffer{})
		if !errors.Is(err, &rderrors.Error{Phase: rderrors.PhaseConfig, Kind: rderrors.KindIO}) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestInteractive(t *testing.T) {
	m := newInteractiveModel(context.Background(), testOptions(t), zap.NewNop())
	defer m.close()

	msg := m.load()
	if lm := msg.(loadedMsg); lm.err != nil {
		t.Fatalf("load: %v", lm.err)
	}
	m.Update(msg)
	if !strings.Contains(m.View(), "__StaticData_") {
		t.Errorf("fields tab missing data:\n%s", m.View())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.active != tabMethods {
		t.Fatalf("active tab = %d, want methods", m.active)
	}

	// Methods sort ordinally, so ComputeStringHash is first.
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateInput || cmd == nil {
		t.Fatalf("state = %d, want input", m.state)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abc")})
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(cmd())
	if m.err != nil {
		t.Fatalf("hash call: %v", m.err)
	}
	want := fmt.Sprintf("0x%08X (reference 0x%08X)", helper.FNV1a([]byte("abc")), helper.FNV1a([]byte("abc")))
	if m.result != want {
		t.Errorf("result = %q, want %q", m.result, want)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(cmd())
	if m.selected != "answer" || m.result != "42" {
		t.Errorf("selected %q result %q, want answer 42", m.selected, m.result)
	}
}
