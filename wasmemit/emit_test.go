package wasmemit

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/rodata/contenthash"
	"github.com/wippyai/rodata/details"
	rderrors "github.com/wippyai/rodata/errors"
	"github.com/wippyai/rodata/helper"
)

var testMagicVersion = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func newTestContainer(t *testing.T) (*details.Container, *details.Field) {
	t.Helper()
	c := details.New(contenthash.SHA256(),
		details.WithWellKnownTypes(details.WellKnownType{TypeName: "u32", ByteSize: 4}),
		details.WithCompilerGeneratedAttribute(details.CompilerGenerated),
	)
	hello := c.GetOrCreateField([]byte("hello"))
	c.GetOrCreateField([]byte{1, 2, 3, 4})
	c.GetOrCreateField(make([]byte, 24))
	c.TryAddMethod("answer", helper.Const{Value: 42})
	c.TryAddMethod("hello_addr", helper.FieldAddress{Field: hello.Name()})
	c.TryAddMethod("ComputeStringHash", helper.StringHash{})
	c.Freeze()
	return c, hello
}

func instantiate(t *testing.T, bin []byte) api.Module {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })

	mod, err := rt.Instantiate(ctx, bin)
	if err != nil {
		t.Fatalf("failed to instantiate: %v", err)
	}
	return mod
}

func TestEmit_Header(t *testing.T) {
	c, _ := newTestContainer(t)
	bin, err := Emit(c)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !bytes.HasPrefix(bin, testMagicVersion) {
		t.Error("expected valid WASM header")
	}
	if !bytes.Contains(bin, []byte(TypesSection)) {
		t.Error("expected type records custom section")
	}
	if !bytes.Contains(bin, []byte(details.CompilerGenerated.Name)) {
		t.Error("expected container attribute in type records")
	}
	if err := Verify(context.Background(), bin); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestEmit_FieldsInMemory(t *testing.T) {
	c, _ := newTestContainer(t)
	bin, err := Emit(c)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	mod := instantiate(t, bin)

	placements, end, err := Plan(c, DefaultBase)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if end != DefaultBase+5+4+24 {
		t.Errorf("end = %d", end)
	}

	for _, p := range placements {
		g := mod.ExportedGlobal(p.Field.Name())
		if g == nil {
			t.Fatalf("global %s not exported", p.Field.Name())
		}
		if got := uint32(g.Get()); got != p.Offset {
			t.Errorf("global %s = %d, want %d", p.Field.Name(), got, p.Offset)
		}
		data, ok := mod.Memory().Read(p.Offset, uint32(p.Field.Len()))
		if !ok {
			t.Fatalf("memory read at %d failed", p.Offset)
		}
		if !bytes.Equal(data, p.Field.Data()) {
			t.Errorf("memory at %s = %x, want %x", p.Field.Name(), data, p.Field.Data())
		}
	}
}

func TestEmit_StorageTypeGlobals(t *testing.T) {
	c, _ := newTestContainer(t)
	bin, err := Emit(c)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	mod := instantiate(t, bin)

	for _, st := range c.NestedTypes() {
		g := mod.ExportedGlobal(st.Name())
		if g == nil {
			t.Fatalf("global %s not exported", st.Name())
		}
		if uint32(g.Get()) != st.Size() {
			t.Errorf("global %s = %d, want %d", st.Name(), g.Get(), st.Size())
		}
	}
	if mod.ExportedGlobal("u32") != nil {
		t.Error("well-known type must not be exported")
	}
}

func TestEmit_Helpers(t *testing.T) {
	ctx := context.Background()
	c, hello := newTestContainer(t)
	bin, err := Emit(c)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	mod := instantiate(t, bin)

	res, err := mod.ExportedFunction("answer").Call(ctx)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if int64(res[0]) != 42 {
		t.Errorf("answer() = %d, want 42", res[0])
	}

	helloOff := uint32(mod.ExportedGlobal(hello.Name()).Get())
	res, err = mod.ExportedFunction("hello_addr").Call(ctx)
	if err != nil {
		t.Fatalf("hello_addr: %v", err)
	}
	if uint32(res[0]) != helloOff {
		t.Errorf("hello_addr() = %d, want %d", res[0], helloOff)
	}

	hash := mod.ExportedFunction("ComputeStringHash")
	res, err = hash.Call(ctx, uint64(helloOff), 5)
	if err != nil {
		t.Fatalf("ComputeStringHash: %v", err)
	}
	if got, want := uint32(res[0]), helper.FNV1a([]byte("hello")); got != want {
		t.Errorf("ComputeStringHash(hello) = %#x, want %#x", got, want)
	}

	res, err = hash.Call(ctx, uint64(helloOff), 0)
	if err != nil {
		t.Fatalf("ComputeStringHash empty: %v", err)
	}
	if uint32(res[0]) != helper.FNVOffsetBasis {
		t.Errorf("ComputeStringHash(empty) = %#x, want offset basis", res[0])
	}
}

func TestEmit_Deterministic(t *testing.T) {
	build := func(order []string) []byte {
		c := details.New(contenthash.SHA256())
		for _, s := range order {
			c.GetOrCreateField([]byte(s))
			c.TryAddMethod("len"+s, helper.Const{Value: int64(len(s))})
		}
		c.Freeze()
		bin, err := Emit(c)
		if err != nil {
			t.Fatalf("Emit: %v", err)
		}
		return bin
	}

	a := build([]string{"alpha", "beta", "gamma", "delta-delta"})
	b := build([]string{"delta-delta", "gamma", "beta", "alpha"})
	if !bytes.Equal(a, b) {
		t.Error("output depends on registration order")
	}
}

func TestEmit_Empty(t *testing.T) {
	c := details.New(contenthash.SHA256())
	c.Freeze()
	bin, err := Emit(c, WithMemoryExport("mem"))
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	mod := instantiate(t, bin)
	if mod.ExportedMemory("mem") == nil {
		t.Error("expected memory export named mem")
	}
}

func TestEmit_WithBase(t *testing.T) {
	c := details.New(contenthash.SHA256())
	f := c.GetOrCreateField([]byte("x"))
	c.Freeze()
	bin, err := Emit(c, WithBase(70000))
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	mod := instantiate(t, bin)
	if got := uint32(mod.ExportedGlobal(f.Name()).Get()); got != 70000 {
		t.Errorf("offset = %d, want 70000", got)
	}
	if size := mod.Memory().Size(); size < 2*pageSize {
		t.Errorf("memory size = %d, want at least two pages", size)
	}
}

func TestEmit_Errors(t *testing.T) {
	t.Run("open container", func(t *testing.T) {
		c := details.New(contenthash.SHA256())
		_, err := Emit(c)
		if !errors.Is(err, &rderrors.Error{Phase: rderrors.PhaseLifecycle, Kind: rderrors.KindLifecycle}) {
			t.Errorf("Emit on open container: %v", err)
		}
	})

	t.Run("unsupported body", func(t *testing.T) {
		c := details.New(contenthash.SHA256())
		c.TryAddMethod("weird", "not a body")
		c.Freeze()
		_, err := Emit(c)
		if !errors.Is(err, &rderrors.Error{Phase: rderrors.PhaseEmit, Kind: rderrors.KindUnsupported}) {
			t.Fatalf("unexpected error: %v", err)
		}
		var rerr *rderrors.Error
		if !errors.As(err, &rerr) || rerr.Value != "not a body" {
			t.Errorf("error %v does not carry the rejected body", err)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		c := details.New(contenthash.SHA256())
		c.TryAddMethod("addr", helper.FieldAddress{Field: "missing"})
		c.Freeze()
		_, err := Emit(c)
		if !errors.Is(err, &rderrors.Error{Phase: rderrors.PhaseEmit, Kind: rderrors.KindNotFound}) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("export name clash", func(t *testing.T) {
		c := details.New(contenthash.SHA256())
		c.TryAddMethod(MemoryExport, helper.Const{})
		c.Freeze()
		_, err := Emit(c)
		if !errors.Is(err, &rderrors.Error{Phase: rderrors.PhaseEmit, Kind: rderrors.KindDuplicate}) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestVerify_Invalid(t *testing.T) {
	err := Verify(context.Background(), []byte{0x00, 0x61, 0x73, 0x6d, 0x02})
	if err == nil {
		t.Fatal("expected error for truncated module")
	}
}
