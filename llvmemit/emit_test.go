package llvmemit

import (
	"errors"
	"strings"
	"testing"

	"github.com/wippyai/rodata/contenthash"
	"github.com/wippyai/rodata/details"
	rderrors "github.com/wippyai/rodata/errors"
	"github.com/wippyai/rodata/helper"
)

func newTestContainer(t *testing.T, order ...string) *details.Container {
	t.Helper()
	c := details.New(contenthash.SHA256(),
		details.WithSlotIndex(2),
		details.WithWellKnownTypes(details.WellKnownType{TypeName: "u32", ByteSize: 4}),
	)
	for _, s := range order {
		c.GetOrCreateField([]byte(s))
	}
	c.GetOrCreateField([]byte{1, 2, 3, 4})
	hello := c.GetOrCreateField([]byte("hello"))
	c.TryAddMethod("answer", helper.Const{Value: 42})
	c.TryAddMethod("hello_addr", helper.FieldAddress{Field: hello.Name()})
	c.TryAddMethod("ComputeStringHash", helper.StringHash{})
	c.Freeze()
	return c
}

func TestEmit_Module(t *testing.T) {
	c := newTestContainer(t)
	m, err := Emit(c)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(m.TypeDefs) != 1 {
		t.Errorf("TypeDefs = %d, want 1 (size 5 only)", len(m.TypeDefs))
	}
	if len(m.Globals) != 2 {
		t.Errorf("Globals = %d, want 2", len(m.Globals))
	}
	if len(m.Funcs) != 3 {
		t.Errorf("Funcs = %d, want 3", len(m.Funcs))
	}
	// Methods come out sorted by name.
	if !strings.HasSuffix(m.Funcs[0].Name(), ".ComputeStringHash") {
		t.Errorf("first func = %s", m.Funcs[0].Name())
	}
}

func TestEmitString(t *testing.T) {
	c := newTestContainer(t)
	ir, err := EmitString(c)
	if err != nil {
		t.Fatalf("EmitString: %v", err)
	}

	for _, want := range []string{
		"<PrivateImplementationDetails>2.__StaticArrayInitTypeSize=5",
		"<{ [5 x i8] }>",
		`c"hello"`,
		"internal constant",
		"align 1",
		"i32 67305985", // {1,2,3,4} little-endian
		"ret i64 42",
		"phi i32",
		"xor i32",
		"icmp uge i64",
		"i32 -2128831035", // FNV offset basis
		"i32 16777619",    // FNV prime
	} {
		if !strings.Contains(ir, want) {
			t.Errorf("IR missing %q:\n%s", want, ir)
		}
	}
	if strings.Contains(ir, "__StaticArrayInitTypeSize=4") {
		t.Error("well-known size must not get a nested type definition")
	}
}

func TestEmitString_Deterministic(t *testing.T) {
	a, err := EmitString(newTestContainer(t, "x", "yy", "zzz"))
	if err != nil {
		t.Fatalf("EmitString: %v", err)
	}
	b, err := EmitString(newTestContainer(t, "zzz", "yy", "x"))
	if err != nil {
		t.Fatalf("EmitString: %v", err)
	}
	if a != b {
		t.Error("IR depends on registration order")
	}
}

func TestEmit_Errors(t *testing.T) {
	t.Run("open container", func(t *testing.T) {
		_, err := Emit(details.New(contenthash.SHA256()))
		if !errors.Is(err, &rderrors.Error{Phase: rderrors.PhaseLifecycle, Kind: rderrors.KindLifecycle}) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("unsupported body", func(t *testing.T) {
		c := details.New(contenthash.SHA256())
		c.TryAddMethod("weird", 17)
		c.Freeze()
		_, err := Emit(c)
		if !errors.Is(err, &rderrors.Error{Phase: rderrors.PhaseEmit, Kind: rderrors.KindUnsupported}) {
			t.Fatalf("unexpected error: %v", err)
		}
		var rerr *rderrors.Error
		if !errors.As(err, &rerr) || rerr.Value != 17 {
			t.Errorf("error %v does not carry the rejected body", err)
		}
	})

	t.Run("method shares a field symbol", func(t *testing.T) {
		c := details.New(contenthash.SHA256())
		f := c.GetOrCreateField([]byte("ABC"))
		c.TryAddMethod(f.Name(), helper.Const{Value: 1})
		c.Freeze()
		_, err := EmitString(c)
		if !errors.Is(err, &rderrors.Error{Phase: rderrors.PhaseEmit, Kind: rderrors.KindDuplicate}) {
			t.Errorf("unexpected error: %v", err)
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
}

func TestEmitString_WellKnownNamedLikeStorageType(t *testing.T) {
	// A platform type may carry any name, including one a synthesized
	// storage type of another size also has.
	c := details.New(contenthash.SHA256(),
		details.WithWellKnownTypes(details.WellKnownType{TypeName: details.StorageTypeName(3), ByteSize: 4}),
	)
	c.GetOrCreateField([]byte{1, 2, 3})
	c.GetOrCreateField([]byte{1, 2, 3, 4})
	c.Freeze()

	ir, err := EmitString(c)
	if err != nil {
		t.Fatalf("EmitString: %v", err)
	}
	if !strings.Contains(ir, `<{ [3 x i8] c"\01\02\03" }>`) {
		t.Errorf("3-byte field not emitted as its storage type:\n%s", ir)
	}
	if !strings.Contains(ir, "i32 67305985") {
		t.Errorf("4-byte field not emitted as i32:\n%s", ir)
	}
	if strings.Contains(ir, "[4 x i8]") {
		t.Errorf("4-byte field emitted under the 3-byte struct type:\n%s", ir)
	}
}
