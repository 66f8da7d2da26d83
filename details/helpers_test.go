package details

import (
	"errors"
	"testing"

	"github.com/wippyai/rodata"
	rderrors "github.com/wippyai/rodata/errors"
)

// identityHasher uses the content as its own digest, which makes names
// predictable in tests.
var identityHasher = rodata.HasherFunc(func(data []byte) []byte {
	return append([]byte(nil), data...)
})

// constHasher always yields digest, regardless of input.
func constHasher(digest ...byte) rodata.Hasher {
	return rodata.HasherFunc(func([]byte) []byte { return digest })
}

var (
	wkByte  = WellKnownType{TypeName: "u8", ByteSize: 1}
	wkShort = WellKnownType{TypeName: "u16", ByteSize: 2}
	wkInt   = WellKnownType{TypeName: "u32", ByteSize: 4}
	wkLong  = WellKnownType{TypeName: "u64", ByteSize: 8}
)

func expectPanic(t *testing.T, target *rderrors.Error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("panic value %T is not an error: %v", r, r)
		}
		if !errors.Is(err, target) {
			t.Fatalf("panic error = %v, want phase %s kind %s", err, target.Phase, target.Kind)
		}
	}()
	fn()
}

var lifecycleViolation = &rderrors.Error{Phase: rderrors.PhaseLifecycle, Kind: rderrors.KindLifecycle}
