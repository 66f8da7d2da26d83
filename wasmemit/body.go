package wasmemit

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/rodata/details"
	"github.com/wippyai/rodata/errors"
	"github.com/wippyai/rodata/helper"
	"github.com/wippyai/rodata/wasmemit/internal/binary"
)

const (
	opBlock     byte = 0x02
	opLoop      byte = 0x03
	opEnd       byte = 0x0B
	opBr        byte = 0x0C
	opBrIf      byte = 0x0D
	opLocalGet  byte = 0x20
	opLocalSet  byte = 0x21
	opI32Load8U byte = 0x2D
	opI32Const  byte = 0x41
	opI64Const  byte = 0x42
	opI32GeU    byte = 0x4F
	opI32Add    byte = 0x6A
	opI32Mul    byte = 0x6C
	opI32Xor    byte = 0x73

	blockTypeEmpty byte = 0x40
)

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

// lowerBody translates a synthesized method body into a function.
func lowerBody(m *details.Member, offsets map[string]uint32) (wasmFunc, error) {
	w := binary.NewWriter()
	fn := wasmFunc{name: m.Name}

	switch b := m.Body.(type) {
	case helper.Const:
		fn.typ = funcType{results: []api.ValueType{i64}}
		w.WriteU32(0)
		w.Byte(opI64Const)
		w.WriteS64(b.Value)

	case helper.FieldAddress:
		off, ok := offsets[b.Field]
		if !ok {
			return wasmFunc{}, errors.New(errors.PhaseEmit, errors.KindNotFound).
				Entity("field", b.Field).
				Detail("referenced by method %q", m.Name).
				Build()
		}
		fn.typ = funcType{results: []api.ValueType{i32}}
		w.WriteU32(0)
		w.Byte(opI32Const)
		w.WriteS32(int32(off))

	case helper.StringHash:
		fn.typ = funcType{params: []api.ValueType{i32, i32}, results: []api.ValueType{i32}}
		writeStringHash(w)

	default:
		return wasmFunc{}, errors.New(errors.PhaseEmit, errors.KindUnsupported).
			Entity("method", m.Name).
			Value(m.Body).
			Detail("body type %T", m.Body).
			Build()
	}

	w.Byte(opEnd)
	fn.code = w.Bytes()
	return fn, nil
}

// writeStringHash emits FNV-1a over memory[ptr:ptr+len].
// Locals: 0 ptr, 1 len, 2 hash, 3 end.
func writeStringHash(w *binary.Writer) {
	w.WriteU32(1)
	w.WriteU32(2)
	w.Byte(valTypeByte(i32))

	w.Byte(opI32Const)
	w.WriteS32(helper.FNVOffsetBasisI32)
	w.Byte(opLocalSet, 2)

	w.Byte(opLocalGet, 0, opLocalGet, 1, opI32Add, opLocalSet, 3)

	w.Byte(opBlock, blockTypeEmpty)
	w.Byte(opLoop, blockTypeEmpty)

	w.Byte(opLocalGet, 0, opLocalGet, 3, opI32GeU, opBrIf, 1)

	w.Byte(opLocalGet, 2)
	w.Byte(opLocalGet, 0, opI32Load8U, 0, 0) // align 0, offset 0
	w.Byte(opI32Xor)
	w.Byte(opI32Const)
	w.WriteS32(int32(helper.FNVPrime))
	w.Byte(opI32Mul, opLocalSet, 2)

	w.Byte(opLocalGet, 0, opI32Const, 1, opI32Add, opLocalSet, 0)
	w.Byte(opBr, 0)

	w.Byte(opEnd) // loop
	w.Byte(opEnd) // block

	w.Byte(opLocalGet, 2)
}

type typeRecord struct {
	name  string
	attrs []string
	size  uint32
	align uint32
	kind  byte
	flags byte
}

const (
	flagSealed byte = 1 << iota
	flagAbstract
	flagInterface
	flagGeneric
	flagPublic
)

func typeRecords(c *details.Container, nested []*details.StorageType) []typeRecord {
	out := []typeRecord{newTypeRecord(c, 0)}
	for _, st := range nested {
		out = append(out, newTypeRecord(st, 1))
	}
	return out
}

func newTypeRecord(td details.TypeDefinition, kind byte) typeRecord {
	l := td.Layout()
	r := typeRecord{name: td.Name(), kind: kind, size: l.Size, align: l.Alignment}
	if td.Sealed() {
		r.flags |= flagSealed
	}
	if td.Abstract() {
		r.flags |= flagAbstract
	}
	if td.Interface() {
		r.flags |= flagInterface
	}
	if td.Generic() {
		r.flags |= flagGeneric
	}
	if td.Visibility() == details.VisibilityPublic {
		r.flags |= flagPublic
	}
	for _, a := range td.Attributes() {
		r.attrs = append(r.attrs, a.Name)
	}
	return r
}

func writeTypeRecords(w *binary.Writer, records []typeRecord) {
	w.WriteU32(uint32(len(records)))
	for _, r := range records {
		w.WriteName(r.name)
		w.Byte(r.kind)
		w.WriteU32(r.size)
		w.WriteU32(r.align)
		w.Byte(r.flags)
		w.WriteU32(uint32(len(r.attrs)))
		for _, a := range r.attrs {
			w.WriteName(a)
		}
	}
}
