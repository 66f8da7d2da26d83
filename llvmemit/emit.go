// Package llvmemit writes a frozen details.Container as an LLVM IR module.
//
// Every symbol is qualified with the container name, so several containers
// can be linked into one unit:
//
//	%"<C>.__StaticArrayInitTypeSize=24" = type <{ [24 x i8] }>
//	@"<C>.__StaticData_9F86..." = internal constant %"<C>.__StaticArrayInitTypeSize=24" <{ ... }>, align 1
//	define internal i32 @"<C>.ComputeStringHash"(i8* %ptr, i64 %len) { ... }
//
// Fields typed with a well-known type become integer constants of that width,
// decoded little-endian.
package llvmemit

import (
	"encoding/binary"
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"go.uber.org/zap"

	"github.com/wippyai/rodata/details"
	"github.com/wippyai/rodata/errors"
	"github.com/wippyai/rodata/helper"
)

type emitter struct {
	c       *details.Container
	m       *ir.Module
	structs map[*details.StorageType]*types.StructType
	globals map[string]*ir.Global
	symbols map[string]string // qualified global or function name -> entity
}

// Emit builds the IR module for a frozen container.
func Emit(c *details.Container) (*ir.Module, error) {
	if !c.Frozen() {
		return nil, errors.Lifecycle("llvmemit.Emit", "open")
	}

	e := &emitter{
		c:       c,
		m:       ir.NewModule(),
		structs: make(map[*details.StorageType]*types.StructType),
		globals: make(map[string]*ir.Global),
		symbols: make(map[string]string),
	}
	e.m.SourceFilename = c.Name()

	for _, st := range c.NestedTypes() {
		typ := types.NewStruct(types.NewArray(uint64(st.Size()), types.I8))
		typ.Packed = true
		e.m.NewTypeDef(e.qualify(st.Name()), typ)
		e.structs[st] = typ
	}

	for _, f := range c.Fields() {
		init, err := e.fieldInit(f)
		if err != nil {
			return nil, err
		}
		name, err := e.claim("field", f.Name())
		if err != nil {
			return nil, err
		}
		g := e.m.NewGlobalDef(name, init)
		g.Immutable = true
		g.Linkage = enum.LinkageInternal
		g.Align = ir.Align(1)
		e.globals[f.Name()] = g
	}

	for _, member := range c.Methods() {
		if err := e.method(member); err != nil {
			return nil, err
		}
	}

	Logger().Debug("emitted llvm module",
		zap.String("container", c.Name()),
		zap.Int("type_defs", len(e.m.TypeDefs)),
		zap.Int("globals", len(e.m.Globals)),
		zap.Int("funcs", len(e.m.Funcs)),
	)
	return e.m, nil
}

// EmitString returns the textual IR for a frozen container.
func EmitString(c *details.Container) (string, error) {
	m, err := Emit(c)
	if err != nil {
		return "", err
	}
	return m.String(), nil
}

func (e *emitter) qualify(name string) string {
	return e.c.Name() + "." + name
}

// claim reserves the qualified @-symbol for name. Globals and functions
// share one namespace in LLVM IR.
func (e *emitter) claim(entity, name string) (string, error) {
	q := e.qualify(name)
	if prev, ok := e.symbols[q]; ok {
		return "", errors.New(errors.PhaseEmit, errors.KindDuplicate).
			Path("symbol").
			Entity(entity, name).
			Detail("symbol %s already defined by a %s", q, prev).
			Build()
	}
	e.symbols[q] = entity
	return q, nil
}

func (e *emitter) fieldInit(f *details.Field) (constant.Constant, error) {
	data := f.Data()
	if st, ok := f.Type().(*details.StorageType); ok {
		typ, ok := e.structs[st]
		if !ok {
			return nil, errors.Invariant("field", f.Name(),
				fmt.Sprintf("storage type %s is not among the container's nested types", st.Name()))
		}
		return constant.NewStruct(typ, constant.NewCharArray(data)), nil
	}

	switch f.Len() {
	case 1:
		return constant.NewInt(types.I8, int64(int8(data[0]))), nil
	case 2:
		return constant.NewInt(types.I16, int64(int16(binary.LittleEndian.Uint16(data)))), nil
	case 4:
		return constant.NewInt(types.I32, int64(int32(binary.LittleEndian.Uint32(data)))), nil
	case 8:
		return constant.NewInt(types.I64, int64(binary.LittleEndian.Uint64(data))), nil
	}
	return nil, errors.Invariant("field", f.Name(),
		fmt.Sprintf("type %s is neither nested nor a well-known width", f.Type().Name()))
}

func (e *emitter) method(member *details.Member) error {
	name, err := e.claim("method", member.Name)
	if err != nil {
		return err
	}

	switch b := member.Body.(type) {
	case helper.Const:
		f := e.m.NewFunc(name, types.I64)
		f.Linkage = enum.LinkageInternal
		f.NewBlock("entry").NewRet(constant.NewInt(types.I64, b.Value))

	case helper.FieldAddress:
		g, ok := e.globals[b.Field]
		if !ok {
			return errors.New(errors.PhaseEmit, errors.KindNotFound).
				Entity("field", b.Field).
				Detail("referenced by method %q", member.Name).
				Build()
		}
		f := e.m.NewFunc(name, types.I8Ptr)
		f.Linkage = enum.LinkageInternal
		f.NewBlock("entry").NewRet(constant.NewBitCast(g, types.I8Ptr))

	case helper.StringHash:
		e.stringHash(name)

	default:
		return errors.New(errors.PhaseEmit, errors.KindUnsupported).
			Entity("method", member.Name).
			Value(member.Body).
			Detail("body type %T", member.Body).
			Build()
	}
	return nil
}

// stringHash defines FNV-1a over ptr[0:len].
func (e *emitter) stringHash(name string) {
	ptr := ir.NewParam("ptr", types.I8Ptr)
	length := ir.NewParam("len", types.I64)
	f := e.m.NewFunc(name, types.I32, ptr, length)
	f.Linkage = enum.LinkageInternal

	entry := f.NewBlock("entry")
	loop := f.NewBlock("loop")
	body := f.NewBlock("body")
	exit := f.NewBlock("exit")

	entry.NewBr(loop)

	i := loop.NewPhi(ir.NewIncoming(constant.NewInt(types.I64, 0), entry))
	i.SetName("i")
	h := loop.NewPhi(ir.NewIncoming(constant.NewInt(types.I32, int64(helper.FNVOffsetBasisI32)), entry))
	h.SetName("h")
	done := loop.NewICmp(enum.IPredUGE, i, length)
	loop.NewCondBr(done, exit, body)

	p := body.NewGetElementPtr(types.I8, ptr, i)
	ch := body.NewZExt(body.NewLoad(types.I8, p), types.I32)
	mixed := body.NewMul(body.NewXor(h, ch), constant.NewInt(types.I32, int64(helper.FNVPrime)))
	next := body.NewAdd(i, constant.NewInt(types.I64, 1))
	body.NewBr(loop)

	i.Incs = append(i.Incs, ir.NewIncoming(next, body))
	h.Incs = append(h.Incs, ir.NewIncoming(mixed, body))

	exit.NewRet(h)
}
