package wasmemit

import (
	"fmt"
	"math"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/rodata/details"
	"github.com/wippyai/rodata/errors"
	"github.com/wippyai/rodata/wasmemit/internal/binary"
)

const (
	// DefaultBase is the linear memory offset of the first field.
	DefaultBase uint32 = 1024
	// MemoryExport is the default export name of the linear memory.
	MemoryExport = "memory"
	// TypesSection is the custom section holding type-definition records.
	TypesSection = "rodata.types"

	pageSize = 65536
)

const (
	magic   uint32 = 0x6D736100
	version uint32 = 0x01

	sectionCustom   byte = 0
	sectionType     byte = 1
	sectionFunction byte = 3
	sectionMemory   byte = 5
	sectionGlobal   byte = 6
	sectionExport   byte = 7
	sectionCode     byte = 10
	sectionData     byte = 11

	exportFunc   byte = 0x00
	exportMemory byte = 0x02
	exportGlobal byte = 0x03

	funcTypeByte byte = 0x60
)

// Option configures Emit.
type Option func(*config)

type config struct {
	memoryExport string
	base         uint32
}

// WithBase sets the linear memory offset of the first field.
func WithBase(base uint32) Option {
	return func(c *config) { c.base = base }
}

// WithMemoryExport sets the export name of the linear memory.
func WithMemoryExport(name string) Option {
	return func(c *config) { c.memoryExport = name }
}

// Placement is the position of one field in linear memory.
type Placement struct {
	Field  *details.Field
	Offset uint32
}

// Plan computes field placements for a frozen container starting at base.
func Plan(c *details.Container, base uint32) ([]Placement, uint32, error) {
	if !c.Frozen() {
		return nil, 0, errors.Lifecycle("wasmemit.Plan", "open")
	}
	fields := c.Fields()
	out := make([]Placement, 0, len(fields))
	end := uint64(base)
	for _, f := range fields {
		out = append(out, Placement{Field: f, Offset: uint32(end)})
		end += uint64(f.Len())
		if end > math.MaxUint32 {
			return nil, 0, errors.New(errors.PhaseEmit, errors.KindInvalidInput).
				Entity("field", f.Name()).
				Value(end).
				Detail("data exceeds 32-bit linear memory").
				Build()
		}
	}
	return out, uint32(end), nil
}

// Emit encodes a frozen container as a WebAssembly module.
func Emit(c *details.Container, opts ...Option) ([]byte, error) {
	cfg := config{base: DefaultBase, memoryExport: MemoryExport}
	for _, opt := range opts {
		opt(&cfg)
	}

	placements, end, err := Plan(c, cfg.base)
	if err != nil {
		return nil, err
	}
	offsets := make(map[string]uint32, len(placements))
	for _, p := range placements {
		offsets[p.Field.Name()] = p.Offset
	}

	m := newModuleBuilder()
	m.memoryExport = cfg.memoryExport
	m.pages = (uint64(end) + pageSize - 1) / pageSize
	if m.pages == 0 {
		m.pages = 1
	}

	for _, p := range placements {
		m.addGlobal(p.Field.Name(), p.Offset)
		m.data = append(m.data, p.Field.Data()...)
	}
	m.dataOffset = cfg.base

	nested := c.NestedTypes()
	for _, st := range nested {
		m.addGlobal(st.Name(), st.Size())
	}

	for _, member := range c.Methods() {
		fn, err := lowerBody(member, offsets)
		if err != nil {
			return nil, err
		}
		m.addFunc(fn)
	}

	m.types = typeRecords(c, nested)

	out, err := m.build()
	if err != nil {
		return nil, err
	}

	Logger().Debug("emitted wasm module",
		zap.String("container", c.Name()),
		zap.Int("bytes", len(out)),
		zap.Int("fields", len(placements)),
		zap.Uint64("pages", m.pages),
	)
	return out, nil
}

type funcType struct {
	params  []api.ValueType
	results []api.ValueType
}

func (t funcType) key() string {
	return fmt.Sprintf("%v->%v", t.params, t.results)
}

type wasmFunc struct {
	name string
	typ  funcType
	code []byte // locals vector, instructions and the final end
}

type wasmGlobal struct {
	name  string
	value uint32
}

type moduleBuilder struct {
	memoryExport string
	typeIndex    map[string]uint32
	funcTypes    []funcType
	funcs        []wasmFunc
	globals      []wasmGlobal
	data         []byte
	types        []typeRecord
	pages        uint64
	dataOffset   uint32
}

func newModuleBuilder() *moduleBuilder {
	return &moduleBuilder{typeIndex: make(map[string]uint32)}
}

func (m *moduleBuilder) addGlobal(name string, value uint32) {
	m.globals = append(m.globals, wasmGlobal{name: name, value: value})
}

func (m *moduleBuilder) addFunc(fn wasmFunc) {
	if _, ok := m.typeIndex[fn.typ.key()]; !ok {
		m.typeIndex[fn.typ.key()] = uint32(len(m.funcTypes))
		m.funcTypes = append(m.funcTypes, fn.typ)
	}
	m.funcs = append(m.funcs, fn)
}

func (m *moduleBuilder) build() ([]byte, error) {
	if err := m.checkExportNames(); err != nil {
		return nil, err
	}

	w := binary.NewWriter()
	w.WriteU32LE(magic)
	w.WriteU32LE(version)

	if len(m.funcTypes) > 0 {
		sec := binary.NewWriter()
		sec.WriteU32(uint32(len(m.funcTypes)))
		for _, ft := range m.funcTypes {
			sec.Byte(funcTypeByte)
			writeValTypes(sec, ft.params)
			writeValTypes(sec, ft.results)
		}
		w.WriteSection(sectionType, sec)

		sec = binary.NewWriter()
		sec.WriteU32(uint32(len(m.funcs)))
		for _, fn := range m.funcs {
			sec.WriteU32(m.typeIndex[fn.typ.key()])
		}
		w.WriteSection(sectionFunction, sec)
	}

	// Memory section
	sec := binary.NewWriter()
	sec.WriteU32(1)
	sec.Byte(0x00) // limits: min only
	sec.WriteU32(uint32(m.pages))
	w.WriteSection(sectionMemory, sec)

	if len(m.globals) > 0 {
		sec = binary.NewWriter()
		sec.WriteU32(uint32(len(m.globals)))
		for _, g := range m.globals {
			sec.Byte(valTypeByte(api.ValueTypeI32), 0x00)
			sec.Byte(opI32Const)
			sec.WriteS32(int32(g.value))
			sec.Byte(opEnd)
		}
		w.WriteSection(sectionGlobal, sec)
	}

	// Export section
	sec = binary.NewWriter()
	sec.WriteU32(uint32(1 + len(m.globals) + len(m.funcs)))
	sec.WriteName(m.memoryExport)
	sec.Byte(exportMemory)
	sec.WriteU32(0)
	for i, g := range m.globals {
		sec.WriteName(g.name)
		sec.Byte(exportGlobal)
		sec.WriteU32(uint32(i))
	}
	for i, fn := range m.funcs {
		sec.WriteName(fn.name)
		sec.Byte(exportFunc)
		sec.WriteU32(uint32(i))
	}
	w.WriteSection(sectionExport, sec)

	if len(m.funcs) > 0 {
		sec = binary.NewWriter()
		sec.WriteU32(uint32(len(m.funcs)))
		for _, fn := range m.funcs {
			sec.WriteU32(uint32(len(fn.code)))
			sec.WriteBytes(fn.code)
		}
		w.WriteSection(sectionCode, sec)
	}

	if len(m.data) > 0 {
		sec = binary.NewWriter()
		sec.WriteU32(1)
		sec.Byte(0x00) // active, memory 0
		sec.Byte(opI32Const)
		sec.WriteS32(int32(m.dataOffset))
		sec.Byte(opEnd)
		sec.WriteU32(uint32(len(m.data)))
		sec.WriteBytes(m.data)
		w.WriteSection(sectionData, sec)
	}

	sec = binary.NewWriter()
	sec.WriteName(TypesSection)
	writeTypeRecords(sec, m.types)
	w.WriteSection(sectionCustom, sec)

	return w.Bytes(), nil
}

func (m *moduleBuilder) checkExportNames() error {
	seen := map[string]bool{m.memoryExport: true}
	check := func(entity, name string) error {
		if seen[name] {
			return errors.Duplicate(errors.PhaseEmit, []string{"export"}, entity, name)
		}
		seen[name] = true
		return nil
	}
	for _, g := range m.globals {
		if err := check("global", g.name); err != nil {
			return err
		}
	}
	for _, fn := range m.funcs {
		if err := check("function", fn.name); err != nil {
			return err
		}
	}
	return nil
}

func writeValTypes(w *binary.Writer, types []api.ValueType) {
	w.WriteU32(uint32(len(types)))
	for _, t := range types {
		w.Byte(valTypeByte(t))
	}
}

// valTypeByte converts a wazero value type to its WASM encoding.
func valTypeByte(t api.ValueType) byte {
	switch t {
	case api.ValueTypeI64:
		return 0x7e
	case api.ValueTypeF32:
		return 0x7d
	case api.ValueTypeF64:
		return 0x7c
	default:
		return 0x7f
	}
}
