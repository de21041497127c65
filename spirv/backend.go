package spirv

import (
	"math"

	"github.com/kong-shade/kongc/diag"
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// Options configures SPIR-V emission.
type Options struct{}

// DefaultOptions returns the defaults.
func DefaultOptions() *Options {
	return &Options{}
}

// Filename returns the binary output file name for an entry point.
func Filename(entry string) string {
	return "kong_" + entry + ".spirv"
}

// typeKey keys the type deduplication map: the kong type, whether the
// entry is a pointer to it, and the pointer's storage class.
type typeKey struct {
	typeID    types.ID
	isPointer bool
	storage   StorageClass
}

// Backend lowers one entry point into a SPIR-V module.
type Backend struct {
	module *ir.Module
	entry  *ir.Function
	b      *Builder

	// Deduplication maps: types, literal constants, and kong SSA
	// variable ids. Each lookup either returns the existing id or
	// allocates and records a new declaration.
	typeIDs    map[typeKey]uint32
	intIDs     map[int64]uint32
	floatIDs   map[float64]uint32
	boolIDs    map[bool]uint32
	varIDs     map[ir.VarID]uint32
	pointerVar map[ir.VarID]bool // kong ids backed by pointers, loaded on use

	// Storage class per pointer-backed kong id; everything not
	// listed is Function storage.
	varStorage map[ir.VarID]StorageClass

	outputVar  uint32
	inputVars  []uint32
	controlTop []*controlFrame
}

// controlFrame tracks one open IF or WHILE while walking the linear
// opcode stream.
type controlFrame struct {
	isLoop     bool
	plain      bool
	start      uint32
	elseLabel  uint32
	continueL  uint32
	end        uint32
	hasElse    bool
	armsSeen   int
	terminated bool
}

// Compile emits the SPIR-V module for one vertex or fragment entry
// point. Compute entries take the CPU path in this compiler and are
// rejected here.
func Compile(m *ir.Module, entry ir.FunctionID, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	f := m.Function(entry)
	switch f.Stage {
	case ir.StageVertex, ir.StageFragment:
	default:
		return nil, diag.New("", diag.Pos{}, "SPIR-V emission supports vertex and fragment entry points, not %s", f.Stage)
	}

	be := &Backend{
		module:     m,
		entry:      f,
		b:          NewBuilder(),
		typeIDs:    make(map[typeKey]uint32),
		intIDs:     make(map[int64]uint32),
		floatIDs:   make(map[float64]uint32),
		boolIDs:    make(map[bool]uint32),
		varIDs:     make(map[ir.VarID]uint32),
		pointerVar: make(map[ir.VarID]bool),
		varStorage: make(map[ir.VarID]StorageClass),
	}
	if err := be.emit(); err != nil {
		return nil, err
	}
	return be.b.Build(), nil
}

func (be *Backend) internalf(format string, args ...any) error {
	return diag.Internal("", diag.Pos{}, format, args...)
}

// typeRef returns the SPIR-V id for a kong type, declaring it on
// first use.
func (be *Backend) typeRef(id types.ID) (uint32, error) {
	key := typeKey{typeID: id}
	if existing, ok := be.typeIDs[key]; ok {
		return existing, nil
	}

	t, ok := be.module.Types.Lookup(id)
	if !ok {
		return 0, be.internalf("type %d missing from registry", id)
	}

	var result uint32
	switch t.Kind {
	case types.KindVoid:
		result = be.b.AddTypeVoid()
	case types.KindBool:
		result = be.b.AddTypeBool()
	case types.KindFloat:
		result = be.b.AddTypeFloat(32)
	case types.KindInt:
		result = be.b.AddTypeInt(32, true)
	case types.KindUint:
		result = be.b.AddTypeInt(32, false)
	case types.KindFloat2, types.KindFloat3, types.KindFloat4:
		scalar, err := be.typeRef(be.module.Types.Builtin(types.KindFloat))
		if err != nil {
			return 0, err
		}
		result = be.b.AddTypeVector(scalar, uint32(t.Kind.VectorArity()))
	case types.KindInt2, types.KindInt3, types.KindInt4:
		scalar, err := be.typeRef(be.module.Types.Builtin(types.KindInt))
		if err != nil {
			return 0, err
		}
		result = be.b.AddTypeVector(scalar, uint32(t.Kind.VectorArity()))
	case types.KindUint2, types.KindUint3, types.KindUint4:
		scalar, err := be.typeRef(be.module.Types.Builtin(types.KindUint))
		if err != nil {
			return 0, err
		}
		result = be.b.AddTypeVector(scalar, uint32(t.Kind.VectorArity()))
	case types.KindFloat3x3:
		column, err := be.typeRef(be.module.Types.Builtin(types.KindFloat3))
		if err != nil {
			return 0, err
		}
		result = be.b.AddTypeMatrix(column, 3)
	case types.KindFloat4x4:
		column, err := be.typeRef(be.module.Types.Builtin(types.KindFloat4))
		if err != nil {
			return 0, err
		}
		result = be.b.AddTypeMatrix(column, 4)
	case types.KindStruct:
		memberIDs := make([]uint32, 0, len(t.Members))
		for _, member := range t.Members {
			mid, err := be.typeRef(member.Type)
			if err != nil {
				return 0, err
			}
			memberIDs = append(memberIDs, mid)
		}
		result = be.b.AddTypeStruct(memberIDs...)
	default:
		// TODO(tex2darray): opaque resource types are elided from
		// this vertex/fragment-IO-focused emitter.
		return 0, diag.New("", diag.Pos{}, "type %s has no SPIR-V lowering", t.Kind)
	}

	be.typeIDs[key] = result
	return result, nil
}

// pointerType returns OpTypePointer storage→type, deduplicated.
func (be *Backend) pointerType(id types.ID, storage StorageClass) (uint32, error) {
	key := typeKey{typeID: id, isPointer: true, storage: storage}
	if existing, ok := be.typeIDs[key]; ok {
		return existing, nil
	}
	base, err := be.typeRef(id)
	if err != nil {
		return 0, err
	}
	result := be.b.AddTypePointer(storage, base)
	be.typeIDs[key] = result
	return result, nil
}

// Constant pools.

func (be *Backend) floatConstant(v float64) (uint32, error) {
	if id, ok := be.floatIDs[v]; ok {
		return id, nil
	}
	typeID, err := be.typeRef(be.module.Types.Builtin(types.KindFloat))
	if err != nil {
		return 0, err
	}
	id := be.b.AddConstant(typeID, math.Float32bits(float32(v)))
	be.floatIDs[v] = id
	return id, nil
}

func (be *Backend) intConstant(v int64) (uint32, error) {
	if id, ok := be.intIDs[v]; ok {
		return id, nil
	}
	typeID, err := be.typeRef(be.module.Types.Builtin(types.KindInt))
	if err != nil {
		return 0, err
	}
	id := be.b.AddConstant(typeID, uint32(int32(v)))
	be.intIDs[v] = id
	return id, nil
}

func (be *Backend) boolConstant(v bool) (uint32, error) {
	if id, ok := be.boolIDs[v]; ok {
		return id, nil
	}
	typeID, err := be.typeRef(be.module.Types.Builtin(types.KindBool))
	if err != nil {
		return 0, err
	}
	id := be.b.AddConstantBool(typeID, v)
	be.boolIDs[v] = id
	return id, nil
}

// value returns the SPIR-V value id of a kong variable, inserting an
// OpLoad when the variable is pointer-backed.
func (be *Backend) value(v ir.Variable) (uint32, error) {
	id, ok := be.varIDs[v.ID]
	if !ok {
		return 0, be.internalf("kong variable _%d has no SPIR-V id", v.ID)
	}
	if !be.pointerVar[v.ID] {
		return id, nil
	}
	typeID, err := be.typeRef(v.Type.Type)
	if err != nil {
		return 0, err
	}
	return be.b.AddLoad(typeID, id), nil
}

func fragmentStage(f *ir.Function) bool {
	return f.Stage == ir.StageFragment
}
