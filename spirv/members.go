package spirv

import (
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// chainStep is one resolved hop of an access chain: the constant id
// of the index and the type it lands on.
type chainStep struct {
	constID uint32
	result  types.Ref
}

// resolveChain walks a member opcode's index list against the type
// registry, producing the int-constant ids an OpAccessChain carries
// and the resulting type of each hop. A trailing multi-component
// swizzle is returned separately: it cannot ride in a single access
// chain and is lowered per component.
func (be *Backend) resolveChain(parent types.Ref, indices []uint32, isArray []bool) (steps []chainStep, swizzle []uint32, final types.Ref, err error) {
	current := parent
	for i := 0; i < len(indices); i++ {
		if isArray[i] {
			constID, cerr := be.intConstant(int64(indices[i]))
			if cerr != nil {
				return nil, nil, types.Ref{}, cerr
			}
			current = types.Ref{Type: current.Type, Resolved: true}
			steps = append(steps, chainStep{constID: constID, result: current})
			continue
		}

		t, ok := be.module.Types.Lookup(current.Type)
		if !ok {
			return nil, nil, types.Ref{}, be.internalf("member chain parent type missing")
		}

		if t.Kind.IsVector() {
			remaining := indices[i:]
			if len(remaining) == 1 {
				constID, cerr := be.intConstant(int64(remaining[0]))
				if cerr != nil {
					return nil, nil, types.Ref{}, cerr
				}
				scalar := vectorScalar(be.module, t.Kind)
				current = types.Ref{Type: scalar, Resolved: true}
				steps = append(steps, chainStep{constID: constID, result: current})
				return steps, nil, current, nil
			}
			// Multi-component swizzle: the caller assembles it from
			// per-component loads.
			return steps, remaining, current, nil
		}

		if t.Kind != types.KindStruct || int(indices[i]) >= len(t.Members) {
			return nil, nil, types.Ref{}, be.internalf("member index out of bounds")
		}
		member := t.Members[indices[i]]
		constID, cerr := be.intConstant(int64(indices[i]))
		if cerr != nil {
			return nil, nil, types.Ref{}, cerr
		}
		current = types.Ref{Type: member.Type, ArraySize: member.ArraySize, Resolved: true}
		steps = append(steps, chainStep{constID: constID, result: current})
	}
	return steps, nil, current, nil
}

// vectorScalar gives the component type of a vector kind.
func vectorScalar(m *ir.Module, k types.Kind) types.ID {
	switch k {
	case types.KindInt2, types.KindInt3, types.KindInt4:
		return m.Types.Builtin(types.KindInt)
	case types.KindUint2, types.KindUint3, types.KindUint4:
		return m.Types.Builtin(types.KindUint)
	default:
		return m.Types.Builtin(types.KindFloat)
	}
}

// emitLoadMember lowers LOAD_MEMBER as an access chain plus load from
// a pointer root; a root that is not a pointer is rejected with an
// internal error, and no composite extraction is emitted. Vector
// swizzles of more than one component become per-component access
// chains whose results are reassembled with OpCompositeConstruct,
// so the module only ever addresses components through integer
// constants.
func (be *Backend) emitLoadMember(op *ir.Op) error {
	steps, swizzle, final, err := be.resolveChain(op.MemberParent, op.Indices, op.IndexIsArray)
	if err != nil {
		return err
	}

	root, ok := be.varIDs[op.From.ID]
	if !ok {
		return be.internalf("member load root _%d has no SPIR-V id", op.From.ID)
	}
	if !be.pointerVar[op.From.ID] {
		return be.internalf("member load root _%d is not a pointer", op.From.ID)
	}
	storage := be.storageOf(op.From.ID)

	if swizzle == nil {
		resultType, err := be.typeRef(final.Type)
		if err != nil {
			return err
		}
		pointer := root
		if len(steps) > 0 {
			ptrType, err := be.pointerType(final.Type, storage)
			if err != nil {
				return err
			}
			pointer = be.b.AddAccessChain(ptrType, root, stepConsts(steps)...)
		}
		be.varIDs[op.To.ID] = be.b.AddLoad(resultType, pointer)
		return nil
	}

	// Swizzle: chain to the vector, then load each component through
	// its own constant-indexed access chain.
	vectorRef := op.MemberParent
	if len(steps) > 0 {
		vectorRef = steps[len(steps)-1].result
	}
	t, _ := be.module.Types.Lookup(vectorRef.Type)
	scalarType, err := be.typeRef(vectorScalar(be.module, t.Kind))
	if err != nil {
		return err
	}
	scalarPtr, err := be.pointerType(vectorScalar(be.module, t.Kind), storage)
	if err != nil {
		return err
	}

	components := make([]uint32, 0, len(swizzle))
	for _, component := range swizzle {
		constID, err := be.intConstant(int64(component))
		if err != nil {
			return err
		}
		indices := append(stepConsts(steps), constID)
		pointer := be.b.AddAccessChain(scalarPtr, root, indices...)
		components = append(components, be.b.AddLoad(scalarType, pointer))
	}

	resultType, err := be.typeRef(op.To.Type.Type)
	if err != nil {
		return err
	}
	be.varIDs[op.To.ID] = be.b.AddCompositeConstruct(resultType, components...)
	return nil
}

// emitStoreMember lowers STORE_MEMBER and the arithmetic-assign
// variants: access chain to the target, optional read-modify, store.
func (be *Backend) emitStoreMember(op *ir.Op) error {
	steps, swizzle, final, err := be.resolveChain(op.MemberParent, op.Indices, op.IndexIsArray)
	if err != nil {
		return err
	}
	if swizzle != nil {
		return be.internalf("swizzled store targets are not lowered")
	}

	root, ok := be.varIDs[op.To.ID]
	if !ok || !be.pointerVar[op.To.ID] {
		return be.internalf("member store root _%d is not a pointer", op.To.ID)
	}
	storage := be.storageOf(op.To.ID)

	ptrType, err := be.pointerType(final.Type, storage)
	if err != nil {
		return err
	}
	pointer := be.b.AddAccessChain(ptrType, root, stepConsts(steps)...)

	value, err := be.value(op.From)
	if err != nil {
		return err
	}

	if op.Kind != ir.OpStoreMember {
		resultType, err := be.typeRef(final.Type)
		if err != nil {
			return err
		}
		current := be.b.AddLoad(resultType, pointer)
		opcode := be.arithOpcode(compoundKind(op.Kind), final.Type)
		value = be.b.AddBinary(opcode, resultType, current, value)
	}
	be.b.AddStore(pointer, value)
	return nil
}

// emitCompoundStore lowers ADD/SUB/MUL/DIV_AND_STORE_VARIABLE as
// load-modify-store on the target pointer.
func (be *Backend) emitCompoundStore(op *ir.Op) error {
	target, ok := be.varIDs[op.To.ID]
	if !ok || !be.pointerVar[op.To.ID] {
		return be.internalf("store target _%d is not a pointer", op.To.ID)
	}
	resultType, err := be.typeRef(op.To.Type.Type)
	if err != nil {
		return err
	}
	value, err := be.value(op.From)
	if err != nil {
		return err
	}
	current := be.b.AddLoad(resultType, target)
	opcode := be.arithOpcode(compoundKind(op.Kind), op.To.Type.Type)
	be.b.AddStore(target, be.b.AddBinary(opcode, resultType, current, value))
	return nil
}

func stepConsts(steps []chainStep) []uint32 {
	out := make([]uint32, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.constID)
	}
	return out
}

func (be *Backend) storageOf(id ir.VarID) StorageClass {
	if storage, ok := be.varStorage[id]; ok {
		return storage
	}
	return StorageClassFunction
}

// compoundKind maps an arithmetic-assign opcode to its plain binary
// kind.
func compoundKind(k ir.OpKind) ir.OpKind {
	switch k {
	case ir.OpAddAndStoreVariable, ir.OpAddAndStoreMember:
		return ir.OpAdd
	case ir.OpSubAndStoreVariable, ir.OpSubAndStoreMember:
		return ir.OpSub
	case ir.OpMulAndStoreVariable, ir.OpMulAndStoreMember:
		return ir.OpMul
	default:
		return ir.OpDiv
	}
}
