package spirv

import (
	"github.com/kong-shade/kongc/diag"
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// emit assembles the whole module: capabilities and interface
// variables first, then the entry function translated from the
// linear opcode buffer.
func (be *Backend) emit() error {
	be.b.AddCapability(CapabilityShader)
	be.b.AddExtInstImport("GLSL.std.450")
	be.b.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)

	if err := be.declareInterface(); err != nil {
		return err
	}
	if err := be.declareUniforms(); err != nil {
		return err
	}

	funcID, err := be.emitFunction()
	if err != nil {
		return err
	}

	model := ExecutionModelVertex
	if fragmentStage(be.entry) {
		model = ExecutionModelFragment
	}
	interfaces := append([]uint32{be.outputVar}, be.inputVars...)
	be.b.AddEntryPoint(model, funcID, "main", interfaces...)
	if fragmentStage(be.entry) {
		be.b.AddExecutionMode(funcID, ExecutionModeOriginUpperLeft)
	}
	return nil
}

// declareInterface creates the per-stage Input/Output variables.
//
// Vertex: one Input pointer per member of the input struct, each at
// Location i, plus one Output pointer to the block-decorated output
// struct whose member 0 carries BuiltIn Position. Fragment: a single
// Output float4 at Location 0.
func (be *Backend) declareInterface() error {
	if fragmentStage(be.entry) {
		float4 := be.module.Types.Builtin(types.KindFloat4)
		ptr, err := be.pointerType(float4, StorageClassOutput)
		if err != nil {
			return err
		}
		be.outputVar = be.b.AddGlobalVariable(ptr, StorageClassOutput)
		be.b.AddDecorate(be.outputVar, DecorationLocation, 0)
		return nil
	}

	input, ok := be.inputStruct()
	if !ok {
		return diag.New("", diag.Pos{}, "vertex entry %q needs a single struct parameter", be.module.Names.String(be.entry.Name))
	}
	for i, member := range input.Members {
		ptr, err := be.pointerType(member.Type, StorageClassInput)
		if err != nil {
			return err
		}
		inputVar := be.b.AddGlobalVariable(ptr, StorageClassInput)
		be.b.AddDecorate(inputVar, DecorationLocation, uint32(i))
		be.inputVars = append(be.inputVars, inputVar)
	}

	output, ok := be.module.Types.Lookup(be.entry.Return.Type)
	if !ok || output.Kind != types.KindStruct {
		return diag.New("", diag.Pos{}, "vertex entry %q needs a struct return type", be.module.Names.String(be.entry.Name))
	}
	outputType, err := be.typeRef(be.entry.Return.Type)
	if err != nil {
		return err
	}
	be.b.AddDecorate(outputType, DecorationBlock)
	be.b.AddMemberDecorate(outputType, 0, DecorationBuiltIn, BuiltInPosition)
	for i := 1; i < len(output.Members); i++ {
		be.b.AddMemberDecorate(outputType, uint32(i), DecorationLocation, uint32(i-1))
	}
	ptr, err := be.pointerType(be.entry.Return.Type, StorageClassOutput)
	if err != nil {
		return err
	}
	be.outputVar = be.b.AddGlobalVariable(ptr, StorageClassOutput)
	return nil
}

func (be *Backend) inputStruct() (types.Type, bool) {
	if len(be.entry.Params) != 1 {
		return types.Type{}, false
	}
	t, ok := be.module.Types.Lookup(be.entry.Params[0].Type.Type)
	if !ok || t.Kind != types.KindStruct {
		return types.Type{}, false
	}
	return t, true
}

// declareUniforms binds struct-typed globals as Uniform block
// pointers with a single binding counter per set. Sampler and
// texture globals are elided; this emitter is vertex/fragment-IO
// focused and the texturing path lives in the textual backends.
func (be *Backend) declareUniforms() error {
	for setIndex, set := range be.module.Sets() {
		binding := uint32(0)
		for _, gid := range set.Globals {
			g := be.module.Global(gid)
			t, _ := be.module.Types.Lookup(g.Type.Type)
			if t.Kind != types.KindStruct {
				continue
			}
			typeID, err := be.typeRef(g.Type.Type)
			if err != nil {
				return err
			}
			be.b.AddDecorate(typeID, DecorationBlock)
			offset := uint32(0)
			for i, member := range t.Members {
				size, align := be.memberLayout(member.Type)
				offset = (offset + align - 1) / align * align
				be.b.AddMemberDecorate(typeID, uint32(i), DecorationOffset, offset)
				if mt, _ := be.module.Types.Lookup(member.Type); mt.Kind == types.KindFloat4x4 || mt.Kind == types.KindFloat3x3 {
					be.b.AddMemberDecorate(typeID, uint32(i), DecorationColMajor)
					be.b.AddMemberDecorate(typeID, uint32(i), DecorationMatrixStride, 16)
				}
				offset += size
			}

			ptr, err := be.pointerType(g.Type.Type, StorageClassUniform)
			if err != nil {
				return err
			}
			variable := be.b.AddGlobalVariable(ptr, StorageClassUniform)
			be.b.AddDecorate(variable, DecorationDescriptorSet, uint32(setIndex))
			be.b.AddDecorate(variable, DecorationBinding, binding)
			binding++

			be.varIDs[g.VarID] = variable
			be.pointerVar[g.VarID] = true
			be.varStorage[g.VarID] = StorageClassUniform
		}
	}
	return nil
}

// memberLayout gives (size, alignment) of a type under std140-style
// uniform packing, enough for the scalar/vector/matrix members kong
// constant buffers hold.
func (be *Backend) memberLayout(id types.ID) (uint32, uint32) {
	t, _ := be.module.Types.Lookup(id)
	switch t.Kind {
	case types.KindFloat, types.KindInt, types.KindUint, types.KindBool:
		return 4, 4
	case types.KindFloat2, types.KindInt2, types.KindUint2:
		return 8, 8
	case types.KindFloat3, types.KindInt3, types.KindUint3:
		return 12, 16
	case types.KindFloat4, types.KindInt4, types.KindUint4:
		return 16, 16
	case types.KindFloat3x3:
		return 48, 16
	case types.KindFloat4x4:
		return 64, 16
	default:
		return 16, 16
	}
}

// emitFunction translates the entry's opcode buffer into one
// OpFunction. The kong function becomes `void main()`: parameters
// turn into function-scope copies filled from the Input variables,
// and returns store into the Output variable.
func (be *Backend) emitFunction() (uint32, error) {
	voidType, err := be.typeRef(be.module.Types.Builtin(types.KindVoid))
	if err != nil {
		return 0, err
	}
	fnType := be.b.AddTypeFunction(voidType)
	funcID := be.b.AddFunction(voidType, fnType)
	be.b.AddLabel(be.b.AllocID())

	// Function-scope variables first: parameter copies, then every
	// VAR slot in the buffer. SPIR-V wants OpVariable at the top of
	// the entry block.
	for _, p := range be.entry.Params {
		ptr, err := be.pointerType(p.Type.Type, StorageClassFunction)
		if err != nil {
			return 0, err
		}
		be.varIDs[p.VarID] = be.b.AddLocalVariable(ptr)
		be.pointerVar[p.VarID] = true
		be.varStorage[p.VarID] = StorageClassFunction
	}
	for i := range be.entry.Code {
		op := &be.entry.Code[i]
		if op.Kind != ir.OpVar {
			continue
		}
		ptr, err := be.pointerType(op.Var.Type.Type, StorageClassFunction)
		if err != nil {
			return 0, err
		}
		be.varIDs[op.Var.ID] = be.b.AddLocalVariable(ptr)
		be.pointerVar[op.Var.ID] = true
		be.varStorage[op.Var.ID] = StorageClassFunction
	}

	// Const-globals referenced by the body become ordinary constants.
	for _, g := range be.module.Globals() {
		if g.Const == nil || !g.Const.Set {
			continue
		}
		var id uint32
		switch g.Const.Kind {
		case types.KindInt:
			id, err = be.intConstant(g.Const.Int)
		case types.KindUint:
			id, err = be.intConstant(int64(g.Const.Uint))
		case types.KindBool:
			id, err = be.boolConstant(g.Const.Bool)
		default:
			id, err = be.floatConstant(g.Const.Float)
		}
		if err != nil {
			return 0, err
		}
		be.varIDs[g.VarID] = id
	}

	if err := be.copyInputs(); err != nil {
		return 0, err
	}

	terminated := false
	for i := range be.entry.Code {
		op := &be.entry.Code[i]
		done, err := be.emitOp(op)
		if err != nil {
			return 0, err
		}
		terminated = done
	}
	if !terminated {
		be.b.AddReturn()
	}
	be.b.AddFunctionEnd()
	return funcID, nil
}

// copyInputs loads each vertex Input variable and assembles the
// function-scope copy of the input struct, so the body reads the
// aggregate exactly as the kong source wrote it.
func (be *Backend) copyInputs() error {
	if fragmentStage(be.entry) || len(be.entry.Params) == 0 {
		return nil
	}
	input, _ := be.inputStruct()

	loaded := make([]uint32, 0, len(input.Members))
	for i, member := range input.Members {
		memberType, err := be.typeRef(member.Type)
		if err != nil {
			return err
		}
		loaded = append(loaded, be.b.AddLoad(memberType, be.inputVars[i]))
	}
	structType, err := be.typeRef(be.entry.Params[0].Type.Type)
	if err != nil {
		return err
	}
	composite := be.b.AddCompositeConstruct(structType, loaded...)
	be.b.AddStore(be.varIDs[be.entry.Params[0].VarID], composite)
	return nil
}

// label returns the SPIR-V id for a pre-allocated IR label,
// recording it in the AST-variable map on first sight.
func (be *Backend) label(id ir.VarID) uint32 {
	if existing, ok := be.varIDs[id]; ok {
		return existing
	}
	allocated := be.b.AllocID()
	be.varIDs[id] = allocated
	return allocated
}

// emitOp translates one opcode. The bool result reports whether the
// opcode terminated the current SPIR-V block.
func (be *Backend) emitOp(op *ir.Op) (bool, error) {
	switch op.Kind {
	case ir.OpVar:
		// Declared up front with the other function-scope variables.
		return false, nil

	case ir.OpLoadFloatConstant:
		id, err := be.floatConstant(op.Float)
		if err != nil {
			return false, err
		}
		be.varIDs[op.To.ID] = id
		return false, nil

	case ir.OpLoadIntConstant:
		id, err := be.intConstant(op.Int)
		if err != nil {
			return false, err
		}
		be.varIDs[op.To.ID] = id
		return false, nil

	case ir.OpLoadBoolConstant:
		id, err := be.boolConstant(op.Bool)
		if err != nil {
			return false, err
		}
		be.varIDs[op.To.ID] = id
		return false, nil

	case ir.OpStoreVariable:
		value, err := be.value(op.From)
		if err != nil {
			return false, err
		}
		target, ok := be.varIDs[op.To.ID]
		if !ok || !be.pointerVar[op.To.ID] {
			return false, be.internalf("store target _%d is not a pointer", op.To.ID)
		}
		be.b.AddStore(target, value)
		return false, nil

	case ir.OpAddAndStoreVariable, ir.OpSubAndStoreVariable, ir.OpMulAndStoreVariable, ir.OpDivAndStoreVariable:
		return false, be.emitCompoundStore(op)

	case ir.OpStoreMember, ir.OpAddAndStoreMember, ir.OpSubAndStoreMember, ir.OpMulAndStoreMember, ir.OpDivAndStoreMember:
		return false, be.emitStoreMember(op)

	case ir.OpLoadMember:
		return false, be.emitLoadMember(op)

	case ir.OpNot:
		return false, be.emitUnary(op, OpLogicalNot)

	case ir.OpNegate:
		opcode := OpFNegate
		if isIntegral(be.module, op.From.Type.Type) {
			opcode = OpSNegate
		}
		return false, be.emitUnary(op, opcode)

	case ir.OpCall:
		return false, be.emitCall(op)

	case ir.OpReturn:
		if op.HasValue {
			value, err := be.value(op.From)
			if err != nil {
				return true, err
			}
			be.b.AddStore(be.outputVar, value)
		}
		be.b.AddReturn()
		if top := be.top(); top != nil {
			top.terminated = true
		}
		return true, nil

	case ir.OpIf:
		cond, err := be.value(op.Condition)
		if err != nil {
			return false, err
		}
		frame := &controlFrame{
			start:   be.label(op.StartLabel),
			end:     be.label(op.EndLabel),
			hasElse: op.HasElse,
		}
		if op.HasElse {
			frame.elseLabel = be.label(op.ElseLabel)
		}
		be.b.AddSelectionMerge(frame.end)
		if op.HasElse {
			be.b.AddBranchConditional(cond, frame.start, frame.elseLabel)
		} else {
			be.b.AddBranchConditional(cond, frame.start, frame.end)
		}
		be.controlTop = append(be.controlTop, frame)
		return false, nil

	case ir.OpWhileStart:
		header := be.label(op.StartLabel)
		frame := &controlFrame{
			isLoop:    true,
			start:     header,
			continueL: be.label(op.ContinueLabel),
			end:       be.label(op.EndLabel),
			elseLabel: be.b.AllocID(), // condition block
		}
		be.b.AddBranch(header)
		be.b.AddLabel(header)
		be.b.AddLoopMerge(frame.end, frame.continueL)
		be.b.AddBranch(frame.elseLabel)
		be.b.AddLabel(frame.elseLabel)
		be.controlTop = append(be.controlTop, frame)
		return false, nil

	case ir.OpWhileCondition:
		frame := be.top()
		if frame == nil || !frame.isLoop {
			return false, be.internalf("WHILE_CONDITION outside a loop")
		}
		cond, err := be.value(op.Condition)
		if err != nil {
			return false, err
		}
		body := be.b.AllocID()
		be.b.AddBranchConditional(cond, body, frame.end)
		be.b.AddLabel(body)
		return false, nil

	case ir.OpWhileEnd:
		frame := be.pop()
		if frame == nil || !frame.isLoop {
			return false, be.internalf("WHILE_END outside a loop")
		}
		if !frame.terminated {
			be.b.AddBranch(frame.continueL)
		}
		be.b.AddLabel(frame.continueL)
		be.b.AddBranch(frame.start)
		be.b.AddLabel(frame.end)
		return false, nil

	case ir.OpBlockStart:
		frame := be.top()
		if op.IsElse {
			if frame == nil || frame.plain || frame.isLoop || frame.armsSeen != 1 {
				return false, be.internalf("else block without a matching IF")
			}
			be.b.AddLabel(frame.elseLabel)
			frame.armsSeen = 2
			return false, nil
		}
		if frame != nil && !frame.plain && !frame.isLoop && frame.armsSeen == 0 {
			be.b.AddLabel(frame.start)
			frame.armsSeen = 1
			return false, nil
		}
		// Bare lexical block, or the loop body whose label the
		// WHILE_CONDITION already opened.
		be.controlTop = append(be.controlTop, &controlFrame{plain: true})
		return false, nil

	case ir.OpBlockEnd:
		frame := be.top()
		if frame == nil {
			return false, be.internalf("BLOCK_END without an open block")
		}
		if frame.plain {
			be.pop()
			if frame.terminated {
				if outer := be.top(); outer != nil {
					outer.terminated = true
				}
			}
			return false, nil
		}
		if frame.isLoop {
			// The loop body's closing brace; WHILE_END finishes the
			// structure.
			return false, nil
		}
		if !frame.terminated {
			be.b.AddBranch(frame.end)
		}
		frame.terminated = false
		if frame.armsSeen == 1 && frame.hasElse {
			// The else arm follows; its BLOCK_START emits the label.
			return false, nil
		}
		be.b.AddLabel(frame.end)
		be.pop()
		return false, nil

	default:
		if op.Kind.IsBinary() {
			return false, be.emitBinary(op)
		}
		return false, be.internalf("opcode %s not implemented for SPIR-V", op.Kind)
	}
}

func (be *Backend) top() *controlFrame {
	if len(be.controlTop) == 0 {
		return nil
	}
	return be.controlTop[len(be.controlTop)-1]
}

func (be *Backend) pop() *controlFrame {
	if len(be.controlTop) == 0 {
		return nil
	}
	frame := be.controlTop[len(be.controlTop)-1]
	be.controlTop = be.controlTop[:len(be.controlTop)-1]
	return frame
}

func (be *Backend) emitUnary(op *ir.Op, opcode OpCode) error {
	operand, err := be.value(op.From)
	if err != nil {
		return err
	}
	resultType, err := be.typeRef(op.To.Type.Type)
	if err != nil {
		return err
	}
	be.varIDs[op.To.ID] = be.b.AddUnary(opcode, resultType, operand)
	return nil
}

func isIntegral(m *ir.Module, id types.ID) bool {
	t, _ := m.Types.Lookup(id)
	switch t.Kind {
	case types.KindInt, types.KindUint, types.KindInt2, types.KindInt3, types.KindInt4,
		types.KindUint2, types.KindUint3, types.KindUint4:
		return true
	}
	return false
}

func isUnsigned(m *ir.Module, id types.ID) bool {
	t, _ := m.Types.Lookup(id)
	switch t.Kind {
	case types.KindUint, types.KindUint2, types.KindUint3, types.KindUint4:
		return true
	}
	return false
}
