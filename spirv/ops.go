package spirv

import (
	"github.com/kong-shade/kongc/diag"
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// arithOpcode picks the typed arithmetic instruction for +,-,*,/,% on
// the given operand type.
func (be *Backend) arithOpcode(kind ir.OpKind, operand types.ID) OpCode {
	integral := isIntegral(be.module, operand)
	unsigned := isUnsigned(be.module, operand)
	switch kind {
	case ir.OpAdd:
		if integral {
			return OpIAdd
		}
		return OpFAdd
	case ir.OpSub:
		if integral {
			return OpISub
		}
		return OpFSub
	case ir.OpMul:
		if integral {
			return OpIMul
		}
		return OpFMul
	case ir.OpDiv:
		if unsigned {
			return OpUDiv
		}
		if integral {
			return OpSDiv
		}
		return OpFDiv
	default: // Mod
		if unsigned {
			return OpUMod
		}
		if integral {
			return OpSMod
		}
		return OpFMod
	}
}

// compareOpcode picks the typed comparison instruction.
func (be *Backend) compareOpcode(kind ir.OpKind, operand types.ID) OpCode {
	integral := isIntegral(be.module, operand)
	unsigned := isUnsigned(be.module, operand)
	switch kind {
	case ir.OpEquals:
		if integral {
			return OpIEqual
		}
		return OpFOrdEqual
	case ir.OpNotEquals:
		if integral {
			return OpINotEqual
		}
		return OpFOrdNotEqual
	case ir.OpLess:
		if unsigned {
			return OpULessThan
		}
		if integral {
			return OpSLessThan
		}
		return OpFOrdLessThan
	case ir.OpLessEqual:
		if unsigned {
			return OpULessThanEqual
		}
		if integral {
			return OpSLessThanEqual
		}
		return OpFOrdLessThanEqual
	case ir.OpGreater:
		if unsigned {
			return OpUGreaterThan
		}
		if integral {
			return OpSGreaterThan
		}
		return OpFOrdGreaterThan
	default: // GreaterEqual
		if unsigned {
			return OpUGreaterThanEqual
		}
		if integral {
			return OpSGreaterThanEqual
		}
		return OpFOrdGreaterThanEqual
	}
}

// emitBinary lowers the two-operand opcodes, picking the instruction
// from the operand types: matrix*vector becomes
// OpMatrixTimesVector, vector*scalar OpVectorTimesScalar, and the
// scalar/vector arithmetic maps to the I/F/U families.
func (be *Backend) emitBinary(op *ir.Op) error {
	left, err := be.value(op.Left)
	if err != nil {
		return err
	}
	right, err := be.value(op.Right)
	if err != nil {
		return err
	}
	resultType, err := be.typeRef(op.Result.Type.Type)
	if err != nil {
		return err
	}

	leftT, _ := be.module.Types.Lookup(op.Left.Type.Type)
	rightT, _ := be.module.Types.Lookup(op.Right.Type.Type)

	var opcode OpCode
	switch {
	case op.Kind == ir.OpAnd:
		opcode = OpLogicalAnd
	case op.Kind == ir.OpOr:
		opcode = OpLogicalOr

	case op.Kind == ir.OpMul && (leftT.Kind == types.KindFloat3x3 || leftT.Kind == types.KindFloat4x4):
		opcode = OpMatrixTimesVector

	case op.Kind == ir.OpMul && leftT.Kind.IsVector() && rightT.Kind == types.KindFloat:
		opcode = OpVectorTimesScalar

	case op.Kind == ir.OpMul && leftT.Kind == types.KindFloat && rightT.Kind.IsVector():
		// OpVectorTimesScalar wants the vector first.
		left, right = right, left
		opcode = OpVectorTimesScalar

	case op.Kind == ir.OpEquals || op.Kind == ir.OpNotEquals ||
		op.Kind == ir.OpLess || op.Kind == ir.OpLessEqual ||
		op.Kind == ir.OpGreater || op.Kind == ir.OpGreaterEqual:
		opcode = be.compareOpcode(op.Kind, op.Left.Type.Type)

	default:
		opcode = be.arithOpcode(op.Kind, op.Left.Type.Type)
	}

	be.varIDs[op.Result.ID] = be.b.AddBinary(opcode, resultType, left, right)
	return nil
}

// emitCall lowers CALL opcodes. Constructors become
// OpCompositeConstruct; everything else is outside this emitter's
// vertex/fragment-IO scope.
func (be *Backend) emitCall(op *ir.Op) error {
	name := be.module.Names.String(op.Func)

	if typeID, isType := be.module.Types.LookupName(op.Func); isType {
		t, _ := be.module.Types.Lookup(typeID)
		resultType, err := be.typeRef(typeID)
		if err != nil {
			return err
		}

		// float(x) is a value passthrough once analysis has checked
		// the operand.
		if t.Kind == types.KindFloat && len(op.Args) == 1 {
			value, err := be.value(op.Args[0])
			if err != nil {
				return err
			}
			be.varIDs[op.Result.ID] = value
			return nil
		}

		args := make([]uint32, 0, len(op.Args))
		for _, arg := range op.Args {
			value, err := be.value(arg)
			if err != nil {
				return err
			}
			args = append(args, value)
		}
		be.varIDs[op.Result.ID] = be.b.AddCompositeConstruct(resultType, args...)
		return nil
	}

	return diag.New("", diag.Pos{}, "call to %q is not supported by the SPIR-V backend", name)
}
