// Package cstyle implements the opcode-to-text writer shared by every
// C-family backend. HLSL, MSL, GLSL, WGSL, and the CPU transpile all
// print the same statement shapes; only the type spellings and a few
// intrinsics differ, so each backend supplies a type-name callback
// and intercepts its special opcodes before delegating here.
package cstyle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kong-shade/kongc/diag"
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// TypeNameFunc maps a type id to its spelling in the target language.
type TypeNameFunc func(types.ID) string

// swizzleLetters spells vector component indices.
var swizzleLetters = [4]byte{'x', 'y', 'z', 'w'}

// FormatFloat prints a float literal that stays a float literal in
// every C-family target: a bare integral value gets a ".0" suffix.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// ConstText spells a constant value in C-family source.
func ConstText(c types.Const) string {
	switch c.Kind {
	case types.KindInt:
		return strconv.FormatInt(c.Int, 10)
	case types.KindUint:
		return strconv.FormatUint(c.Uint, 10)
	case types.KindBool:
		return strconv.FormatBool(c.Bool)
	default:
		return FormatFloat(c.Float)
	}
}

// Indent writes the current indentation.
func Indent(out *strings.Builder, indentation int) {
	for i := 0; i < indentation; i++ {
		out.WriteByte('\t')
	}
}

// Write appends the target-source line(s) for one opcode. Each opcode
// becomes one indented line ending in ";\n", except the structural
// opcodes: BLOCK_START opens a brace and indents (prefixed with the
// `else` keyword when the block is the else arm of the preceding IF),
// BLOCK_END closes it, IF prints its header without braces (the
// following BLOCK_START supplies them), WHILE_START opens
// "while (true)" with its brace on the next line, WHILE_CONDITION
// emits the break check, WHILE_END closes the loop.
func Write(m *ir.Module, op *ir.Op, typeName TypeNameFunc, out *strings.Builder, indentation *int) error {
	switch op.Kind {
	case ir.OpVar:
		Indent(out, *indentation)
		if op.Var.Type.ArraySize > 0 && op.Var.Type.ArraySize != types.Unbounded {
			fmt.Fprintf(out, "%s _%d[%d];\n", typeName(op.Var.Type.Type), op.Var.ID, op.Var.Type.ArraySize)
		} else {
			fmt.Fprintf(out, "%s _%d;\n", typeName(op.Var.Type.Type), op.Var.ID)
		}

	case ir.OpLoadFloatConstant:
		Indent(out, *indentation)
		fmt.Fprintf(out, "%s _%d = %s;\n", typeName(op.To.Type.Type), op.To.ID, FormatFloat(op.Float))

	case ir.OpLoadIntConstant:
		Indent(out, *indentation)
		fmt.Fprintf(out, "%s _%d = %d;\n", typeName(op.To.Type.Type), op.To.ID, op.Int)

	case ir.OpLoadBoolConstant:
		Indent(out, *indentation)
		fmt.Fprintf(out, "%s _%d = %t;\n", typeName(op.To.Type.Type), op.To.ID, op.Bool)

	case ir.OpNot:
		Indent(out, *indentation)
		fmt.Fprintf(out, "%s _%d = !_%d;\n", typeName(op.To.Type.Type), op.To.ID, op.From.ID)

	case ir.OpNegate:
		Indent(out, *indentation)
		fmt.Fprintf(out, "%s _%d = -_%d;\n", typeName(op.To.Type.Type), op.To.ID, op.From.ID)

	case ir.OpStoreVariable:
		Indent(out, *indentation)
		fmt.Fprintf(out, "_%d = _%d;\n", op.To.ID, op.From.ID)
	case ir.OpAddAndStoreVariable:
		Indent(out, *indentation)
		fmt.Fprintf(out, "_%d += _%d;\n", op.To.ID, op.From.ID)
	case ir.OpSubAndStoreVariable:
		Indent(out, *indentation)
		fmt.Fprintf(out, "_%d -= _%d;\n", op.To.ID, op.From.ID)
	case ir.OpMulAndStoreVariable:
		Indent(out, *indentation)
		fmt.Fprintf(out, "_%d *= _%d;\n", op.To.ID, op.From.ID)
	case ir.OpDivAndStoreVariable:
		Indent(out, *indentation)
		fmt.Fprintf(out, "_%d /= _%d;\n", op.To.ID, op.From.ID)

	case ir.OpStoreMember, ir.OpAddAndStoreMember, ir.OpSubAndStoreMember, ir.OpMulAndStoreMember, ir.OpDivAndStoreMember:
		chain, err := MemberChain(m, op.MemberParent, op.Indices, op.IndexIsArray)
		if err != nil {
			return err
		}
		Indent(out, *indentation)
		operator := "="
		switch op.Kind {
		case ir.OpAddAndStoreMember:
			operator = "+="
		case ir.OpSubAndStoreMember:
			operator = "-="
		case ir.OpMulAndStoreMember:
			operator = "*="
		case ir.OpDivAndStoreMember:
			operator = "/="
		}
		fmt.Fprintf(out, "_%d%s %s _%d;\n", op.To.ID, chain, operator, op.From.ID)

	case ir.OpLoadMember:
		chain, err := MemberChain(m, op.MemberParent, op.Indices, op.IndexIsArray)
		if err != nil {
			return err
		}
		Indent(out, *indentation)
		fmt.Fprintf(out, "%s _%d = _%d%s;\n", typeName(op.To.Type.Type), op.To.ID, op.From.ID, chain)

	case ir.OpCall:
		Indent(out, *indentation)
		fmt.Fprintf(out, "%s _%d = %s(", typeName(op.Result.Type.Type), op.Result.ID, m.Names.String(op.Func))
		for i, arg := range op.Args {
			if i > 0 {
				out.WriteString(", ")
			}
			fmt.Fprintf(out, "_%d", arg.ID)
		}
		out.WriteString(");\n")

	case ir.OpReturn:
		Indent(out, *indentation)
		if op.HasValue {
			fmt.Fprintf(out, "return _%d;\n", op.From.ID)
		} else {
			out.WriteString("return;\n")
		}

	case ir.OpIf:
		Indent(out, *indentation)
		fmt.Fprintf(out, "if (_%d)\n", op.Condition.ID)

	case ir.OpWhileStart:
		Indent(out, *indentation)
		out.WriteString("while (true)\n")
		Indent(out, *indentation)
		out.WriteString("{\n")
		*indentation++

	case ir.OpWhileCondition:
		Indent(out, *indentation)
		fmt.Fprintf(out, "if (!_%d) break;\n", op.Condition.ID)

	case ir.OpWhileEnd:
		*indentation--
		Indent(out, *indentation)
		out.WriteString("}\n")

	case ir.OpBlockStart:
		if op.IsElse {
			Indent(out, *indentation)
			out.WriteString("else\n")
		}
		Indent(out, *indentation)
		out.WriteString("{\n")
		*indentation++

	case ir.OpBlockEnd:
		*indentation--
		Indent(out, *indentation)
		out.WriteString("}\n")

	default:
		if binary, ok := binaryOperators[op.Kind]; ok {
			Indent(out, *indentation)
			fmt.Fprintf(out, "%s _%d = _%d %s _%d;\n",
				typeName(op.Result.Type.Type), op.Result.ID, op.Left.ID, binary, op.Right.ID)
			return nil
		}
		return diag.Internal("", diag.Pos{}, "unknown opcode %s", op.Kind)
	}
	return nil
}

var binaryOperators = map[ir.OpKind]string{
	ir.OpAdd:          "+",
	ir.OpSub:          "-",
	ir.OpMul:          "*",
	ir.OpDiv:          "/",
	ir.OpMod:          "%",
	ir.OpEquals:       "==",
	ir.OpNotEquals:    "!=",
	ir.OpLess:         "<",
	ir.OpLessEqual:    "<=",
	ir.OpGreater:      ">",
	ir.OpGreaterEqual: ">=",
	ir.OpAnd:          "&&",
	ir.OpOr:           "||",
}

// MemberChain renders an access chain (".member", "[3]", ".xyz")
// from a root of the given parent type. Struct ordinals follow the
// registry; once the walk reaches a vector, the remaining indices are
// spelled as one swizzle suffix.
func MemberChain(m *ir.Module, parent types.Ref, indices []uint32, isArray []bool) (string, error) {
	var sb strings.Builder
	current := parent

	for i := 0; i < len(indices); i++ {
		if isArray[i] {
			fmt.Fprintf(&sb, "[%d]", indices[i])
			current = types.Ref{Type: current.Type, Resolved: true}
			continue
		}

		t, ok := m.Types.Lookup(current.Type)
		if !ok {
			return "", diag.Internal("", diag.Pos{}, "member chain parent type missing")
		}

		if t.Kind.IsVector() {
			sb.WriteByte('.')
			for ; i < len(indices); i++ {
				if int(indices[i]) >= len(swizzleLetters) {
					return "", diag.Internal("", diag.Pos{}, "swizzle component out of bounds")
				}
				sb.WriteByte(swizzleLetters[indices[i]])
			}
			return sb.String(), nil
		}

		if t.Kind != types.KindStruct {
			return "", diag.Internal("", diag.Pos{}, "member access into %s", t.Kind)
		}
		if int(indices[i]) >= len(t.Members) {
			return "", diag.Internal("", diag.Pos{}, "member index out of bounds")
		}
		member := t.Members[indices[i]]
		fmt.Fprintf(&sb, ".%s", m.Names.String(member.Name))
		current = types.Ref{Type: member.Type, ArraySize: member.ArraySize, Resolved: true}
	}
	return sb.String(), nil
}
