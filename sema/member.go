package sema

import (
	"github.com/kong-shade/kongc/ast"
	"github.com/kong-shade/kongc/types"
)

// swizzleIndex maps a swizzle letter to its component index. Both the
// positional (xyzw) and color (rgba) alphabets are accepted.
func swizzleIndex(c byte) (uint32, bool) {
	switch c {
	case 'x', 'r':
		return 0, true
	case 'y', 'g':
		return 1, true
	case 'z', 'b':
		return 2, true
	case 'w', 'a':
		return 3, true
	}
	return 0, false
}

// analyzeMember resolves one `base.name` hop: a struct member by name
// (recording its ordinal) or a vector swizzle (recording component
// indices).
func (a *Analyzer) analyzeMember(b *ast.Block, expr *ast.MemberExpr) error {
	if err := a.analyzeExpr(b, expr.Base, 0); err != nil {
		return err
	}
	expr.NameID = a.module.Names.Intern(expr.Name)

	base := *expr.Base.TypeRef()
	baseT, ok := a.module.Types.Lookup(base.Type)
	if !ok {
		return a.errorf(expr.Span, "member access on unknown type")
	}

	if baseT.Kind == types.KindStruct {
		index, member, found := a.module.Types.Member(base.Type, expr.NameID)
		if !found {
			return a.errorf(expr.Span, "type %q has no member %q", a.typeName(base.Type), expr.Name)
		}
		expr.Indices = []uint32{uint32(index)}
		expr.Type = types.Ref{Type: member.Type, ArraySize: member.ArraySize, Resolved: true}
		return nil
	}

	if baseT.Kind.IsVector() {
		return a.analyzeSwizzle(expr, baseT)
	}

	return a.errorf(expr.Span, "member access is not supported on %s", a.typeName(base.Type))
}

// analyzeSwizzle types `v.x`, `v.xyz`, `v.rgb` and friends on a
// vector base. Component indices must be in range for the base's
// arity; the result is the scalar for one component or the matching
// shorter vector otherwise.
func (a *Analyzer) analyzeSwizzle(expr *ast.MemberExpr, baseT types.Type) error {
	arity := uint32(baseT.Kind.VectorArity())
	if len(expr.Name) == 0 || len(expr.Name) > 4 {
		return a.errorf(expr.Span, "bad swizzle %q", expr.Name)
	}

	indices := make([]uint32, 0, len(expr.Name))
	for i := 0; i < len(expr.Name); i++ {
		index, ok := swizzleIndex(expr.Name[i])
		if !ok || index >= arity {
			return a.errorf(expr.Span, "bad swizzle %q on %s", expr.Name, baseT.Kind)
		}
		indices = append(indices, index)
	}
	expr.Indices = indices
	expr.Swizzle = true

	scalar, vec2, vec3, vec4 := a.componentKinds(baseT.Kind)
	var result types.Kind
	switch len(indices) {
	case 1:
		result = scalar
	case 2:
		result = vec2
	case 3:
		result = vec3
	default:
		result = vec4
	}
	expr.Type = types.Ref{Type: a.module.Types.Builtin(result), Resolved: true}
	return nil
}

// componentKinds gives the scalar and vector kinds of a vector
// family.
func (a *Analyzer) componentKinds(k types.Kind) (scalar, vec2, vec3, vec4 types.Kind) {
	switch k {
	case types.KindInt2, types.KindInt3, types.KindInt4:
		return types.KindInt, types.KindInt2, types.KindInt3, types.KindInt4
	case types.KindUint2, types.KindUint3, types.KindUint4:
		return types.KindUint, types.KindUint2, types.KindUint3, types.KindUint4
	default:
		return types.KindFloat, types.KindFloat2, types.KindFloat3, types.KindFloat4
	}
}
