package sema

import (
	"github.com/kong-shade/kongc/ast"
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// registerIntrinsics adds the built-in callables to the function
// registry. They have no body; each backend spells them its own way.
func registerIntrinsics(m *ir.Module) {
	float4 := types.Ref{Type: m.Types.Builtin(types.KindFloat4), Resolved: true}
	uint1 := types.Ref{Type: m.Types.Builtin(types.KindUint), Resolved: true}
	uint3 := types.Ref{Type: m.Types.Builtin(types.KindUint3), Resolved: true}

	add := func(name string, ret types.Ref) {
		m.AddFunction(ir.Function{Name: m.Names.Intern(name), Return: ret})
	}

	add("sample", float4)
	add("sample_lod", float4)
	add("group_id", uint3)
	add("group_thread_id", uint3)
	add("dispatch_thread_id", uint3)
	add("group_index", uint1)
}

// intrinsicArity fixes the parameter counts checked at analysis time.
var intrinsicArity = map[string]int{
	"sample":             3,
	"sample_lod":         4,
	"group_id":           0,
	"group_thread_id":    0,
	"dispatch_thread_id": 0,
	"group_index":        0,
}

// analyzeCall types `f(args)`. A callee naming a type is rewritten
// into a constructor; otherwise the name must resolve to a function
// (intrinsic or user-defined).
func (a *Analyzer) analyzeCall(b *ast.Block, expr *ast.CallExpr) error {
	expr.NameID = a.module.Names.Intern(expr.Callee)

	if typeID, ok := a.module.Types.LookupName(expr.NameID); ok {
		return a.analyzeConstructor(b, expr, typeID)
	}

	fid, ok := a.module.FunctionByName(expr.NameID)
	if !ok {
		return a.errorf(expr.Span, "unknown function %q", expr.Callee)
	}
	fn := a.module.Function(fid)

	if arity, isIntrinsic := intrinsicArity[expr.Callee]; isIntrinsic {
		if len(expr.Args) != arity {
			return a.errorf(expr.Span, "%s takes %d arguments, found %d", expr.Callee, arity, len(expr.Args))
		}
		if err := a.checkIntrinsicArgs(b, expr); err != nil {
			return err
		}
		expr.Type = fn.Return
		return nil
	}

	if len(expr.Args) != len(fn.Params) {
		return a.errorf(expr.Span, "%s takes %d arguments, found %d", expr.Callee, len(fn.Params), len(expr.Args))
	}
	for i, arg := range expr.Args {
		if err := a.analyzeExpr(b, arg, fn.Params[i].Type.Type); err != nil {
			return err
		}
		if arg.TypeRef().Type != fn.Params[i].Type.Type {
			return a.errorf(arg.Pos(), "argument %d of %s needs %s, found %s",
				i+1, expr.Callee, a.typeName(fn.Params[i].Type.Type), a.typeName(arg.TypeRef().Type))
		}
	}
	expr.Type = fn.Return
	return nil
}

// checkIntrinsicArgs type-checks the texturing intrinsics; the
// compute-id intrinsics take no arguments.
func (a *Analyzer) checkIntrinsicArgs(b *ast.Block, expr *ast.CallExpr) error {
	for _, arg := range expr.Args {
		if err := a.analyzeExpr(b, arg, 0); err != nil {
			return err
		}
	}

	argKind := func(i int) types.Kind {
		t, _ := a.module.Types.Lookup(expr.Args[i].TypeRef().Type)
		return t.Kind
	}

	switch expr.Callee {
	case "sample":
		if k := argKind(0); k != types.KindTex2D && k != types.KindTex2DArray && k != types.KindTexCube {
			return a.errorf(expr.Args[0].Pos(), "sample needs a texture, found %s", k)
		}
		if argKind(1) != types.KindSampler {
			return a.errorf(expr.Args[1].Pos(), "sample needs a sampler, found %s", argKind(1))
		}
		if k := argKind(2); k != types.KindFloat2 && k != types.KindFloat3 {
			return a.errorf(expr.Args[2].Pos(), "sample needs float2 or float3 coordinates, found %s", k)
		}
	case "sample_lod":
		if k := argKind(0); k != types.KindTex2D && k != types.KindTex2DArray && k != types.KindTexCube {
			return a.errorf(expr.Args[0].Pos(), "sample_lod needs a texture, found %s", k)
		}
		if argKind(1) != types.KindSampler {
			return a.errorf(expr.Args[1].Pos(), "sample_lod needs a sampler, found %s", argKind(1))
		}
		if k := argKind(2); k != types.KindFloat2 && k != types.KindFloat3 {
			return a.errorf(expr.Args[2].Pos(), "sample_lod needs float2 or float3 coordinates, found %s", k)
		}
		if argKind(3) != types.KindFloat {
			return a.errorf(expr.Args[3].Pos(), "sample_lod needs a float level, found %s", argKind(3))
		}
	}
	return nil
}

// analyzeConstructor marks a call whose callee names a type as a
// constructor (CallExpr.Constructor) and checks the arguments: vectors pack any mix of
// scalars and shorter vectors totalling the arity, structs take one
// argument per member.
func (a *Analyzer) analyzeConstructor(b *ast.Block, expr *ast.CallExpr, typeID types.ID) error {
	t, _ := a.module.Types.Lookup(typeID)

	for _, arg := range expr.Args {
		expectedArg := types.ID(0)
		if t.Kind == types.KindFloat {
			expectedArg = typeID
		}
		if err := a.analyzeExpr(b, arg, expectedArg); err != nil {
			return err
		}
	}

	switch {
	case t.Kind.IsVector():
		arity := t.Kind.VectorArity()
		total := 0
		for _, arg := range expr.Args {
			argT, _ := a.module.Types.Lookup(arg.TypeRef().Type)
			switch {
			case argT.Kind == types.KindFloat || argT.Kind == types.KindInt || argT.Kind == types.KindUint:
				total++
			case argT.Kind.IsVector():
				total += argT.Kind.VectorArity()
			default:
				return a.errorf(arg.Pos(), "%s cannot be packed into %s", a.typeName(arg.TypeRef().Type), t.Kind)
			}
		}
		if total != arity {
			return a.errorf(expr.Span, "%s needs %d components, found %d", t.Kind, arity, total)
		}

	case t.Kind == types.KindFloat:
		if len(expr.Args) != 1 {
			return a.errorf(expr.Span, "float takes one argument, found %d", len(expr.Args))
		}

	case t.Kind == types.KindStruct:
		if len(expr.Args) != len(t.Members) {
			return a.errorf(expr.Span, "%s needs %d members, found %d",
				a.typeName(typeID), len(t.Members), len(expr.Args))
		}
		for i, arg := range expr.Args {
			if arg.TypeRef().Type != t.Members[i].Type {
				return a.errorf(arg.Pos(), "member %d of %s needs %s, found %s",
					i+1, a.typeName(typeID), a.typeName(t.Members[i].Type), a.typeName(arg.TypeRef().Type))
			}
		}

	default:
		return a.errorf(expr.Span, "%s cannot be constructed", a.typeName(typeID))
	}

	// Parents hold the CallExpr pointer, so the node is flagged in
	// place rather than replaced.
	expr.Constructor = true
	expr.TypeID = typeID
	expr.Type = types.Ref{Type: typeID, Resolved: true}
	return nil
}
