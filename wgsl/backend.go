// Copyright 2026 The Kong Shade Authors
// SPDX-License-Identifier: MIT

// Package wgsl generates WGSL shader source from lowered kong IR.
//
// WGSL spells declarations as `let _n: T = ...` rather than
// `T _n = ...`, so this backend writes every value-producing opcode
// itself and delegates only the structural and store opcodes to the
// shared C-style writer.
package wgsl

import (
	"fmt"
	"strings"

	"github.com/kong-shade/kongc/cstyle"
	"github.com/kong-shade/kongc/diag"
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// Options configures WGSL code generation.
type Options struct{}

// DefaultOptions returns the defaults.
func DefaultOptions() *Options {
	return &Options{}
}

// Filename returns the output file name for an entry point.
func Filename(entry string) string {
	return "kong_" + entry + ".wgsl"
}

// Compile emits the WGSL translation unit for one entry point.
func Compile(m *ir.Module, entry ir.FunctionID, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	w := &writer{module: m, entry: m.Function(entry)}
	if err := w.write(); err != nil {
		return "", err
	}
	return w.out.String(), nil
}

type writer struct {
	module *ir.Module
	entry  *ir.Function
	out    strings.Builder
	indent int
}

func (w *writer) write() error {
	if err := w.writeStructs(); err != nil {
		return err
	}
	for _, g := range w.module.Globals() {
		if g.Const == nil || !g.Const.Set {
			continue
		}
		fmt.Fprintf(&w.out, "const _%d: %s = %s;\n\n",
			g.VarID, typeName(w.module, g.Type.Type), cstyle.ConstText(*g.Const))
	}
	if err := w.writeResources(); err != nil {
		return err
	}

	for i := range w.module.Functions() {
		f := w.module.Function(ir.FunctionID(i))
		if f.Body == nil || f == w.entry {
			continue
		}
		if err := w.writeFunction(f, false); err != nil {
			return err
		}
	}
	return w.writeFunction(w.entry, true)
}

func (w *writer) writeStructs() error {
	inputType, outputType := w.ioTypes()

	for id := types.ID(0); int(id) < w.module.Types.Count(); id++ {
		t, _ := w.module.Types.Lookup(id)
		if t.BuiltIn || t.Kind != types.KindStruct || t.HasAttribute(w.module.Names.Intern("pipe")) {
			continue
		}
		fmt.Fprintf(&w.out, "struct %s {\n", w.module.Names.String(t.Name))
		for i, member := range t.Members {
			name := w.module.Names.String(member.Name)
			w.out.WriteByte('\t')
			memberT, _ := w.module.Types.Lookup(member.Type)
			switch {
			case id == outputType && w.entry.Stage == ir.StageVertex && i == 0:
				w.out.WriteString("@builtin(position) ")
			case id == inputType && w.entry.Stage == ir.StageFragment && i == 0 && memberT.Kind == types.KindFloat4:
				w.out.WriteString("@builtin(position) ")
			case id == inputType || id == outputType:
				fmt.Fprintf(&w.out, "@location(%d) ", i)
			}
			fmt.Fprintf(&w.out, "%s: %s,\n", name, typeName(w.module, member.Type))
		}
		w.out.WriteString("}\n\n")
	}
	return nil
}

func (w *writer) ioTypes() (input, output types.ID) {
	const none = types.ID(1<<32 - 1)
	input, output = none, none
	if len(w.entry.Params) == 1 {
		if t, ok := w.module.Types.Lookup(w.entry.Params[0].Type.Type); ok && t.Kind == types.KindStruct {
			input = w.entry.Params[0].Type.Type
		}
	}
	if t, ok := w.module.Types.Lookup(w.entry.Return.Type); ok && t.Kind == types.KindStruct {
		output = w.entry.Return.Type
	}
	return input, output
}

// writeResources declares the bound globals with a single binding
// counter per group, the WebGPU policy.
func (w *writer) writeResources() error {
	for group, set := range w.module.Sets() {
		for binding, gid := range set.Globals {
			g := w.module.Global(gid)
			t, _ := w.module.Types.Lookup(g.Type.Type)
			fmt.Fprintf(&w.out, "@group(%d) @binding(%d) ", group, binding)
			switch t.Kind {
			case types.KindTex2D:
				fmt.Fprintf(&w.out, "var _%d: texture_2d<f32>;\n", g.VarID)
			case types.KindTex2DArray:
				fmt.Fprintf(&w.out, "var _%d: texture_2d_array<f32>;\n", g.VarID)
			case types.KindTexCube:
				fmt.Fprintf(&w.out, "var _%d: texture_cube<f32>;\n", g.VarID)
			case types.KindSampler:
				fmt.Fprintf(&w.out, "var _%d: sampler;\n", g.VarID)
			case types.KindStruct:
				fmt.Fprintf(&w.out, "var<uniform> _%d: %s;\n", g.VarID, typeName(w.module, g.Type.Type))
			default:
				return diag.New("", diag.Pos{}, "global %s cannot be bound from WGSL", w.module.Names.String(g.Name))
			}
		}
	}
	w.out.WriteString("\n")
	return nil
}

func (w *writer) writeFunction(f *ir.Function, isEntry bool) error {
	name := w.module.Names.String(f.Name)

	if isEntry {
		switch f.Stage {
		case ir.StageVertex:
			w.out.WriteString("@vertex\n")
		case ir.StageFragment:
			w.out.WriteString("@fragment\n")
		case ir.StageCompute:
			fmt.Fprintf(&w.out, "@compute @workgroup_size(%d, %d, %d)\n", f.Threads[0], f.Threads[1], f.Threads[2])
		}
	}

	fmt.Fprintf(&w.out, "fn %s(", name)
	first := true
	for i, p := range f.Params {
		if !first {
			w.out.WriteString(", ")
		}
		first = false
		if isEntry && f.Stage == ir.StageFragment {
			if t, ok := w.module.Types.Lookup(p.Type.Type); !ok || t.Kind != types.KindStruct {
				fmt.Fprintf(&w.out, "@location(%d) ", i)
			}
		}
		fmt.Fprintf(&w.out, "_%d: %s", p.VarID, typeName(w.module, p.Type.Type))
	}
	if isEntry && f.Stage == ir.StageCompute {
		if !first {
			w.out.WriteString(", ")
		}
		w.out.WriteString("@builtin(workgroup_id) _kong_group_id: vec3<u32>, " +
			"@builtin(local_invocation_id) _kong_group_thread_id: vec3<u32>, " +
			"@builtin(global_invocation_id) _kong_dispatch_thread_id: vec3<u32>, " +
			"@builtin(local_invocation_index) _kong_group_index: u32")
	}
	w.out.WriteString(")")

	void := w.module.Types.Builtin(types.KindVoid)
	if f.Return.Type != void {
		fmt.Fprintf(&w.out, " -> ")
		if isEntry && f.Stage == ir.StageFragment {
			w.out.WriteString("@location(0) ")
		}
		w.out.WriteString(typeName(w.module, f.Return.Type))
	}
	w.out.WriteString(" {\n")
	w.indent = 1

	for i := range f.Code {
		if err := w.writeOp(&f.Code[i]); err != nil {
			return err
		}
	}
	w.out.WriteString("}\n\n")
	return nil
}

// writeOp handles WGSL's let/var declaration syntax for every
// value-producing opcode; stores, returns, and structure pass through
// the shared writer.
func (w *writer) writeOp(op *ir.Op) error {
	decl := func(v ir.Variable) {
		cstyle.Indent(&w.out, w.indent)
		fmt.Fprintf(&w.out, "let _%d: %s = ", v.ID, typeName(w.module, v.Type.Type))
	}

	switch op.Kind {
	case ir.OpVar:
		cstyle.Indent(&w.out, w.indent)
		if op.Var.Type.ArraySize > 0 && op.Var.Type.ArraySize != types.Unbounded {
			fmt.Fprintf(&w.out, "var _%d: array<%s, %d>;\n", op.Var.ID, typeName(w.module, op.Var.Type.Type), op.Var.Type.ArraySize)
		} else {
			fmt.Fprintf(&w.out, "var _%d: %s;\n", op.Var.ID, typeName(w.module, op.Var.Type.Type))
		}

	case ir.OpLoadFloatConstant:
		decl(op.To)
		fmt.Fprintf(&w.out, "%s;\n", cstyle.FormatFloat(op.Float))

	case ir.OpLoadIntConstant:
		decl(op.To)
		fmt.Fprintf(&w.out, "%d;\n", op.Int)

	case ir.OpLoadBoolConstant:
		decl(op.To)
		fmt.Fprintf(&w.out, "%t;\n", op.Bool)

	case ir.OpNot:
		decl(op.To)
		fmt.Fprintf(&w.out, "!_%d;\n", op.From.ID)

	case ir.OpNegate:
		decl(op.To)
		fmt.Fprintf(&w.out, "-_%d;\n", op.From.ID)

	case ir.OpLoadMember:
		chain, err := cstyle.MemberChain(w.module, op.MemberParent, op.Indices, op.IndexIsArray)
		if err != nil {
			return err
		}
		decl(op.To)
		fmt.Fprintf(&w.out, "_%d%s;\n", op.From.ID, chain)

	case ir.OpCall:
		return w.writeCall(op)

	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod,
		ir.OpEquals, ir.OpNotEquals, ir.OpLess, ir.OpLessEqual, ir.OpGreater, ir.OpGreaterEqual,
		ir.OpAnd, ir.OpOr:
		decl(op.Result)
		fmt.Fprintf(&w.out, "_%d %s _%d;\n", op.Left.ID, binarySpelling(op.Kind), op.Right.ID)

	default:
		return cstyle.Write(w.module, op, func(id types.ID) string {
			return typeName(w.module, id)
		}, &w.out, &w.indent)
	}
	return nil
}

func binarySpelling(k ir.OpKind) string {
	switch k {
	case ir.OpAdd:
		return "+"
	case ir.OpSub:
		return "-"
	case ir.OpMul:
		return "*"
	case ir.OpDiv:
		return "/"
	case ir.OpMod:
		return "%"
	case ir.OpEquals:
		return "=="
	case ir.OpNotEquals:
		return "!="
	case ir.OpLess:
		return "<"
	case ir.OpLessEqual:
		return "<="
	case ir.OpGreater:
		return ">"
	case ir.OpGreaterEqual:
		return ">="
	case ir.OpAnd:
		return "&&"
	default:
		return "||"
	}
}

func (w *writer) writeCall(op *ir.Op) error {
	decl := func() {
		cstyle.Indent(&w.out, w.indent)
		fmt.Fprintf(&w.out, "let _%d: %s = ", op.Result.ID, typeName(w.module, op.Result.Type.Type))
	}

	switch w.module.Names.String(op.Func) {
	case "sample":
		decl()
		fmt.Fprintf(&w.out, "textureSample(_%d, _%d, _%d);\n", op.Args[0].ID, op.Args[1].ID, op.Args[2].ID)
		return nil
	case "sample_lod":
		decl()
		fmt.Fprintf(&w.out, "textureSampleLevel(_%d, _%d, _%d, _%d);\n",
			op.Args[0].ID, op.Args[1].ID, op.Args[2].ID, op.Args[3].ID)
		return nil
	case "group_id", "group_thread_id", "dispatch_thread_id", "group_index":
		decl()
		fmt.Fprintf(&w.out, "_kong_%s;\n", w.module.Names.String(op.Func))
		return nil
	}

	callee := w.module.Names.String(op.Func)
	if typeID, isType := w.module.Types.LookupName(op.Func); isType {
		callee = typeName(w.module, typeID)
	}
	decl()
	fmt.Fprintf(&w.out, "%s(", callee)
	for i, arg := range op.Args {
		if i > 0 {
			w.out.WriteString(", ")
		}
		fmt.Fprintf(&w.out, "_%d", arg.ID)
	}
	w.out.WriteString(");\n")
	return nil
}
