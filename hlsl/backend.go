// Copyright 2026 The Kong Shade Authors
// SPDX-License-Identifier: MIT

// Package hlsl generates HLSL shader source from lowered kong IR.
package hlsl

import (
	"fmt"
	"strings"

	"github.com/kong-shade/kongc/cstyle"
	"github.com/kong-shade/kongc/diag"
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// Options configures HLSL code generation.
type Options struct {
	// ShaderModel selects the target shader model; it only affects
	// the profile comment in the generated source, binding layout is
	// the same across the supported models.
	ShaderModel ShaderModel
}

// DefaultOptions returns defaults targeting Shader Model 5.1.
func DefaultOptions() *Options {
	return &Options{ShaderModel: ShaderModel5_1}
}

// Filename returns the output file name for an entry point.
func Filename(entry string) string {
	return "kong_" + entry + ".hlsl"
}

// Compile emits the HLSL translation unit for one entry point.
func Compile(m *ir.Module, entry ir.FunctionID, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	w := &writer{module: m, opts: opts, entry: m.Function(entry)}
	if err := w.write(); err != nil {
		return "", err
	}
	return w.out.String(), nil
}

type writer struct {
	module *ir.Module
	opts   *Options
	entry  *ir.Function
	out    strings.Builder
	indent int
}

func (w *writer) write() error {
	fmt.Fprintf(&w.out, "// %s profile\n\n", w.opts.ShaderModel)

	if err := w.writeStructs(); err != nil {
		return err
	}
	w.writeConstGlobals()
	if err := w.writeResources(); err != nil {
		return err
	}

	// Helpers first, entry last; an entry point may call any
	// previously declared function.
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

// writeStructs emits every user struct. IO structs of the current
// entry point get HLSL semantics on their members.
func (w *writer) writeStructs() error {
	inputType, outputType := w.ioTypes()

	for id := types.ID(0); int(id) < w.module.Types.Count(); id++ {
		t, _ := w.module.Types.Lookup(id)
		if t.BuiltIn || t.Kind != types.KindStruct || t.HasAttribute(w.module.Names.Intern("pipe")) {
			continue
		}
		fmt.Fprintf(&w.out, "struct %s\n{\n", sanitize(w.module.Names.String(t.Name)))
		for i, member := range t.Members {
			name := sanitize(w.module.Names.String(member.Name))
			w.out.WriteByte('\t')
			if member.ArraySize > 0 && member.ArraySize != types.Unbounded {
				fmt.Fprintf(&w.out, "%s %s[%d]", typeName(w.module, member.Type), name, member.ArraySize)
			} else {
				fmt.Fprintf(&w.out, "%s %s", typeName(w.module, member.Type), name)
			}
			memberT, _ := w.module.Types.Lookup(member.Type)
			switch {
			case id == outputType && w.entry.Stage == ir.StageVertex && i == 0:
				w.out.WriteString(" : SV_POSITION")
			case id == inputType && w.entry.Stage == ir.StageFragment && i == 0 && memberT.Kind == types.KindFloat4:
				w.out.WriteString(" : SV_POSITION")
			case (id == inputType || id == outputType) && (w.entry.Stage == ir.StageVertex || w.entry.Stage == ir.StageFragment):
				fmt.Fprintf(&w.out, " : TEXCOORD%d", i)
			}
			w.out.WriteString(";\n")
		}
		w.out.WriteString("};\n\n")
	}
	return nil
}

// ioTypes returns the entry's input and output struct types, if any.
func (w *writer) ioTypes() (input, output types.ID) {
	input, output = noType, noType
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

const noType = types.ID(1<<32 - 1)

// writeConstGlobals declares the const-globals under their SSA names
// so body opcodes can reference them.
func (w *writer) writeConstGlobals() {
	wrote := false
	for _, g := range w.module.Globals() {
		if g.Const == nil || !g.Const.Set {
			continue
		}
		fmt.Fprintf(&w.out, "static const %s _%d = %s; // %s\n",
			typeName(w.module, g.Type.Type), g.VarID, cstyle.ConstText(*g.Const), w.module.Names.String(g.Name))
		wrote = true
	}
	if wrote {
		w.out.WriteString("\n")
	}
}

// writeResources declares the descriptor-set globals with registers
// from the D3D-style policy.
func (w *writer) writeResources() error {
	targets := AssignRegisters(w.module)

	// Globals are declared under their SSA names so function bodies
	// can reference them like any other variable; the source name
	// survives as the cbuffer block name.
	for _, set := range w.module.Sets() {
		for _, gid := range set.Globals {
			g := w.module.Global(gid)
			t, _ := w.module.Types.Lookup(g.Type.Type)
			name := sanitize(w.module.Names.String(g.Name))
			target := targets[gid]

			switch t.Kind {
			case types.KindTex2D:
				if g.Writable {
					fmt.Fprintf(&w.out, "RWTexture2D<float4> _%d : register(u%d); // %s\n\n", g.VarID, target.Slot, name)
				} else {
					fmt.Fprintf(&w.out, "Texture2D _%d : register(t%d); // %s\n\n", g.VarID, target.Slot, name)
				}
			case types.KindTex2DArray:
				fmt.Fprintf(&w.out, "Texture2DArray _%d : register(t%d); // %s\n\n", g.VarID, target.Slot, name)
			case types.KindTexCube:
				fmt.Fprintf(&w.out, "TextureCube _%d : register(t%d); // %s\n\n", g.VarID, target.Slot, name)
			case types.KindSampler:
				fmt.Fprintf(&w.out, "SamplerState _%d : register(s%d); // %s\n\n", g.VarID, target.Slot, name)
			case types.KindBVH:
				// TODO(bvh): raytracing acceleration structures are
				// plumbed through the IR but not emitted yet.
				return diag.New("", diag.Pos{}, "bvh globals are not supported by the HLSL backend yet")
			case types.KindStruct:
				fmt.Fprintf(&w.out, "cbuffer %s : register(b%d)\n{\n\t%s _%d;\n}\n\n",
					name, target.Slot, typeName(w.module, g.Type.Type), g.VarID)
			default:
				return diag.New("", diag.Pos{}, "global %s cannot be bound from HLSL", name)
			}
		}
	}
	return nil
}

func (w *writer) writeFunction(f *ir.Function, isEntry bool) error {
	name := sanitize(w.module.Names.String(f.Name))

	if isEntry && f.Stage == ir.StageCompute {
		fmt.Fprintf(&w.out, "[numthreads(%d, %d, %d)]\n", f.Threads[0], f.Threads[1], f.Threads[2])
	}

	fmt.Fprintf(&w.out, "%s %s(", typeName(w.module, f.Return.Type), name)
	for i, p := range f.Params {
		if i > 0 {
			w.out.WriteString(", ")
		}
		fmt.Fprintf(&w.out, "%s _%d", typeName(w.module, p.Type.Type), p.VarID)
		if isEntry && (f.Stage == ir.StageVertex || f.Stage == ir.StageFragment) {
			if t, ok := w.module.Types.Lookup(p.Type.Type); !ok || t.Kind != types.KindStruct {
				fmt.Fprintf(&w.out, " : TEXCOORD%d", i)
			}
		}
	}
	if isEntry && f.Stage == ir.StageCompute {
		if len(f.Params) > 0 {
			w.out.WriteString(", ")
		}
		w.out.WriteString("uint3 _kong_group_id : SV_GroupID, uint3 _kong_group_thread_id : SV_GroupThreadID, uint3 _kong_dispatch_thread_id : SV_DispatchThreadID, uint _kong_group_index : SV_GroupIndex")
	}
	w.out.WriteString(")")
	if isEntry && f.Stage == ir.StageFragment {
		w.out.WriteString(" : SV_TARGET0")
	}
	w.out.WriteString("\n{\n")
	w.indent = 1

	for i := range f.Code {
		if err := w.writeOp(&f.Code[i]); err != nil {
			return err
		}
	}

	w.out.WriteString("}\n\n")
	return nil
}

// writeOp intercepts the HLSL-specific opcodes and delegates the rest
// to the shared C-style writer.
func (w *writer) writeOp(op *ir.Op) error {
	if op.Kind == ir.OpCall {
		switch w.module.Names.String(op.Func) {
		case "sample":
			cstyle.Indent(&w.out, w.indent)
			fmt.Fprintf(&w.out, "%s _%d = _%d.Sample(_%d, _%d);\n",
				typeName(w.module, op.Result.Type.Type), op.Result.ID,
				op.Args[0].ID, op.Args[1].ID, op.Args[2].ID)
			return nil
		case "sample_lod":
			cstyle.Indent(&w.out, w.indent)
			fmt.Fprintf(&w.out, "%s _%d = _%d.SampleLevel(_%d, _%d, _%d);\n",
				typeName(w.module, op.Result.Type.Type), op.Result.ID,
				op.Args[0].ID, op.Args[1].ID, op.Args[2].ID, op.Args[3].ID)
			return nil
		case "group_id", "group_thread_id", "dispatch_thread_id", "group_index":
			cstyle.Indent(&w.out, w.indent)
			fmt.Fprintf(&w.out, "%s _%d = _kong_%s;\n",
				typeName(w.module, op.Result.Type.Type), op.Result.ID, w.module.Names.String(op.Func))
			return nil
		}

		// HLSL has no struct constructors; aggregate-initialize
		// instead.
		if typeID, isType := w.module.Types.LookupName(op.Func); isType {
			if t, _ := w.module.Types.Lookup(typeID); t.Kind == types.KindStruct {
				cstyle.Indent(&w.out, w.indent)
				fmt.Fprintf(&w.out, "%s _%d = {", typeName(w.module, typeID), op.Result.ID)
				for i, arg := range op.Args {
					if i > 0 {
						w.out.WriteString(", ")
					}
					fmt.Fprintf(&w.out, "_%d", arg.ID)
				}
				w.out.WriteString("};\n")
				return nil
			}
		}
	}
	return cstyle.Write(w.module, op, func(id types.ID) string {
		return typeName(w.module, id)
	}, &w.out, &w.indent)
}
