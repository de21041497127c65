// Copyright 2026 The Kong Shade Authors
// SPDX-License-Identifier: MIT

// Package msl generates Metal Shading Language source from lowered
// kong IR.
package msl

import (
	"fmt"
	"strings"

	"github.com/kong-shade/kongc/cstyle"
	"github.com/kong-shade/kongc/diag"
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// Options configures MSL code generation.
type Options struct {
	// LanguageVersion is embedded in the header comment; the
	// generated source targets MSL 2.x either way.
	LanguageVersion string
}

// DefaultOptions targets MSL 2.4.
func DefaultOptions() *Options {
	return &Options{LanguageVersion: "2.4"}
}

// Filename returns the output file name for an entry point.
func Filename(entry string) string {
	return "kong_" + entry + ".metal"
}

// Compile emits the MSL translation unit for one entry point.
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
	fmt.Fprintf(&w.out, "// MSL %s\n#include <metal_stdlib>\n\nusing namespace metal;\n\n", w.opts.LanguageVersion)

	if err := w.writeStructs(); err != nil {
		return err
	}

	for _, g := range w.module.Globals() {
		if g.Const == nil || !g.Const.Set {
			continue
		}
		fmt.Fprintf(&w.out, "constant %s _%d = %s; // %s\n\n",
			typeName(w.module, g.Type.Type), g.VarID, cstyle.ConstText(*g.Const), w.module.Names.String(g.Name))
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
	inputType, outputType := ioTypes(w.module, w.entry)

	for id := types.ID(0); int(id) < w.module.Types.Count(); id++ {
		t, _ := w.module.Types.Lookup(id)
		if t.BuiltIn || t.Kind != types.KindStruct || t.HasAttribute(w.module.Names.Intern("pipe")) {
			continue
		}
		fmt.Fprintf(&w.out, "struct %s\n{\n", w.module.Names.String(t.Name))
		for i, member := range t.Members {
			name := w.module.Names.String(member.Name)
			w.out.WriteByte('\t')
			fmt.Fprintf(&w.out, "%s %s", typeName(w.module, member.Type), name)
			switch {
			case id == inputType && w.entry.Stage == ir.StageVertex:
				fmt.Fprintf(&w.out, " [[attribute(%d)]]", i)
			case id == outputType && w.entry.Stage == ir.StageVertex && i == 0:
				w.out.WriteString(" [[position]]")
			case id == outputType && w.entry.Stage == ir.StageVertex:
				fmt.Fprintf(&w.out, " [[user(locn%d)]]", i)
			}
			w.out.WriteString(";\n")
		}
		w.out.WriteString("};\n\n")
	}
	return nil
}

// ioTypes returns the entry's input and output struct types, if any.
func ioTypes(m *ir.Module, entry *ir.Function) (input, output types.ID) {
	const none = types.ID(1<<32 - 1)
	input, output = none, none
	if len(entry.Params) == 1 {
		if t, ok := m.Types.Lookup(entry.Params[0].Type.Type); ok && t.Kind == types.KindStruct {
			input = entry.Params[0].Type.Type
		}
	}
	if t, ok := m.Types.Lookup(entry.Return.Type); ok && t.Kind == types.KindStruct {
		output = entry.Return.Type
	}
	return input, output
}

func (w *writer) writeFunction(f *ir.Function, isEntry bool) error {
	name := w.module.Names.String(f.Name)

	if isEntry {
		switch f.Stage {
		case ir.StageVertex:
			fmt.Fprintf(&w.out, "vertex %s %s(", typeName(w.module, f.Return.Type), name)
		case ir.StageFragment:
			fmt.Fprintf(&w.out, "fragment %s %s(", typeName(w.module, f.Return.Type), name)
		case ir.StageCompute:
			fmt.Fprintf(&w.out, "kernel void %s(", name)
		default:
			fmt.Fprintf(&w.out, "%s %s(", typeName(w.module, f.Return.Type), name)
		}
	} else {
		fmt.Fprintf(&w.out, "%s %s(", typeName(w.module, f.Return.Type), name)
	}

	first := true
	for i, p := range f.Params {
		if !first {
			w.out.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&w.out, "%s _%d", typeName(w.module, p.Type.Type), p.VarID)
		if isEntry && i == 0 && (f.Stage == ir.StageVertex || f.Stage == ir.StageFragment) {
			if t, ok := w.module.Types.Lookup(p.Type.Type); ok && t.Kind == types.KindStruct {
				w.out.WriteString(" [[stage_in]]")
			} else {
				fmt.Fprintf(&w.out, " [[user(locn%d)]]", i)
			}
		}
	}

	// Resource globals travel as entry-point arguments with explicit
	// binding indices; helpers receive nothing because only entry
	// points exist at pipeline creation time.
	if isEntry {
		if err := w.writeResourceParams(&first); err != nil {
			return err
		}
		if f.Stage == ir.StageCompute {
			if !first {
				w.out.WriteString(", ")
			}
			first = false
			w.out.WriteString("uint3 _kong_group_id [[threadgroup_position_in_grid]], " +
				"uint3 _kong_group_thread_id [[thread_position_in_threadgroup]], " +
				"uint3 _kong_dispatch_thread_id [[thread_position_in_grid]], " +
				"uint _kong_group_index [[thread_index_in_threadgroup]]")
		}
	}

	w.out.WriteString(")\n{\n")
	w.indent = 1

	for i := range f.Code {
		if err := w.writeOp(&f.Code[i]); err != nil {
			return err
		}
	}
	w.out.WriteString("}\n\n")
	return nil
}

func (w *writer) writeResourceParams(first *bool) error {
	index := 0
	for _, set := range w.module.Sets() {
		for _, gid := range set.Globals {
			g := w.module.Global(gid)
			t, _ := w.module.Types.Lookup(g.Type.Type)
			if !*first {
				w.out.WriteString(", ")
			}
			*first = false
			switch t.Kind {
			case types.KindTex2D:
				if g.Writable {
					fmt.Fprintf(&w.out, "texture2d<float, access::write> _%d [[texture(%d)]]", g.VarID, index)
				} else {
					fmt.Fprintf(&w.out, "texture2d<float> _%d [[texture(%d)]]", g.VarID, index)
				}
			case types.KindTex2DArray:
				fmt.Fprintf(&w.out, "texture2d_array<float> _%d [[texture(%d)]]", g.VarID, index)
			case types.KindTexCube:
				fmt.Fprintf(&w.out, "texturecube<float> _%d [[texture(%d)]]", g.VarID, index)
			case types.KindSampler:
				fmt.Fprintf(&w.out, "sampler _%d [[sampler(%d)]]", g.VarID, index)
			case types.KindStruct:
				fmt.Fprintf(&w.out, "constant %s& _%d [[buffer(%d)]]", typeName(w.module, g.Type.Type), g.VarID, index)
			default:
				return diag.New("", diag.Pos{}, "global %s cannot be bound from MSL", w.module.Names.String(g.Name))
			}
			index++
		}
	}
	return nil
}

// writeOp intercepts the MSL-specific opcodes and delegates the rest
// to the shared C-style writer.
func (w *writer) writeOp(op *ir.Op) error {
	if op.Kind == ir.OpCall {
		switch w.module.Names.String(op.Func) {
		case "sample":
			cstyle.Indent(&w.out, w.indent)
			fmt.Fprintf(&w.out, "%s _%d = _%d.sample(_%d, _%d);\n",
				typeName(w.module, op.Result.Type.Type), op.Result.ID,
				op.Args[0].ID, op.Args[1].ID, op.Args[2].ID)
			return nil
		case "sample_lod":
			cstyle.Indent(&w.out, w.indent)
			fmt.Fprintf(&w.out, "%s _%d = _%d.sample(_%d, _%d, level(_%d));\n",
				typeName(w.module, op.Result.Type.Type), op.Result.ID,
				op.Args[0].ID, op.Args[1].ID, op.Args[2].ID, op.Args[3].ID)
			return nil
		case "group_id", "group_thread_id", "dispatch_thread_id", "group_index":
			cstyle.Indent(&w.out, w.indent)
			fmt.Fprintf(&w.out, "%s _%d = _kong_%s;\n",
				typeName(w.module, op.Result.Type.Type), op.Result.ID, w.module.Names.String(op.Func))
			return nil
		}

		// Struct constructors aggregate-initialize; vector
		// constructors keep call syntax, which C++ accepts.
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
