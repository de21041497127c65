// Copyright 2026 The Kong Shade Authors
// SPDX-License-Identifier: MIT

// Package glsl generates GLSL shader source from lowered kong IR.
package glsl

import (
	"fmt"
	"strings"

	"github.com/kong-shade/kongc/cstyle"
	"github.com/kong-shade/kongc/diag"
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// Options configures GLSL code generation.
type Options struct {
	// Version is the #version directive; 450 matches the Vulkan-era
	// default the other backends assume.
	Version int
}

// DefaultOptions targets GLSL 450.
func DefaultOptions() *Options {
	return &Options{Version: 450}
}

// Filename returns the output file name for an entry point.
func Filename(entry string) string {
	return "kong_" + entry + ".glsl"
}

// Compile emits the GLSL translation unit for one entry point. The
// entry function itself is emitted under its kong name; a main()
// wrapper loads the location-qualified in-variables, calls it, and
// scatters the result into gl_Position and the out-variables.
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
	if w.entry.Stage == ir.StageCompute {
		return diag.New("", diag.Pos{}, "compute shaders target the CPU path, not GLSL")
	}
	fmt.Fprintf(&w.out, "#version %d\n\n", w.opts.Version)

	if err := w.writeStructs(); err != nil {
		return err
	}
	for _, g := range w.module.Globals() {
		if g.Const == nil || !g.Const.Set {
			continue
		}
		fmt.Fprintf(&w.out, "const %s _%d = %s;\n\n",
			typeName(w.module, g.Type.Type), g.VarID, cstyle.ConstText(*g.Const))
	}
	if err := w.writeResources(); err != nil {
		return err
	}
	if err := w.writeStageIO(); err != nil {
		return err
	}

	for i := range w.module.Functions() {
		f := w.module.Function(ir.FunctionID(i))
		if f.Body == nil || f == w.entry {
			continue
		}
		if err := w.writeFunction(f); err != nil {
			return err
		}
	}
	if err := w.writeFunction(w.entry); err != nil {
		return err
	}
	return w.writeMain()
}

func (w *writer) writeStructs() error {
	for id := types.ID(0); int(id) < w.module.Types.Count(); id++ {
		t, _ := w.module.Types.Lookup(id)
		if t.BuiltIn || t.Kind != types.KindStruct || t.HasAttribute(w.module.Names.Intern("pipe")) {
			continue
		}
		fmt.Fprintf(&w.out, "struct %s\n{\n", w.module.Names.String(t.Name))
		for _, member := range t.Members {
			name := w.module.Names.String(member.Name)
			if member.ArraySize > 0 && member.ArraySize != types.Unbounded {
				fmt.Fprintf(&w.out, "\t%s %s[%d];\n", typeName(w.module, member.Type), name, member.ArraySize)
			} else {
				fmt.Fprintf(&w.out, "\t%s %s;\n", typeName(w.module, member.Type), name)
			}
		}
		w.out.WriteString("};\n\n")
	}
	return nil
}

// writeResources declares samplers and uniform blocks with a single
// binding counter, the Vulkan-GLSL policy.
func (w *writer) writeResources() error {
	binding := 0
	for _, set := range w.module.Sets() {
		for _, gid := range set.Globals {
			g := w.module.Global(gid)
			t, _ := w.module.Types.Lookup(g.Type.Type)

			switch t.Kind {
			case types.KindTex2D:
				fmt.Fprintf(&w.out, "layout(binding = %d) uniform sampler2D _%d;\n\n", binding, g.VarID)
			case types.KindTex2DArray:
				fmt.Fprintf(&w.out, "layout(binding = %d) uniform sampler2DArray _%d;\n\n", binding, g.VarID)
			case types.KindTexCube:
				fmt.Fprintf(&w.out, "layout(binding = %d) uniform samplerCube _%d;\n\n", binding, g.VarID)
			case types.KindSampler:
				// GLSL fuses texture and sampler; the standalone
				// sampler contributes only its binding slot.
			case types.KindStruct:
				fmt.Fprintf(&w.out, "layout(binding = %d, std140) uniform %s_block\n{\n\t%s _%d;\n};\n\n",
					binding, w.module.Names.String(g.Name), typeName(w.module, g.Type.Type), g.VarID)
			default:
				return diag.New("", diag.Pos{}, "global %s cannot be bound from GLSL", w.module.Names.String(g.Name))
			}
			binding++
		}
	}
	return nil
}

// writeStageIO declares the location-qualified in/out variables the
// main() wrapper shuttles data through.
func (w *writer) writeStageIO() error {
	switch w.entry.Stage {
	case ir.StageVertex:
		for location, member := range w.inputMembers() {
			fmt.Fprintf(&w.out, "layout(location = %d) in %s _kong_in_%s;\n",
				location, typeName(w.module, member.Type), w.module.Names.String(member.Name))
		}
		for location, member := range w.outputMembers() {
			if location == 0 {
				continue // gl_Position
			}
			fmt.Fprintf(&w.out, "layout(location = %d) out %s _kong_out_%s;\n",
				location-1, typeName(w.module, member.Type), w.module.Names.String(member.Name))
		}
		w.out.WriteString("\n")
	case ir.StageFragment:
		// Varying locations line up with the vertex stage's outputs,
		// which skip the position member.
		for i, member := range w.inputMembers() {
			location := i
			if w.inputHasPosition() {
				if i == 0 {
					continue
				}
				location = i - 1
			}
			fmt.Fprintf(&w.out, "layout(location = %d) in %s _kong_in_%s;\n",
				location, typeName(w.module, member.Type), w.module.Names.String(member.Name))
		}
		w.out.WriteString("layout(location = 0) out vec4 _kong_frag_color;\n\n")
	}
	return nil
}

// inputMembers lists the entry input struct's members, or nil when
// the entry takes scalars.
func (w *writer) inputMembers() []types.Member {
	if len(w.entry.Params) != 1 {
		return nil
	}
	t, ok := w.module.Types.Lookup(w.entry.Params[0].Type.Type)
	if !ok || t.Kind != types.KindStruct {
		return nil
	}
	return t.Members
}

func (w *writer) outputMembers() []types.Member {
	t, ok := w.module.Types.Lookup(w.entry.Return.Type)
	if !ok || t.Kind != types.KindStruct {
		return nil
	}
	return t.Members
}

// inputHasPosition reports whether the fragment input struct's first
// member is the interpolated position, which maps to gl_FragCoord
// rather than a user varying.
func (w *writer) inputHasPosition() bool {
	members := w.inputMembers()
	if len(members) == 0 {
		return false
	}
	t, _ := w.module.Types.Lookup(members[0].Type)
	return t.Kind == types.KindFloat4
}

func (w *writer) writeFunction(f *ir.Function) error {
	name := w.module.Names.String(f.Name)

	fmt.Fprintf(&w.out, "%s %s(", typeName(w.module, f.Return.Type), name)
	for i, p := range f.Params {
		if i > 0 {
			w.out.WriteString(", ")
		}
		fmt.Fprintf(&w.out, "%s _%d", typeName(w.module, p.Type.Type), p.VarID)
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

// writeMain emits the stage glue wrapper.
func (w *writer) writeMain() error {
	name := w.module.Names.String(w.entry.Name)

	w.out.WriteString("void main()\n{\n")
	switch w.entry.Stage {
	case ir.StageVertex:
		input := typeName(w.module, w.entry.Params[0].Type.Type)
		fmt.Fprintf(&w.out, "\t%s kong_in;\n", input)
		for _, member := range w.inputMembers() {
			memberName := w.module.Names.String(member.Name)
			fmt.Fprintf(&w.out, "\tkong_in.%s = _kong_in_%s;\n", memberName, memberName)
		}
		output := typeName(w.module, w.entry.Return.Type)
		fmt.Fprintf(&w.out, "\t%s kong_out = %s(kong_in);\n", output, name)
		for i, member := range w.outputMembers() {
			memberName := w.module.Names.String(member.Name)
			if i == 0 {
				fmt.Fprintf(&w.out, "\tgl_Position = kong_out.%s;\n", memberName)
			} else {
				fmt.Fprintf(&w.out, "\t_kong_out_%s = kong_out.%s;\n", memberName, memberName)
			}
		}

	case ir.StageFragment:
		if members := w.inputMembers(); members != nil {
			input := typeName(w.module, w.entry.Params[0].Type.Type)
			fmt.Fprintf(&w.out, "\t%s kong_in;\n", input)
			for i, member := range members {
				memberName := w.module.Names.String(member.Name)
				if i == 0 && w.inputHasPosition() {
					fmt.Fprintf(&w.out, "\tkong_in.%s = gl_FragCoord;\n", memberName)
				} else {
					fmt.Fprintf(&w.out, "\tkong_in.%s = _kong_in_%s;\n", memberName, memberName)
				}
			}
			fmt.Fprintf(&w.out, "\t_kong_frag_color = %s(kong_in);\n", name)
		} else {
			w.out.WriteString("\t// fragment entries without a struct input read no varyings\n")
			fmt.Fprintf(&w.out, "\t_kong_frag_color = %s(vec4(gl_FragCoord));\n", name)
		}

	default:
		fmt.Fprintf(&w.out, "\t%s();\n", name)
	}
	w.out.WriteString("}\n")
	return nil
}

// writeOp intercepts the GLSL spellings and delegates the rest to the
// shared C-style writer.
func (w *writer) writeOp(op *ir.Op) error {
	if op.Kind == ir.OpCall {
		switch w.module.Names.String(op.Func) {
		case "sample":
			cstyle.Indent(&w.out, w.indent)
			fmt.Fprintf(&w.out, "%s _%d = texture(_%d, _%d);\n",
				typeName(w.module, op.Result.Type.Type), op.Result.ID, op.Args[0].ID, op.Args[2].ID)
			return nil
		case "sample_lod":
			cstyle.Indent(&w.out, w.indent)
			fmt.Fprintf(&w.out, "%s _%d = textureLod(_%d, _%d, _%d);\n",
				typeName(w.module, op.Result.Type.Type), op.Result.ID, op.Args[0].ID, op.Args[2].ID, op.Args[3].ID)
			return nil
		}

		// Constructor calls carry kong type names; respell them.
		if typeID, isType := w.module.Types.LookupName(op.Func); isType {
			cstyle.Indent(&w.out, w.indent)
			fmt.Fprintf(&w.out, "%s _%d = %s(", typeName(w.module, op.Result.Type.Type), op.Result.ID, typeName(w.module, typeID))
			for i, arg := range op.Args {
				if i > 0 {
					w.out.WriteString(", ")
				}
				fmt.Fprintf(&w.out, "_%d", arg.ID)
			}
			w.out.WriteString(");\n")
			return nil
		}
	}
	return cstyle.Write(w.module, op, func(id types.ID) string {
		return typeName(w.module, id)
	}, &w.out, &w.indent)
}
