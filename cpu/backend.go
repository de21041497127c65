// Copyright 2026 The Kong Shade Authors
// SPDX-License-Identifier: MIT

// Package cpu generates a plain-C transpile of lowered kong IR, the
// fallback path for running compute work without a GPU.
package cpu

import (
	"fmt"
	"strings"

	"github.com/kong-shade/kongc/cstyle"
	"github.com/kong-shade/kongc/diag"
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// Options configures the C transpile.
type Options struct{}

// DefaultOptions returns the defaults.
func DefaultOptions() *Options {
	return &Options{}
}

// Filename returns the output file name for an entry point.
func Filename(entry string) string {
	return "kong_" + entry + ".c"
}

// prelude includes the cpucompute header, which supplies the vector
// types and helpers the generated C leans on. Binary opcodes on vector
// and matrix operands become calls to those helpers; negation and the
// compound-assignment opcodes still use the plain C operators.
const prelude = `#include <stdbool.h>
#include <stdint.h>

#include <kong/cpucompute.h>

`

// Compile emits the C translation unit for one entry point. Compute
// entries additionally get a dispatch wrapper iterating workgroups,
// so the host can run the kernel with plain function calls.
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
	w.out.WriteString(prelude)

	for id := types.ID(0); int(id) < w.module.Types.Count(); id++ {
		t, _ := w.module.Types.Lookup(id)
		if t.BuiltIn || t.Kind != types.KindStruct || t.HasAttribute(w.module.Names.Intern("pipe")) {
			continue
		}
		name := w.module.Names.String(t.Name)
		fmt.Fprintf(&w.out, "typedef struct %s {\n", name)
		for _, member := range t.Members {
			memberName := w.module.Names.String(member.Name)
			if member.ArraySize > 0 && member.ArraySize != types.Unbounded {
				fmt.Fprintf(&w.out, "\t%s %s[%d];\n", typeName(w.module, member.Type), memberName, member.ArraySize)
			} else {
				fmt.Fprintf(&w.out, "\t%s %s;\n", typeName(w.module, member.Type), memberName)
			}
		}
		fmt.Fprintf(&w.out, "} %s;\n\n", name)
	}

	for _, g := range w.module.Globals() {
		if g.Const == nil || !g.Const.Set {
			continue
		}
		fmt.Fprintf(&w.out, "static const %s _%d = %s; // %s\n\n",
			typeName(w.module, g.Type.Type), g.VarID, cstyle.ConstText(*g.Const), w.module.Names.String(g.Name))
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

	if w.entry.Stage == ir.StageCompute {
		w.writeDispatchWrapper()
	}
	return nil
}

func (w *writer) writeFunction(f *ir.Function) error {
	name := w.module.Names.String(f.Name)
	isComputeEntry := f == w.entry && f.Stage == ir.StageCompute

	if isComputeEntry {
		fmt.Fprintf(&w.out, "static void %s_thread(kong_uint3 _kong_group_id, kong_uint3 _kong_group_thread_id, kong_uint3 _kong_dispatch_thread_id, uint32_t _kong_group_index)", name)
	} else {
		fmt.Fprintf(&w.out, "%s %s(", typeName(w.module, f.Return.Type), name)
		for i, p := range f.Params {
			if i > 0 {
				w.out.WriteString(", ")
			}
			fmt.Fprintf(&w.out, "%s _%d", typeName(w.module, p.Type.Type), p.VarID)
		}
		if len(f.Params) == 0 {
			w.out.WriteString("void")
		}
		w.out.WriteString(")")
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

// writeDispatchWrapper emits the workgroup iteration shell the host
// calls in place of a GPU dispatch.
func (w *writer) writeDispatchWrapper() {
	name := w.module.Names.String(w.entry.Name)
	t := w.entry.Threads

	fmt.Fprintf(&w.out, "void %s(uint32_t workgroup_count_x, uint32_t workgroup_count_y, uint32_t workgroup_count_z) {\n", name)
	fmt.Fprintf(&w.out, "\tfor (uint32_t gz = 0; gz < workgroup_count_z; ++gz) {\n")
	fmt.Fprintf(&w.out, "\tfor (uint32_t gy = 0; gy < workgroup_count_y; ++gy) {\n")
	fmt.Fprintf(&w.out, "\tfor (uint32_t gx = 0; gx < workgroup_count_x; ++gx) {\n")
	fmt.Fprintf(&w.out, "\t\tfor (uint32_t tz = 0; tz < %d; ++tz) {\n", t[2])
	fmt.Fprintf(&w.out, "\t\tfor (uint32_t ty = 0; ty < %d; ++ty) {\n", t[1])
	fmt.Fprintf(&w.out, "\t\tfor (uint32_t tx = 0; tx < %d; ++tx) {\n", t[0])
	fmt.Fprintf(&w.out, "\t\t\tkong_uint3 group_id = {gx, gy, gz};\n")
	fmt.Fprintf(&w.out, "\t\t\tkong_uint3 thread_id = {tx, ty, tz};\n")
	fmt.Fprintf(&w.out, "\t\t\tkong_uint3 dispatch_id = {gx * %d + tx, gy * %d + ty, gz * %d + tz};\n", t[0], t[1], t[2])
	fmt.Fprintf(&w.out, "\t\t\tuint32_t group_index = tz * %d + ty * %d + tx;\n", t[0]*t[1], t[0])
	fmt.Fprintf(&w.out, "\t\t\t%s_thread(group_id, thread_id, dispatch_id, group_index);\n", name)
	w.out.WriteString("\t\t}\n\t\t}\n\t\t}\n\t}\n\t}\n\t}\n}\n")
}

// writeOp intercepts the C spellings for vector operations and
// intrinsics; scalar opcodes pass through the shared writer.
func (w *writer) writeOp(op *ir.Op) error {
	if op.Kind == ir.OpCall {
		switch w.module.Names.String(op.Func) {
		case "group_id":
			cstyle.Indent(&w.out, w.indent)
			fmt.Fprintf(&w.out, "%s _%d = _kong_group_id;\n", typeName(w.module, op.Result.Type.Type), op.Result.ID)
			return nil
		case "group_thread_id":
			cstyle.Indent(&w.out, w.indent)
			fmt.Fprintf(&w.out, "%s _%d = _kong_group_thread_id;\n", typeName(w.module, op.Result.Type.Type), op.Result.ID)
			return nil
		case "dispatch_thread_id":
			cstyle.Indent(&w.out, w.indent)
			fmt.Fprintf(&w.out, "%s _%d = _kong_dispatch_thread_id;\n", typeName(w.module, op.Result.Type.Type), op.Result.ID)
			return nil
		case "group_index":
			cstyle.Indent(&w.out, w.indent)
			fmt.Fprintf(&w.out, "uint32_t _%d = _kong_group_index;\n", op.Result.ID)
			return nil
		case "sample", "sample_lod":
			return diag.New("", diag.Pos{}, "texture sampling is not available on the CPU path")
		}

		// Constructors become the kong_make_* helpers from the
		// cpucompute header.
		if typeID, isType := w.module.Types.LookupName(op.Func); isType {
			if t, _ := w.module.Types.Lookup(typeID); t.Kind != types.KindStruct {
				cstyle.Indent(&w.out, w.indent)
				fmt.Fprintf(&w.out, "%s _%d = kong_make_%s(", typeName(w.module, op.Result.Type.Type), op.Result.ID, t.Kind)
				for i, arg := range op.Args {
					if i > 0 {
						w.out.WriteString(", ")
					}
					fmt.Fprintf(&w.out, "_%d", arg.ID)
				}
				w.out.WriteString(");\n")
				return nil
			}
			// Struct construction aggregate-initializes.
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

	// Vector arithmetic cannot use infix operators in C.
	if op.Kind.IsBinary() {
		if t, ok := w.module.Types.Lookup(op.Left.Type.Type); ok && (t.Kind.IsVector() || t.Kind == types.KindFloat3x3 || t.Kind == types.KindFloat4x4) {
			cstyle.Indent(&w.out, w.indent)
			fmt.Fprintf(&w.out, "%s _%d = kong_%s_%s(_%d, _%d);\n",
				typeName(w.module, op.Result.Type.Type), op.Result.ID,
				t.Kind, opHelper(op.Kind), op.Left.ID, op.Right.ID)
			return nil
		}
	}

	return cstyle.Write(w.module, op, func(id types.ID) string {
		return typeName(w.module, id)
	}, &w.out, &w.indent)
}

func opHelper(k ir.OpKind) string {
	switch k {
	case ir.OpAdd:
		return "add"
	case ir.OpSub:
		return "sub"
	case ir.OpMul:
		return "mul"
	case ir.OpDiv:
		return "div"
	default:
		return "op"
	}
}
