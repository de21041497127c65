// Package compiler wires the pipeline together: tokenize, parse,
// analyze, lower to opcodes, validate, and hand the result to a
// backend. A Compiler value owns the name pool, the type registry,
// and the function/global registries, so independent compilations
// just use independent Compiler values.
//
// A Compiler is not safe for concurrent use: the pipeline is
// strictly single-threaded and every phase mutates the shared
// registries.
package compiler

import (
	"fmt"

	"github.com/kong-shade/kongc/ast"
	"github.com/kong-shade/kongc/cpu"
	"github.com/kong-shade/kongc/emit"
	"github.com/kong-shade/kongc/glsl"
	"github.com/kong-shade/kongc/hlsl"
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/msl"
	"github.com/kong-shade/kongc/names"
	"github.com/kong-shade/kongc/parser"
	"github.com/kong-shade/kongc/sema"
	"github.com/kong-shade/kongc/spirv"
	"github.com/kong-shade/kongc/types"
	"github.com/kong-shade/kongc/wgsl"
)

// Target selects a backend.
type Target uint8

const (
	TargetHLSL Target = iota
	TargetMSL
	TargetGLSL
	TargetWGSL
	TargetCPU
	TargetSPIRV
)

// ParseTarget maps a CLI selector to a Target.
func ParseTarget(s string) (Target, error) {
	switch s {
	case "hlsl":
		return TargetHLSL, nil
	case "msl", "metal":
		return TargetMSL, nil
	case "glsl":
		return TargetGLSL, nil
	case "wgsl":
		return TargetWGSL, nil
	case "cpu", "c":
		return TargetCPU, nil
	case "spirv":
		return TargetSPIRV, nil
	default:
		return 0, fmt.Errorf("unknown target %q", s)
	}
}

// Compiler owns all state of one compilation.
type Compiler struct {
	Names  *names.Pool
	Types  *types.Registry
	Module *ir.Module

	decls []ast.Decl
}

// New creates a Compiler with the built-in types pre-registered.
func New() *Compiler {
	pool := names.NewPool()
	reg := types.NewRegistry(pool)
	return &Compiler{
		Names:  pool,
		Types:  reg,
		Module: ir.NewModule(pool, reg),
	}
}

// Compile runs the front half of the pipeline on one source file:
// tokenize, parse, analyze, lower, validate. Backends can then be
// invoked any number of times through Emit.
func (c *Compiler) Compile(file, source string) error {
	decls, err := parser.Parse(file, source)
	if err != nil {
		return err
	}
	c.decls = append(c.decls, decls...)

	if err := sema.Analyze(c.Module, file, decls); err != nil {
		return err
	}
	if err := emit.Module(c.Module, file); err != nil {
		return err
	}
	return ir.Validate(c.Module)
}

// Output is one generated artifact.
type Output struct {
	Filename string
	Data     []byte
}

// Emit runs one backend over every entry point, producing one
// artifact per entry, plus the embedded .c/.h pair for SPIR-V.
// Compute entries are skipped for the SPIR-V and GLSL targets.
func (c *Compiler) Emit(target Target) ([]Output, error) {
	entryPoints := c.Module.EntryPoints()
	if len(entryPoints) == 0 {
		return nil, fmt.Errorf("no entry points: mark functions with #[vertex], #[fragment], or #[compute]")
	}

	var outputs []Output
	for _, fid := range entryPoints {
		f := c.Module.Function(fid)
		entry := c.Names.String(f.Name)

		switch target {
		case TargetSPIRV:
			// Compute entries take the CPU path; the SPIR-V emitter
			// is vertex/fragment only.
			if f.Stage != ir.StageVertex && f.Stage != ir.StageFragment {
				continue
			}
			module, err := spirv.Compile(c.Module, fid, nil)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", entry, err)
			}
			outputs = append(outputs,
				Output{Filename: spirv.Filename(entry), Data: module},
				Output{Filename: "kong_" + entry + ".h", Data: []byte(spirv.EmitCHeader(entry))},
				Output{Filename: "kong_" + entry + ".c", Data: []byte(spirv.EmitCSource(entry, module))},
			)

		case TargetHLSL:
			text, err := hlsl.Compile(c.Module, fid, nil)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", entry, err)
			}
			outputs = append(outputs, Output{Filename: hlsl.Filename(entry), Data: []byte(text)})

		case TargetMSL:
			text, err := msl.Compile(c.Module, fid, nil)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", entry, err)
			}
			outputs = append(outputs, Output{Filename: msl.Filename(entry), Data: []byte(text)})

		case TargetGLSL:
			if f.Stage == ir.StageCompute {
				continue
			}
			text, err := glsl.Compile(c.Module, fid, nil)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", entry, err)
			}
			outputs = append(outputs, Output{Filename: glsl.Filename(entry), Data: []byte(text)})

		case TargetWGSL:
			text, err := wgsl.Compile(c.Module, fid, nil)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", entry, err)
			}
			outputs = append(outputs, Output{Filename: wgsl.Filename(entry), Data: []byte(text)})

		case TargetCPU:
			text, err := cpu.Compile(c.Module, fid, nil)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", entry, err)
			}
			outputs = append(outputs, Output{Filename: cpu.Filename(entry), Data: []byte(text)})
		}
	}
	return outputs, nil
}
