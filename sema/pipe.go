package sema

import (
	"github.com/kong-shade/kongc/ast"
	"github.com/kong-shade/kongc/ir"
	"github.com/kong-shade/kongc/types"
)

// analyzePipe validates a #[pipe] struct and records it as an
// ir.Pipe: stage members must reference functions carrying the
// matching stage attribute, depth_write takes a bool literal, and the
// blend/depth render-state members take enum-global identifiers.
func (a *Analyzer) analyzePipe(s *ast.StructDecl) error {
	pipe := ir.Pipe{Name: s.NameID}

	for _, m := range s.Members {
		switch m.Name {
		case "vertex", "fragment", "mesh", "amplification", "compute":
			fid, err := a.pipeStage(s, m)
			if err != nil {
				return err
			}
			switch m.Name {
			case "vertex":
				pipe.Vertex, pipe.HasVertex = fid, true
			case "fragment":
				pipe.Fragment, pipe.HasFragment = fid, true
			case "mesh":
				pipe.Mesh, pipe.HasMesh = fid, true
			case "amplification":
				pipe.Amplification, pipe.HasAmp = fid, true
			case "compute":
				pipe.Compute, pipe.HasCompute = fid, true
			}

		case "depth_write":
			lit, ok := m.Default.(*ast.BooleanLit)
			if !ok {
				return a.errorf(m.Span, "depth_write takes a bool literal")
			}
			pipe.DepthWrite = lit.Value

		case "depth_mode":
			if err := a.pipeBlend(m, &pipe.DepthMode); err != nil {
				return err
			}
		case "blend_source":
			if err := a.pipeBlend(m, &pipe.BlendSource); err != nil {
				return err
			}
		case "blend_destination":
			if err := a.pipeBlend(m, &pipe.BlendDestination); err != nil {
				return err
			}
		case "blend_operation":
			if err := a.pipeBlend(m, &pipe.BlendOperation); err != nil {
				return err
			}
		case "alpha_blend_source":
			if err := a.pipeBlend(m, &pipe.AlphaBlendSource); err != nil {
				return err
			}
		case "alpha_blend_destination":
			if err := a.pipeBlend(m, &pipe.AlphaBlendDestination); err != nil {
				return err
			}
		case "alpha_blend_operation":
			if err := a.pipeBlend(m, &pipe.AlphaBlendOperation); err != nil {
				return err
			}

		default:
			return a.errorf(m.Span, "unknown pipe member %q", m.Name)
		}
	}

	if !pipe.HasVertex && !pipe.HasMesh && !pipe.HasCompute {
		return a.errorf(s.Span, "pipe %q binds no vertex, mesh, or compute stage", s.Name)
	}
	if pipe.HasVertex && !pipe.HasFragment {
		return a.errorf(s.Span, "pipe %q has a vertex stage but no fragment stage", s.Name)
	}

	a.module.AddPipe(pipe)
	return nil
}

func (a *Analyzer) pipeStage(s *ast.StructDecl, m *ast.StructMember) (ir.FunctionID, error) {
	ident, ok := m.Default.(*ast.Ident)
	if !ok {
		return 0, a.errorf(m.Span, "pipe member %q must name a function", m.Name)
	}
	fid, ok := a.module.FunctionByName(a.module.Names.Intern(ident.Name))
	if !ok {
		return 0, a.errorf(m.Span, "unknown function %q in pipe %q", ident.Name, s.Name)
	}
	fn := a.module.Function(fid)
	if fn.Stage.String() != m.Name {
		return 0, a.errorf(m.Span, "function %q is not marked #[%s]", ident.Name, m.Name)
	}
	return fid, nil
}

// pipeBlend resolves a render-state member to the const-global it
// names, recording both name and value.
func (a *Analyzer) pipeBlend(m *ast.StructMember, out *ir.BlendValue) error {
	ident, ok := m.Default.(*ast.Ident)
	if !ok {
		return a.errorf(m.Span, "pipe member %q takes an enum-global identifier", m.Name)
	}
	nameID := a.module.Names.Intern(ident.Name)
	gid, ok := a.module.GlobalByName(nameID)
	if !ok {
		return a.errorf(m.Span, "unknown global %q", ident.Name)
	}
	g := a.module.Global(gid)
	if g.Const == nil || !g.Const.Set {
		return a.errorf(m.Span, "global %q is not a constant", ident.Name)
	}

	var value int64
	switch g.Const.Kind {
	case types.KindInt:
		value = g.Const.Int
	case types.KindUint:
		value = int64(g.Const.Uint)
	case types.KindFloat:
		value = int64(g.Const.Float)
	default:
		return a.errorf(m.Span, "global %q cannot be a render-state value", ident.Name)
	}

	*out = ir.BlendValue{Name: nameID, Value: value, Set: true}
	return nil
}
