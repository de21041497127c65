package ir

import "github.com/kong-shade/kongc/names"

// BlendValue is a resolved render-state knob on a pipe: the numeric
// value of the enum-global the pipe member referenced, plus that
// global's name for diagnostics and host-integration emission.
type BlendValue struct {
	Name  names.ID
	Value int64
	Set   bool
}

// Pipe is an analyzed pipeline-descriptor struct: the stage bindings
// and render-state knobs a #[pipe] struct declares.
type Pipe struct {
	Name names.ID

	// Stage bindings; when the pipe does not bind a stage, its field
	// keeps the zero FunctionID and the matching Has flag is false.
	Vertex        FunctionID
	Fragment      FunctionID
	Mesh          FunctionID
	Amplification FunctionID
	Compute       FunctionID
	HasVertex     bool
	HasFragment   bool
	HasMesh       bool
	HasAmp        bool
	HasCompute    bool

	DepthWrite bool

	DepthMode             BlendValue
	BlendSource           BlendValue
	BlendDestination      BlendValue
	BlendOperation        BlendValue
	AlphaBlendSource      BlendValue
	AlphaBlendDestination BlendValue
	AlphaBlendOperation   BlendValue
}

// AddPipe registers an analyzed pipe.
func (m *Module) AddPipe(p Pipe) {
	m.pipes = append(m.pipes, p)
}

// Pipes returns the analyzed pipes in declaration order.
func (m *Module) Pipes() []Pipe {
	return m.pipes
}
