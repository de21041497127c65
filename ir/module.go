package ir

import (
	"github.com/kong-shade/kongc/ast"
	"github.com/kong-shade/kongc/names"
	"github.com/kong-shade/kongc/types"
)

// FunctionID indexes the module's function registry.
type FunctionID uint32

// GlobalID indexes the module's global registry.
type GlobalID uint32

// Attribute is a resolved #[...] annotation: an interned name plus
// zero or more parameters, each either numeric or an interned
// identifier.
type Attribute struct {
	Name   names.ID
	Params []AttrParam
}

// AttrParam is one resolved attribute argument.
type AttrParam struct {
	Ident  names.ID
	Number float64
	IsNum  bool
}

// AttributeList is the attribute set attached to a type, function, or
// global.
type AttributeList []Attribute

// Find returns the attribute with the given name, if present.
func (l AttributeList) Find(name names.ID) (Attribute, bool) {
	for _, a := range l {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Has reports whether an attribute with the given name is present.
func (l AttributeList) Has(name names.ID) bool {
	_, ok := l.Find(name)
	return ok
}

// Stage is the pipeline stage role of an entry-point function.
type Stage uint8

const (
	StageNone Stage = iota
	StageVertex
	StageFragment
	StageCompute
	StageMesh
	StageAmplification
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	case StageMesh:
		return "mesh"
	case StageAmplification:
		return "amplification"
	default:
		return "none"
	}
}

// Param is one function parameter after analysis.
type Param struct {
	Name  names.ID
	Type  types.Ref
	VarID VarID
}

// Function is one function in the registry. Built-in intrinsics have
// a nil Body; user functions get their Body from the parser and their
// Code from the IR emitter.
type Function struct {
	Name       names.ID
	Params     []Param
	Return     types.Ref
	Attributes AttributeList
	Stage      Stage
	Threads    [3]uint32 // compute workgroup size from #[threads(x,y,z)]
	Body       *ast.Block
	Code       []Op
	Sets       []*DescriptorSet // descriptor-set group, in reference order
}

// Global is one module-scope global after analysis. Resource globals
// (constant buffers, textures, samplers) have no Const value;
// const-globals carry their initializer.
type Global struct {
	Name       names.ID
	Type       types.Ref
	Attributes AttributeList
	VarID      VarID
	Const      *types.Const // nil for resource globals
	Set        names.ID     // descriptor set this global belongs to
	Writable   bool
}

// DescriptorSet is a named ordered bundle of globals bound as a unit.
type DescriptorSet struct {
	Name     names.ID
	Globals  []GlobalID
	Writable []bool
}

// Module is the symbol environment produced by the analyzer: the
// function and global registries plus the derived descriptor sets.
// Together with the names pool and type registry it forms the whole
// input the backends consume. A Module is not safe for concurrent
// use; the compilation pipeline is strictly single-threaded.
type Module struct {
	Names *names.Pool
	Types *types.Registry

	functions  []Function
	funcByName map[names.ID]FunctionID
	globals    []Global
	globByName map[names.ID]GlobalID
	sets       []*DescriptorSet
	setByName  map[names.ID]*DescriptorSet
	pipes      []Pipe
	nextVarID  VarID
}

// NewModule creates an empty module sharing the given name pool and
// type registry.
func NewModule(pool *names.Pool, reg *types.Registry) *Module {
	return &Module{
		Names:      pool,
		Types:      reg,
		funcByName: make(map[names.ID]FunctionID, 16),
		globByName: make(map[names.ID]GlobalID, 16),
		setByName:  make(map[names.ID]*DescriptorSet, 4),
		nextVarID:  1,
	}
}

// AllocVarID returns a fresh SSA variable id. Ids are monotonic and
// shared across functions, labels, and globals so no two entities in
// one compilation collide.
func (m *Module) AllocVarID() VarID {
	id := m.nextVarID
	m.nextVarID++
	return id
}

// AddFunction registers a function and returns its id. The latest
// registration wins on name collision, matching lexical shadowing of
// intrinsics by user code.
func (m *Module) AddFunction(f Function) FunctionID {
	id := FunctionID(len(m.functions))
	m.functions = append(m.functions, f)
	m.funcByName[f.Name] = id
	return id
}

// Function returns a pointer into the registry; the analyzer and
// emitter mutate functions in place.
func (m *Module) Function(id FunctionID) *Function {
	return &m.functions[id]
}

// Functions returns all registered functions.
func (m *Module) Functions() []Function {
	return m.functions
}

// FunctionByName resolves a function name.
func (m *Module) FunctionByName(name names.ID) (FunctionID, bool) {
	id, ok := m.funcByName[name]
	return id, ok
}

// AddGlobal registers a global and returns its id.
func (m *Module) AddGlobal(g Global) GlobalID {
	id := GlobalID(len(m.globals))
	m.globals = append(m.globals, g)
	m.globByName[g.Name] = id
	return id
}

// Global returns a pointer into the registry.
func (m *Module) Global(id GlobalID) *Global {
	return &m.globals[id]
}

// Globals returns all registered globals.
func (m *Module) Globals() []Global {
	return m.globals
}

// GlobalByName resolves a global name.
func (m *Module) GlobalByName(name names.ID) (GlobalID, bool) {
	id, ok := m.globByName[name]
	return id, ok
}

// Set returns the descriptor set with the given name, creating it on
// first use. Sets keep their creation order for binding assignment.
func (m *Module) Set(name names.ID) *DescriptorSet {
	if s, ok := m.setByName[name]; ok {
		return s
	}
	s := &DescriptorSet{Name: name}
	m.sets = append(m.sets, s)
	m.setByName[name] = s
	return s
}

// Sets returns all descriptor sets in creation order.
func (m *Module) Sets() []*DescriptorSet {
	return m.sets
}

// EntryPoints returns the functions carrying a stage attribute.
func (m *Module) EntryPoints() []FunctionID {
	var out []FunctionID
	for i := range m.functions {
		if m.functions[i].Stage != StageNone {
			out = append(out, FunctionID(i))
		}
	}
	return out
}
