package ir

import (
	"testing"

	"github.com/kong-shade/kongc/ast"
	"github.com/kong-shade/kongc/names"
	"github.com/kong-shade/kongc/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModule() *Module {
	pool := names.NewPool()
	return NewModule(pool, types.NewRegistry(pool))
}

func floatRef(m *Module) types.Ref {
	return types.Ref{Type: m.Types.Builtin(types.KindFloat), Resolved: true}
}

func TestVarIDsMonotonic(t *testing.T) {
	m := newTestModule()

	a := m.AllocVarID()
	b := m.AllocVarID()
	require.Equal(t, VarID(1), a)
	require.Equal(t, VarID(2), b)
}

func TestFunctionRegistry(t *testing.T) {
	m := newTestModule()
	name := m.Names.Intern("main")

	id := m.AddFunction(Function{Name: name, Stage: StageVertex})
	got, ok := m.FunctionByName(name)
	require.True(t, ok)
	assert.Equal(t, id, got)
	assert.Equal(t, []FunctionID{id}, m.EntryPoints())
}

func TestGlobalRegistryAndSets(t *testing.T) {
	m := newTestModule()
	setName := m.Names.Intern("lights")

	set := m.Set(setName)
	gid := m.AddGlobal(Global{
		Name:  m.Names.Intern("lightData"),
		Type:  floatRef(m),
		VarID: m.AllocVarID(),
		Set:   setName,
	})
	set.Globals = append(set.Globals, gid)
	set.Writable = append(set.Writable, false)

	require.Same(t, set, m.Set(setName), "Set must return the same instance per name")
	require.Len(t, m.Sets(), 1)
	assert.Equal(t, []GlobalID{gid}, m.Sets()[0].Globals)
}

func TestOpDefinesAndUses(t *testing.T) {
	m := newTestModule()
	f := floatRef(m)

	load := Op{Kind: OpLoadFloatConstant, To: Variable{ID: 1, Type: f}, Float: 2.5}
	assert.Equal(t, VarID(1), load.Defines())
	assert.Empty(t, load.Uses(nil))

	add := Op{Kind: OpAdd, Left: Variable{ID: 1}, Right: Variable{ID: 2}, Result: Variable{ID: 3}}
	assert.Equal(t, VarID(3), add.Defines())
	assert.Equal(t, []VarID{1, 2}, add.Uses(nil))

	store := Op{Kind: OpStoreVariable, From: Variable{ID: 3}, To: Variable{ID: 4}}
	assert.Equal(t, VarID(0), store.Defines())
	assert.Equal(t, []VarID{3, 4}, store.Uses(nil))
}

func TestValidateCatchesUseBeforeDef(t *testing.T) {
	m := newTestModule()
	f := floatRef(m)
	body := &ast.Block{}

	m.AddFunction(Function{
		Name: m.Names.Intern("broken"),
		Body: body,
		Code: []Op{
			{Kind: OpAdd, Left: Variable{ID: 7, Type: f}, Right: Variable{ID: 8, Type: f}, Result: Variable{ID: 9, Type: f}},
		},
	})

	err := Validate(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "internal: ")
	assert.Contains(t, err.Error(), "_7")
}

func TestValidateAcceptsWellFormedBuffer(t *testing.T) {
	m := newTestModule()
	f := floatRef(m)
	body := &ast.Block{}

	m.AddFunction(Function{
		Name:   m.Names.Intern("ok"),
		Params: []Param{{Name: m.Names.Intern("x"), Type: f, VarID: 1}},
		Body:   body,
		Code: []Op{
			{Kind: OpLoadFloatConstant, To: Variable{ID: 2, Type: f}, Float: 1.0},
			{Kind: OpAdd, Left: Variable{ID: 1, Type: f}, Right: Variable{ID: 2, Type: f}, Result: Variable{ID: 3, Type: f}},
			{Kind: OpReturn, From: Variable{ID: 3, Type: f}, HasValue: true},
		},
	})

	require.NoError(t, Validate(m))
}

func TestValidateCatchesUnbalancedBlocks(t *testing.T) {
	m := newTestModule()
	body := &ast.Block{}

	m.AddFunction(Function{
		Name: m.Names.Intern("unbalanced"),
		Body: body,
		Code: []Op{{Kind: OpBlockStart}},
	})

	err := Validate(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unclosed blocks")
}

func TestValidateCatchesEmptyMemberChain(t *testing.T) {
	m := newTestModule()
	f := floatRef(m)
	body := &ast.Block{}

	m.AddFunction(Function{
		Name:   m.Names.Intern("member"),
		Params: []Param{{Name: m.Names.Intern("s"), Type: f, VarID: 1}},
		Body:   body,
		Code: []Op{
			{Kind: OpLoadMember, From: Variable{ID: 1, Type: f}, To: Variable{ID: 2, Type: f}, MemberParent: f},
		},
	})

	err := Validate(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty index chain")
}
