package names_test

import (
	"testing"

	"github.com/kong-shade/kongc/names"
	"github.com/stretchr/testify/require"
)

func TestInternStability(t *testing.T) {
	p := names.NewPool()

	a := p.Intern("position")
	b := p.Intern("color")
	c := p.Intern("position")

	require.Equal(t, a, c, "interning the same string twice must return the same id")
	require.NotEqual(t, a, b)
	require.NotEqual(t, names.NoName, a)
	require.NotEqual(t, names.NoName, b)
}

func TestNoNameSentinel(t *testing.T) {
	p := names.NewPool()

	require.Equal(t, names.NoName, p.Intern(""))
	require.Equal(t, "", p.String(names.NoName))
}

func TestLookupMissing(t *testing.T) {
	p := names.NewPool()
	p.Intern("x")

	_, ok := p.Lookup("y")
	require.False(t, ok)

	id, ok := p.Lookup("x")
	require.True(t, ok)
	require.Equal(t, "x", p.String(id))
}

func TestCount(t *testing.T) {
	p := names.NewPool()
	require.Equal(t, 0, p.Count())
	p.Intern("a")
	p.Intern("b")
	p.Intern("a")
	require.Equal(t, 2, p.Count())
}
