package unlock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_RootsAreAvailable(t *testing.T) {
	res := Resolve(Build(diamond()), Input{})

	assert.Equal(t, StateAvailable, res.State("a"))
	assert.Equal(t, StateLocked, res.State("b"))
	assert.Equal(t, StateLocked, res.State("c"))
	assert.Equal(t, StateLocked, res.State("d"))
}

func TestResolve_AvailableIffAllPrerequisitesCompleted(t *testing.T) {
	g := Build(diamond())

	res := Resolve(g, Input{Records: map[string]Record{
		"a": {Completed: true},
		"b": {Completed: true},
	}})
	assert.Equal(t, StateAvailable, res.State("c"))
	assert.Equal(t, StateLocked, res.State("d"), "d still needs c")

	res = Resolve(g, Input{Records: map[string]Record{
		"a": {Completed: true},
		"b": {Completed: true},
		"c": {Completed: true},
	}})
	assert.Equal(t, StateAvailable, res.State("d"))
}

func TestResolve_DiamondIndependentOfInputOrder(t *testing.T) {
	records := map[string]Record{
		"a": {Completed: true},
		"b": {Completed: true},
		"c": {Started: true},
	}
	want := Resolve(Build(diamond()), Input{Records: records}).States

	nodes := diamond()
	for i := 0; i < len(nodes); i++ {
		rotated := append(append([]Node{}, nodes[i:]...), nodes[:i]...)
		got := Resolve(Build(rotated), Input{Records: records}).States
		assert.Equal(t, want, got, "rotation %d", i)
	}
}

func TestResolve_LockedNodeIgnoresOwnProgress(t *testing.T) {
	res := Resolve(Build(diamond()), Input{Records: map[string]Record{
		"b": {Started: true},
	}})
	assert.Equal(t, StateLocked, res.State("b"))
}

func TestResolve_InProgress(t *testing.T) {
	res := Resolve(Build(diamond()), Input{Records: map[string]Record{
		"a": {Started: true},
	}})
	assert.Equal(t, StateInProgress, res.State("a"))
}

func TestResolve_CompletedIsSticky(t *testing.T) {
	res := Resolve(Build(diamond()), Input{Records: map[string]Record{
		"b": {Completed: true},
	}})
	assert.Equal(t, StateCompleted, res.State("b"))
}

func TestResolve_CycleFailsClosed(t *testing.T) {
	g := Build([]Node{
		{ID: "a", Prerequisites: []string{"b"}},
		{ID: "b", Prerequisites: []string{"a"}},
		{ID: "after", Prerequisites: []string{"b"}},
	})

	res := Resolve(g, Input{Records: map[string]Record{
		"a": {Completed: true},
		"b": {Completed: true},
	}})
	assert.Equal(t, StateLocked, res.State("a"))
	assert.Equal(t, StateLocked, res.State("b"))
	assert.Equal(t, StateLocked, res.State("after"))

	preview := Resolve(g, Input{Preview: true})
	assert.Equal(t, StateLocked, preview.State("a"))
}

func TestResolve_DanglingPrerequisiteLocks(t *testing.T) {
	g := Build([]Node{
		{ID: "a"},
		{ID: "b", Prerequisites: []string{"a", "renamed"}},
	})
	res := Resolve(g, Input{Records: map[string]Record{"a": {Completed: true}}})

	assert.Equal(t, StateLocked, res.State("b"))
	require.Len(t, res.Issues, 1)
	assert.Equal(t, IssueDangling, res.Issues[0].Kind)
}

func TestResolve_XPGate(t *testing.T) {
	g := Build([]Node{
		{ID: "root", XPRequired: 100},
		{ID: "next", Prerequisites: []string{"root"}, XPRequired: 500},
	})

	res := Resolve(g, Input{TotalXP: 99})
	assert.Equal(t, StateLocked, res.State("root"))

	res = Resolve(g, Input{TotalXP: 100, Records: map[string]Record{"root": {Completed: true}}})
	assert.Equal(t, StateCompleted, res.State("root"))
	assert.Equal(t, StateLocked, res.State("next"))

	res = Resolve(g, Input{TotalXP: 500, Records: map[string]Record{"root": {Completed: true}}})
	assert.Equal(t, StateAvailable, res.State("next"))
}

func TestResolve_Preview(t *testing.T) {
	res := Resolve(Build(diamond()), Input{
		Preview: true,
		Records: map[string]Record{"a": {Completed: true}},
	})
	for _, id := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, StateAvailable, res.State(id), id)
	}
}

func TestResolve_UnknownNodeIsLocked(t *testing.T) {
	res := Resolve(Build(diamond()), Input{})
	assert.Equal(t, StateLocked, res.State("nope"))
	assert.Equal(t, 1, res.Count(StateAvailable))
	assert.Equal(t, 2, res.Count(StateLocked, "b", "nope"))
	assert.Equal(t, 1, res.Count(StateAvailable, "a", "b"))
}
