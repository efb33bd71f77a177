package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stof/graph"
	"stof/value"
)

func TestInsertRootUniqueness(t *testing.T) {
	g := graph.New()
	_, err := g.InsertRoot("root")
	require.NoError(t, err)
	_, err = g.InsertRoot("root")
	assert.Error(t, err)
}

func TestEnsurePathCreatesIntermediates(t *testing.T) {
	g := graph.New()
	root, _ := g.InsertRoot("root")
	leaf, err := g.EnsurePath(root, "a.b.c")
	require.NoError(t, err)
	n, ok := g.Node(leaf)
	require.True(t, ok)
	assert.Equal(t, "c", n.Name)
	assert.Equal(t, "root.a.b.c", g.Path(leaf))
}

func TestRemoveNodeRemovesDescendantsAndSoleData(t *testing.T) {
	g := graph.New()
	root, _ := g.InsertRoot("root")
	child, _ := g.InsertChild(root, "child")
	_, err := g.PutData(child, graph.NewField("x", value.Int(1)))
	require.NoError(t, err)

	g.RemoveNode(child)
	_, ok := g.Node(child)
	assert.False(t, ok)
}

func TestSharedDataSurvivesSingleDetach(t *testing.T) {
	g := graph.New()
	root, _ := g.InsertRoot("root")
	a, _ := g.InsertChild(root, "a")
	b, _ := g.InsertChild(root, "b")
	did, err := g.PutData(a, graph.NewField("shared", value.Int(1)))
	require.NoError(t, err)
	require.NoError(t, g.AttachData(b, did))

	g.DetachData(a, did, false)
	_, stillThere := g.GetData(did)
	assert.True(t, stillThere, "data attached to b must survive detaching from a")

	g.DetachData(b, did, false)
	_, gone := g.GetData(did)
	assert.False(t, gone)
}

func TestMoveNodeRefusesCycle(t *testing.T) {
	g := graph.New()
	root, _ := g.InsertRoot("root")
	a, _ := g.InsertChild(root, "a")
	b, _ := g.InsertChild(a, "b")

	err := g.MoveNode(a, b, false, "")
	assert.Error(t, err)
}

func TestAbsorbMergesRootCollisionIntoFirstFound(t *testing.T) {
	g1 := graph.New()
	r1, _ := g1.InsertRoot("root")
	g1.InsertChild(r1, "existing")

	g2 := graph.New()
	r2, _ := g2.InsertRoot("root")
	g2.InsertChild(r2, "incoming")

	g1.Absorb(g2)
	roots := g1.Roots()
	require.Len(t, roots, 1, "root name collision should merge into the first-found root")

	_, hasExisting := g1.FindNode(roots[0], "existing")
	_, hasIncoming := g1.FindNode(roots[0], "incoming")
	assert.True(t, hasExisting)
	assert.True(t, hasIncoming)
}

func TestReadOnlyFieldRefusesSecondWrite(t *testing.T) {
	f := graph.NewField("x", value.Int(1))
	f.Attributes["readonly"] = value.Bool(true)
	assert.True(t, f.Set(value.Int(2)))
	assert.False(t, f.Set(value.Int(3)))
}
