package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stof/graph"
)

func TestWithUUIDIDsProducesUniqueNodeIDs(t *testing.T) {
	g := graph.NewWithAllocator(graph.WithUUIDIDs())
	root, err := g.InsertRoot("root")
	require.NoError(t, err)
	a, err := g.InsertChild(root, "a")
	require.NoError(t, err)
	b, err := g.InsertChild(root, "b")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, root, a)
}

func TestWithUUIDIDsGraphBehavesLikeDefault(t *testing.T) {
	g := graph.NewWithAllocator(graph.WithUUIDIDs())
	root, err := g.InsertRoot("root")
	require.NoError(t, err)
	leaf, err := g.EnsurePath(root, "a.b.c")
	require.NoError(t, err)
	n, ok := g.Node(leaf)
	require.True(t, ok)
	assert.Equal(t, "c", n.Name)
	assert.Equal(t, "root.a.b.c", g.Path(leaf))
}
