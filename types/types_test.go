package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stof/graph"
	"stof/types"
	"stof/value"
)

func TestDeclareAndInstanceOf(t *testing.T) {
	g := graph.New()
	root, _ := g.InsertRoot("root")
	registry, _ := g.InsertChild(root, "types")
	def, _ := g.InsertChild(registry, "Point")
	require.NoError(t, types.Declare(g, registry, def, "Point", ""))

	node, err := types.New(g, root, "Point", def, map[string]value.Value{}, true)
	require.NoError(t, err)
	assert.True(t, g.InstanceOf(node, "Point"))
}

func TestNewAssignsDefaultsAndErrorsOnMissingRequired(t *testing.T) {
	g := graph.New()
	root, _ := g.InsertRoot("root")
	registry, _ := g.InsertChild(root, "types")
	def, _ := g.InsertChild(registry, "Point")
	g.PutData(def, graph.NewField("x", value.Int(0)))
	require.NoError(t, types.Declare(g, registry, def, "Point", ""))

	node, err := types.New(g, root, "Point", def, map[string]value.Value{}, false)
	require.NoError(t, err)
	_, f, ok := g.FieldByName(node, "x")
	require.True(t, ok)
	assert.Equal(t, int64(0), f.Value.I)

	lineDef, _ := g.InsertChild(registry, "Line")
	g.PutData(lineDef, graph.NewField("length", value.Void()))
	require.NoError(t, types.Declare(g, registry, lineDef, "Line", ""))
	_, err = types.New(g, root, "Line", lineDef, map[string]value.Value{}, false)
	assert.Error(t, err)
}

func TestUpcastPromotesToParent(t *testing.T) {
	g := graph.New()
	root, _ := g.InsertRoot("root")
	registry, _ := g.InsertChild(root, "types")
	baseDef, _ := g.InsertChild(registry, "Shape")
	require.NoError(t, types.Declare(g, registry, baseDef, "Shape", ""))
	childDef, _ := g.InsertChild(registry, "Circle")
	require.NoError(t, types.Declare(g, registry, childDef, "Circle", "Shape"))

	node, err := types.New(g, root, "Circle", childDef, nil, true)
	require.NoError(t, err)
	promoted, err := types.Upcast(g, node)
	require.NoError(t, err)
	assert.True(t, promoted)
	assert.True(t, g.InstanceOf(node, "Shape"))
}

func TestSchemafyRemovesInvalidAndUndefinedFields(t *testing.T) {
	g := graph.New()
	root, _ := g.InsertRoot("root")
	schema, _ := g.InsertChild(root, "schema")
	xField := graph.NewField("x", value.Int(0))
	xField.Attributes["schema"] = value.Bool(true)
	g.PutData(schema, xField)

	target, _ := g.InsertChild(root, "target")
	g.PutData(target, graph.NewField("x", value.Int(-1)))
	g.PutData(target, graph.NewField("extra", value.Str("drop me")))

	always := func(schemaVal, targetVal, attr value.Value) bool {
		return targetVal.I >= 0
	}
	ok := types.Schemafy(g, schema, target, true, true, always)
	assert.False(t, ok)
	_, _, hasX := g.FieldByName(target, "x")
	assert.False(t, hasX)
	_, _, hasExtra := g.FieldByName(target, "extra")
	assert.False(t, hasExtra)
}
