package proc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serr "stof/errors"
	"stof/graph"
	"stof/proc"
	"stof/value"
)

func TestDeclareRejectsDuplicateInSameScope(t *testing.T) {
	st := proc.NewSymbolTable()
	require.Nil(t, st.Declare("x", value.Int(1), true, value.Type{}, false))
	err := st.Declare("x", value.Int(2), true, value.Type{}, false)
	require.NotNil(t, err)
	assert.Equal(t, serr.KindDeclareExisting, err.Kind)
}

func TestDeclareRejectsReservedName(t *testing.T) {
	st := proc.NewSymbolTable()
	err := st.Declare("self", value.Int(1), true, value.Type{}, false)
	require.NotNil(t, err)
	assert.Equal(t, serr.KindDeclareInvalid, err.Kind)
}

func TestLoadSearchesOuterScopes(t *testing.T) {
	st := proc.NewSymbolTable()
	require.Nil(t, st.Declare("x", value.Int(7), true, value.Type{}, false))
	st.PushScope()
	v, ok := st.Load("x")
	require.True(t, ok)
	assert.Equal(t, int64(7), v.Value.I)
	st.PopScope()
}

func TestSelfStackUnderflowErrors(t *testing.T) {
	e := proc.NewEnv(1)
	_, err := e.PopSelf()
	require.NotNil(t, err)
	assert.Equal(t, serr.KindSelfStackError, err.Kind)
}

func TestSelfStackPushPop(t *testing.T) {
	e := proc.NewEnv(1)
	e.PushSelf(value.NodeID(42))
	cur, ok := e.CurrentSelf()
	require.True(t, ok)
	assert.Equal(t, value.NodeID(42), cur)
	popped, err := e.PopSelf()
	require.Nil(t, err)
	assert.Equal(t, value.NodeID(42), popped)
}

func TestSetReassignsExistingMutableBinding(t *testing.T) {
	st := proc.NewSymbolTable()
	require.Nil(t, st.Declare("x", value.Int(1), true, value.Type{}, false))
	g := graph.New()
	root, _ := g.InsertRoot("root")
	err := proc.Set(st, g, root, "x", value.Int(99))
	require.Nil(t, err)
	v, _ := st.Load("x")
	assert.Equal(t, int64(99), v.Value.I)
}

func TestSetRefusesImmutableBinding(t *testing.T) {
	st := proc.NewSymbolTable()
	require.Nil(t, st.Declare("x", value.Int(1), false, value.Type{}, false))
	g := graph.New()
	root, _ := g.InsertRoot("root")
	err := proc.Set(st, g, root, "x", value.Int(2))
	require.NotNil(t, err)
	assert.Equal(t, serr.KindFieldReadOnlySet, err.Kind)
}

func TestSetFallsBackToFieldOnSelfWhenUndeclared(t *testing.T) {
	st := proc.NewSymbolTable()
	g := graph.New()
	root, _ := g.InsertRoot("root")
	err := proc.Set(st, g, root, "count", value.Int(3))
	require.Nil(t, err)
	_, f, ok := g.FieldByName(root, "count")
	require.True(t, ok)
	assert.Equal(t, int64(3), f.Value.I)
}

func TestSetInstallsNewRootForUndeclaredObjValue(t *testing.T) {
	st := proc.NewSymbolTable()
	g := graph.New()
	root, _ := g.InsertRoot("root")
	obj, _ := g.InsertChild(root, "ignored")
	err := proc.Set(st, g, root, "other", value.Obj(obj))
	require.Nil(t, err)
	_, ok := g.RootByName("other")
	assert.True(t, ok)
}
