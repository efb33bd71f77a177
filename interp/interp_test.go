package interp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stof/graph"
	"stof/instr"
	"stof/interp"
	"stof/library"
	"stof/value"
)

func TestLiteralAddProducesResult(t *testing.T) {
	g := graph.New()
	root, _ := g.InsertRoot("root")
	sched := interp.NewScheduler(g, library.Default(), nil)

	stream := instr.Stream{}
	stream.Append(instr.Lit(value.Int(2)))
	stream.Append(instr.Lit(value.Int(3)))
	stream.Append(instr.Instruction{Op: instr.OpAdd})
	stream.Append(instr.Instruction{Op: instr.OpExit})

	pid := sched.Spawn(stream, root)
	for !sched.AllDone() {
		sched.Run()
	}
	p, ok := sched.Process(pid)
	require.True(t, ok)
	require.Nil(t, p.Err)
	require.Len(t, p.Env.Operand, 1)
	assert.Equal(t, int64(5), p.Env.Operand[0].Value.I)
}

func TestIfBranchesOnTruthyCondition(t *testing.T) {
	g := graph.New()
	root, _ := g.InsertRoot("root")
	sched := interp.NewScheduler(g, library.Default(), nil)

	then := instr.Stream{Instructions: []instr.Instruction{
		instr.Lit(value.Int(1)),
		{Op: instr.OpSetVariable, Name: "x"},
	}}

	stream := instr.Stream{}
	stream.Append(instr.Instruction{
		Op: instr.OpIf,
		If: &instr.IfMacro{
			Cond: instr.Stream{Instructions: []instr.Instruction{instr.Lit(value.Bool(true))}},
			Then: then,
		},
	})

	pid := sched.Spawn(stream, root)
	for !sched.AllDone() {
		sched.Run()
	}
	p, ok := sched.Process(pid)
	require.True(t, ok)
	require.Nil(t, p.Err)
	_, f, ok := g.FieldByName(root, "x")
	require.True(t, ok)
	assert.Equal(t, int64(1), f.Value.I)
}

func TestNewObjCreatesChildWithFields(t *testing.T) {
	g := graph.New()
	root, _ := g.InsertRoot("root")
	sched := interp.NewScheduler(g, library.Default(), nil)

	stream := instr.Stream{}
	stream.Append(instr.Instruction{
		Op: instr.OpNewObj,
		NewObj: &instr.NewObjMacro{
			TypeName: "Point",
			FieldInit: []instr.FieldInit{
				{Name: "x", Expr: instr.Stream{Instructions: []instr.Instruction{instr.Lit(value.Int(1))}}},
			},
		},
	})

	pid := sched.Spawn(stream, root)
	for !sched.AllDone() {
		sched.Run()
	}
	p, ok := sched.Process(pid)
	require.True(t, ok)
	require.Nil(t, p.Err)
	n, ok := g.Node(root)
	require.True(t, ok)
	require.Len(t, n.Children, 1)
	child, ok := g.Node(n.Children[0])
	require.True(t, ok)
	assert.True(t, g.InstanceOf(child.ID, "Point"))
	_, f, ok := g.FieldByName(child.ID, "x")
	require.True(t, ok)
	assert.Equal(t, int64(1), f.Value.I)
}

func TestForInIteratesListBindingIndexAndSentinels(t *testing.T) {
	g := graph.New()
	root, _ := g.InsertRoot("root")
	sched := interp.NewScheduler(g, library.Default(), nil)

	body := instr.Stream{Instructions: []instr.Instruction{
		{Op: instr.OpLoadVariable, Name: "item"},
		{Op: instr.OpSetVariable, Name: "lastItem"},
		{Op: instr.OpLoadVariable, Name: "i"},
		{Op: instr.OpSetVariable, Name: "lastIndex"},
		{Op: instr.OpLoadVariable, Name: "isLast"},
		{Op: instr.OpSetVariable, Name: "sawLast"},
	}}
	stream := instr.Stream{}
	stream.Append(instr.Instruction{
		Op: instr.OpForIn,
		ForIn: &instr.ForInMacro{
			VarName:   "item",
			IndexName: "i",
			IsLast:    "isLast",
			Iterable:  instr.Stream{Instructions: []instr.Instruction{instr.Lit(value.List([]value.Value{value.Int(1), value.Int(2)}))}},
			Body:      body,
		},
	})
	pid := sched.Spawn(stream, root)
	for !sched.AllDone() {
		sched.Run()
	}
	p, ok := sched.Process(pid)
	require.True(t, ok)
	assert.Nil(t, p.Err)
	_, lastItem, ok := g.FieldByName(root, "lastItem")
	require.True(t, ok)
	assert.Equal(t, int64(2), lastItem.Value.I)
	_, lastIndex, ok := g.FieldByName(root, "lastIndex")
	require.True(t, ok)
	assert.Equal(t, int64(1), lastIndex.Value.I)
	_, sawLast, ok := g.FieldByName(root, "sawLast")
	require.True(t, ok)
	assert.True(t, sawLast.Value.B)
}
