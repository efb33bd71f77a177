package doc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stof/doc"
	"stof/graph"
	"stof/instr"
	"stof/value"
)

func putFunc(t *testing.T, g *graph.Graph, node value.NodeID, fn *graph.Function) {
	t.Helper()
	_, err := g.PutData(node, fn)
	require.NoError(t, err)
}

func TestNewInstallsEveryFormatAndLibrary(t *testing.T) {
	d := doc.New()
	for _, name := range []string{"json", "toml", "yaml", "xml", "urlencoded", "text", "bytes", "stof", "stofbin"} {
		_, ok := d.Formats.Get(name)
		assert.True(t, ok, "expected format %q to be registered", name)
	}
	for _, scope := range []string{"std", "Obj", "Str", "Num", "Array", "Set", "Map", "Fn", "Data", "fs", "time", "SemVer"} {
		_, ok := d.Libraries.Get(scope)
		assert.True(t, ok, "expected library scope %q to be registered", scope)
	}
}

func TestNewWithGraphUsesSuppliedAllocator(t *testing.T) {
	d := doc.NewWithGraph(graph.NewWithAllocator(graph.WithUUIDIDs()))
	a := d.Graph.MainRoot()
	b, err := d.Graph.InsertRoot("other")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFromSourceJSONImportsFields(t *testing.T) {
	d, err := doc.FromSource(`{"name": "stof", "version": 1}`, "json")
	require.Nil(t, err)
	_, f, ok := d.Graph.FieldByName(d.Graph.MainRoot(), "name")
	require.True(t, ok)
	assert.Equal(t, "stof", f.Value.S)
}

func TestStringExportRoundTripsJSON(t *testing.T) {
	d, err := doc.FromSource(`{"a": 1}`, "json")
	require.Nil(t, err)
	out, err := d.StringExport("json", d.Graph.MainRoot(), true, false)
	require.Nil(t, err)
	assert.Contains(t, out, `"a"`)
}

func TestRunInvokesMainAttributedFunctions(t *testing.T) {
	d := doc.New()
	root := d.Graph.MainRoot()
	fn := graph.NewFunction("entry")
	fn.Attributes["main"] = value.Bool(true)
	fn.Body = instr.Stream{Instructions: []instr.Instruction{instr.Lit(value.Int(7))}}
	putFunc(t, d.Graph, root, fn)

	summary, err := d.Run(nil)
	require.Nil(t, err)
	require.Equal(t, value.KindMap, summary.Kind)
	ran, ok := summary.MapRef().Get(value.Str("ran"))
	require.True(t, ok)
	assert.Equal(t, int64(1), ran.I)
	failed, ok := summary.MapRef().Get(value.Str("failed"))
	require.True(t, ok)
	assert.Equal(t, int64(0), failed.I)
}

func TestCallResolvesFunctionByDottedPath(t *testing.T) {
	d := doc.New()
	root := d.Graph.MainRoot()
	child, err := d.Graph.InsertChild(root, "math")
	require.NoError(t, err)
	fn := graph.NewFunction("square")
	fn.Body = instr.Stream{Instructions: []instr.Instruction{instr.Lit(value.Int(9))}}
	putFunc(t, d.Graph, child, fn)

	v, serr := d.Call("math.square", nil)
	require.Nil(t, serr)
	assert.Equal(t, int64(9), v.I)
}

func TestCallUnknownFunctionReturnsError(t *testing.T) {
	d := doc.New()
	_, err := d.Call("nope.missing", nil)
	require.NotNil(t, err)
}

func TestRunTestsReportsPassAndFail(t *testing.T) {
	d := doc.New()
	root := d.Graph.MainRoot()

	pass := graph.NewFunction("passes")
	pass.Attributes["test"] = value.Bool(true)
	pass.Body = instr.Stream{Instructions: []instr.Instruction{instr.Lit(value.Int(1))}}
	putFunc(t, d.Graph, root, pass)

	fail := graph.NewFunction("fails")
	fail.Attributes["test"] = value.Int(2)
	fail.Body = instr.Stream{Instructions: []instr.Instruction{instr.Lit(value.Int(1))}}
	putFunc(t, d.Graph, root, fail)

	report, err := d.RunTests(false, 0, false)
	require.Nil(t, err)
	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, 1, report.Failed)

	_, err = d.RunTests(true, 0, false)
	require.NotNil(t, err)
}

func TestRunTestsProfilesIterationCount(t *testing.T) {
	d := doc.New()
	root := d.Graph.MainRoot()

	fn := graph.NewFunction("hot")
	fn.Attributes["test"] = value.Bool(true)
	fn.Attributes["profile"] = value.Int(5)
	fn.Body = instr.Stream{Instructions: []instr.Instruction{instr.Lit(value.Int(1))}}
	putFunc(t, d.Graph, root, fn)

	report, err := d.RunTests(false, 0, false)
	require.Nil(t, err)
	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Profiled)
	assert.Equal(t, int64(5), report.Results[0].Iters)
}
