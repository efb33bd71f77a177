package library_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serr "stof/errors"
	"stof/library"
	"stof/value"
)

// fakeHost is a minimal Host stub exercising only what the tests below
// need; it is not a stand-in for the real doc.Document implementation.
type fakeHost struct {
	fields map[string]value.Value
	self   value.NodeID
}

func newFakeHost() *fakeHost { return &fakeHost{fields: map[string]value.Value{}} }

func (h *fakeHost) Self(uint64) (value.NodeID, bool)         { return h.self, true }
func (h *fakeHost) PID() uint64                              { return 1 }
func (h *fakeHost) FieldByName(_ value.NodeID, name string) (value.Value, bool) {
	v, ok := h.fields[name]
	return v, ok
}
func (h *fakeHost) SetField(_ value.NodeID, name string, v value.Value) error {
	h.fields[name] = v
	return nil
}
func (h *fakeHost) RemoveField(_ value.NodeID, name string) bool {
	_, ok := h.fields[name]
	delete(h.fields, name)
	return ok
}
func (h *fakeHost) FieldNames(value.NodeID) []string {
	out := make([]string, 0, len(h.fields))
	for k := range h.fields {
		out = append(out, k)
	}
	return out
}
func (h *fakeHost) CallFunction(uint64, value.NodeID, string, []value.Value) (value.Value, *serr.Error) {
	return value.Void(), nil
}
func (h *fakeHost) FunctionNames(value.NodeID) []string        { return nil }
func (h *fakeHost) NodePath(value.NodeID) string                { return "root" }
func (h *fakeHost) NodeName(value.NodeID) string                { return "root" }
func (h *fakeHost) ChildrenOf(value.NodeID) []value.NodeID      { return nil }
func (h *fakeHost) ParentOf(value.NodeID) (value.NodeID, bool)  { return 0, false }
func (h *fakeHost) MoveNode(value.NodeID, value.NodeID) error   { return nil }
func (h *fakeHost) RemoveNode(value.NodeID)                     {}
func (h *fakeHost) InstanceOf(value.NodeID, string) bool        { return false }
func (h *fakeHost) TypeName(value.NodeID) (string, bool)        { return "", false }
func (h *fakeHost) StringImport(uint64, string, string, string) *serr.Error { return nil }
func (h *fakeHost) StringExport(uint64, string, value.NodeID, bool) (string, *serr.Error) {
	return "", nil
}
func (h *fakeHost) BytesExport(uint64, string, value.NodeID) ([]byte, *serr.Error) { return nil, nil }
func (h *fakeHost) HasFormat(string) bool                                         { return true }
func (h *fakeHost) Formats() []string                                             { return []string{"json"} }
func (h *fakeHost) Print(string)                                                  {}
func (h *fakeHost) Debug(string)                                                  {}
func (h *fakeHost) FileRead(string) (string, *serr.Error)                         { return "", nil }
func (h *fakeHost) FileWrite(string, string) *serr.Error                          { return nil }
func (h *fakeHost) FileGlob(string) ([]string, *serr.Error)                       { return nil, nil }
func (h *fakeHost) NowUnixMillis() int64                                          { return 0 }
func (h *fakeHost) SpawnProcess(interface{}, value.Type) uint64                    { return 0 }

func TestStdAssertEqPasses(t *testing.T) {
	lib := library.StdLib{}
	_, err := lib.Call(newFakeHost(), "assertEq", []value.Value{value.Int(1), value.Int(1)})
	assert.Nil(t, err)
}

func TestStdAssertEqFailsWithDiff(t *testing.T) {
	lib := library.StdLib{}
	_, err := lib.Call(newFakeHost(), "assertEq", []value.Value{value.Int(1), value.Int(2)})
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "--- expected")
}

func TestStdNanoidDefaultLength(t *testing.T) {
	lib := library.StdLib{}
	v, err := lib.Call(newFakeHost(), "nanoid", nil)
	require.Nil(t, err)
	assert.Equal(t, 21, len(v.S))
}

func TestArrayPushAndPop(t *testing.T) {
	lib := library.ArrayLib{}
	list := value.List([]value.Value{value.Int(1), value.Int(2)})
	_, err := lib.Call(newFakeHost(), "push", []value.Value{list, value.Int(3)})
	require.Nil(t, err)
	popped, err := lib.Call(newFakeHost(), "pop", []value.Value{list})
	require.Nil(t, err)
	assert.Equal(t, int64(3), popped.I)
}

func TestSetInsertAndContains(t *testing.T) {
	lib := library.SetLib{}
	s := value.NewSet()
	_, err := lib.Call(newFakeHost(), "insert", []value.Value{s, value.Str("a")})
	require.Nil(t, err)
	contains, err := lib.Call(newFakeHost(), "contains", []value.Value{s, value.Str("a")})
	require.Nil(t, err)
	assert.True(t, contains.B)
}

func TestNumAs(t *testing.T) {
	lib := library.NumLib{}
	meters := value.Value{Kind: value.KindUnits, F: 1000}
	v, err := lib.Call(newFakeHost(), "as", []value.Value{meters, value.Str("km")})
	require.Nil(t, err)
	assert.Equal(t, value.KindUnits, v.Kind)
}

func TestRegistryDefaultIncludesStd(t *testing.T) {
	r := library.Default()
	_, ok := r.Get("std")
	assert.True(t, ok)
	_, ok = r.Get("Array")
	assert.True(t, ok)
}
