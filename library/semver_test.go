package library_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stof/library"
	"stof/value"
)

func TestSemVerSatisfiesCaret(t *testing.T) {
	lib := library.SemVerLib{}
	v := value.SemVerV(1, 4, 2, "", "")
	ok, err := lib.Call(newFakeHost(), "satisfies", []value.Value{v, value.Str("^1.2")})
	require.Nil(t, err)
	assert.True(t, ok.B)
}

func TestSemVerSatisfiesRejectsMajorMismatch(t *testing.T) {
	lib := library.SemVerLib{}
	v := value.SemVerV(2, 0, 0, "", "")
	ok, err := lib.Call(newFakeHost(), "satisfies", []value.Value{v, value.Str("^1.2")})
	require.Nil(t, err)
	assert.False(t, ok.B)
}

func TestSemVerAccessors(t *testing.T) {
	lib := library.SemVerLib{}
	v := value.SemVerV(1, 2, 3, "beta", "")
	major, err := lib.Call(newFakeHost(), "major", []value.Value{v})
	require.Nil(t, err)
	assert.Equal(t, int64(1), major.I)

	str, err := lib.Call(newFakeHost(), "str", []value.Value{v})
	require.Nil(t, err)
	assert.Equal(t, "1.2.3-beta", str.S)
}

func TestSemVerRegisteredInDefaultRegistry(t *testing.T) {
	r := library.Default()
	_, ok := r.Get("SemVer")
	assert.True(t, ok)
}
