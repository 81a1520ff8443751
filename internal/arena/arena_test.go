package arena

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocAndAt(t *testing.T) {
	a := New[float64](2)
	i := a.Alloc(1.5)
	j := a.Alloc(2.5)
	k := a.Alloc(3.5) // forces growth

	assert.Equal(t, Index(0), i)
	assert.Equal(t, Index(2), k)
	assert.Equal(t, 1.5, *a.At(i))
	assert.Equal(t, 2.5, *a.At(j))
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 24, a.Bytes())
}

func TestAllocSliceAndExtend(t *testing.T) {
	a := New[int32](0)
	a.Alloc(7)
	sp := a.AllocSlice([]int32{1, 2, 3})
	assert.Equal(t, Span{Start: 1, Len: 3}, sp)
	assert.Equal(t, []int32{1, 2, 3}, a.Slice(sp))

	m := a.Mark()
	a.Alloc(99)
	require.NoError(t, a.Rewind(m))

	// Extend must hand back zeroed slots even when they reuse old memory.
	ext := a.Extend(2)
	assert.Equal(t, []int32{0, 0}, a.Slice(ext))
}

func TestRewind(t *testing.T) {
	a := New[float64](4)
	a.Alloc(1)
	m := a.Mark()
	before := a.Bytes()
	for n := 0; n < 100; n++ {
		a.Alloc(float64(n))
	}
	require.NoError(t, a.Rewind(m))
	assert.Equal(t, before, a.Bytes())
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 101, a.Peak())

	// Memory is retained for reuse.
	assert.GreaterOrEqual(t, a.Reserved(), 101*8)
}

func TestRewindBadMark(t *testing.T) {
	a := New[float64](4)
	a.Alloc(1)
	err := a.Rewind(Mark(5))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadMark))
	assert.Equal(t, 1, a.Len())
}

func TestResetAndRelease(t *testing.T) {
	a := New[float64](0)
	for n := 0; n < 10; n++ {
		a.Alloc(float64(n))
	}
	a.Reset()
	assert.Equal(t, 0, a.Len())
	assert.Greater(t, a.Reserved(), 0)

	a.Release()
	assert.Equal(t, 0, a.Reserved())
	assert.Equal(t, 0, a.Peak())
}
