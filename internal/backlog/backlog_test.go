package backlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTexture struct {
	name     string
	released bool
}

func (f *fakeTexture) Release()         { f.released = true }
func (f *fakeTexture) Size() (int, int) { return 1, 1 }

func TestPushRefusedAtCapacity(t *testing.T) {
	b := New(3)

	require.NoError(t, b.Push(&fakeTexture{name: "a"}, "a"))
	require.NoError(t, b.Push(&fakeTexture{name: "b"}, "b"))
	require.NoError(t, b.Push(&fakeTexture{name: "c"}, "c"))
	assert.Equal(t, 3, b.Len())

	err := b.Push(&fakeTexture{name: "d"}, "d")
	assert.ErrorIs(t, err, ErrFull)
	assert.Equal(t, 3, b.Len())
}

func TestAdvancePromotesAndReleases(t *testing.T) {
	b := New(3)
	a := &fakeTexture{name: "a"}
	c := &fakeTexture{name: "b"}

	require.NoError(t, b.Push(a, "a"))
	require.NoError(t, b.Push(c, "b"))

	assert.Same(t, a, b.Current().(*fakeTexture))
	assert.Same(t, c, b.Next().(*fakeTexture))

	refill := b.Advance()
	assert.True(t, refill)
	assert.True(t, a.released, "evicted texture must be released immediately")
	assert.Same(t, c, b.Current().(*fakeTexture))
	assert.Nil(t, b.Next())
	assert.Equal(t, 1, b.Len())
}

func TestAdvanceNeverEmptiesTheBacklog(t *testing.T) {
	b := New(3)
	a := &fakeTexture{name: "a"}
	require.NoError(t, b.Push(a, "a"))

	refill := b.Advance()
	assert.False(t, refill)
	assert.False(t, a.released)
	assert.Equal(t, 1, b.Len(), "the current image must survive an advance with no successor")
}

func TestCapacityInvariantUnderChurn(t *testing.T) {
	b := New(3)
	for i := 0; i < 50; i++ {
		for b.Len() < b.Cap() {
			require.NoError(t, b.Push(&fakeTexture{}, "x"))
		}
		assert.LessOrEqual(t, b.Len(), b.Cap())
		b.Advance()
		assert.GreaterOrEqual(t, b.Len(), 1)
	}
}

func TestCurrentPathAndEmpty(t *testing.T) {
	b := New(3)
	assert.Nil(t, b.Current())
	assert.Equal(t, "", b.CurrentPath())

	require.NoError(t, b.Push(&fakeTexture{}, "/img/a.png"))
	assert.Equal(t, "/img/a.png", b.CurrentPath())
}

func TestReleaseEvictsEverything(t *testing.T) {
	b := New(3)
	texs := []*fakeTexture{{}, {}, {}}
	for _, tex := range texs {
		require.NoError(t, b.Push(tex, "x"))
	}

	b.Release()
	assert.Equal(t, 0, b.Len())
	for _, tex := range texs {
		assert.True(t, tex.released)
	}
}

func TestMinimumCapacity(t *testing.T) {
	b := New(0)
	assert.Equal(t, 1, b.Cap())
}
