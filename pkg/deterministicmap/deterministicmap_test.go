package deterministicmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/pkg/deterministicmap"
)

func TestRangeOrdersByKey(t *testing.T) {
	t.Parallel()

	m := deterministicmap.New[int, string]()
	m.Set(30, "c")
	m.Set(10, "a")
	m.Set(20, "b")

	var got []string
	m.Range(func(k int, v string) bool {
		got = append(got, v)
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestFirstLast(t *testing.T) {
	t.Parallel()

	m := deterministicmap.New[uint64, string]()
	_, _, ok := m.First()
	assert.False(t, ok)

	m.Set(5, "five")
	m.Set(1, "one")
	m.Set(9, "nine")

	k, v, ok := m.First()
	require.True(t, ok)
	assert.EqualValues(t, 1, k)
	assert.Equal(t, "one", v)

	k, v, ok = m.Last()
	require.True(t, ok)
	assert.EqualValues(t, 9, k)
	assert.Equal(t, "nine", v)
}

func TestFloorBefore(t *testing.T) {
	t.Parallel()

	m := deterministicmap.New[uint64, string]()
	m.Set(10, "ten")
	m.Set(20, "twenty")
	m.Set(30, "thirty")

	_, _, ok := m.FloorBefore(5)
	assert.False(t, ok, "target below every key has no floor")

	k, v, ok := m.FloorBefore(25)
	require.True(t, ok)
	assert.EqualValues(t, 20, k)
	assert.Equal(t, "twenty", v)

	k, v, ok = m.FloorBefore(30)
	require.True(t, ok, "floor is inclusive of an exact match")
	assert.EqualValues(t, 30, k)
	assert.Equal(t, "thirty", v)
}

func TestDeleteInvalidatesOrder(t *testing.T) {
	t.Parallel()

	m := deterministicmap.New[int, int]()
	m.Set(1, 100)
	m.Set(2, 200)
	m.Set(3, 300)

	m.Delete(2)
	assert.Equal(t, 2, m.Len())

	var keys []int
	m.Range(func(k int, _ int) bool {
		keys = append(keys, k)
		return true
	})
	assert.Equal(t, []int{1, 3}, keys)
}
