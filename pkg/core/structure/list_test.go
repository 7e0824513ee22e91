package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values[T any](l *List[T]) []T {
	out := make([]T, 0, l.Len())
	l.Each(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

func TestListPushBackKeepsOrder(t *testing.T) {
	l := NewList[string]()
	l.PushBack("a")
	l.PushBack("b")
	l.PushBack("c")

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, []string{"a", "b", "c"}, values(l))
	assert.Equal(t, "a", l.head.Value)
	assert.Equal(t, "c", l.tail.Value)
}

func TestListRemoveEndpointsAndMiddle(t *testing.T) {
	l := NewList[int]()
	n1 := l.PushBack(1)
	n2 := l.PushBack(2)
	n3 := l.PushBack(3)
	n4 := l.PushBack(4)

	require.True(t, l.Remove(n2))
	assert.Equal(t, []int{1, 3, 4}, values(l))

	require.True(t, l.Remove(n1))
	assert.Equal(t, n3, l.head)
	assert.Nil(t, n3.prev)

	require.True(t, l.Remove(n4))
	assert.Equal(t, n3, l.tail)
	assert.Nil(t, n3.next)

	require.True(t, l.Remove(n3))
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.head)
	assert.Nil(t, l.tail)
	assert.Empty(t, values(l))
}

func TestListRemoveTwiceIsIgnored(t *testing.T) {
	l := NewList[int]()
	n := l.PushBack(1)
	l.PushBack(2)

	require.True(t, l.Remove(n))
	assert.False(t, l.Remove(n))
	assert.False(t, l.Remove(nil))
	assert.Equal(t, 1, l.Len())
}

func TestListRemoveForeignNode(t *testing.T) {
	a := NewList[int]()
	b := NewList[int]()
	n := b.PushBack(1)
	a.PushBack(1)

	assert.False(t, a.Remove(n))
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, b.Len())
}

func TestListEachStopsEarly(t *testing.T) {
	l := NewList[int]()
	l.PushBack(1)
	l.PushBack(2)

	var seen []int
	l.Each(func(v int) bool {
		seen = append(seen, v)
		return false
	})
	assert.Equal(t, []int{1}, seen)
}
