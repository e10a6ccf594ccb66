package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id  string
	val int
	tag string
}

func (i item) Key() string { return i.id }

func TestCacheAbsentVersusEmpty(t *testing.T) {
	c := NewCache[item](LastDispatchedWins)

	_, ok := c.Get("p1")
	assert.False(t, ok)

	c.Replace(c.Begin("list:p1"), "p1", nil)
	list, ok := c.Get("p1")
	assert.True(t, ok)
	assert.Empty(t, list)
	assert.True(t, c.Has("p1"))
}

func TestCacheReplaceEntityKeepsOrder(t *testing.T) {
	c := NewCache[item](LastDispatchedWins)
	c.Replace(c.Begin("list"), "p", []item{{"a", 1, "x"}, {"b", 2, "x"}, {"c", 3, "x"}})

	ok := c.ReplaceEntity(c.Begin("b"), "p", item{"b", 20, "y"})
	require.True(t, ok)

	list, _ := c.Get("p")
	assert.Equal(t, []item{{"a", 1, "x"}, {"b", 20, "y"}, {"c", 3, "x"}}, list)
}

func TestCacheReplaceEntityMissing(t *testing.T) {
	c := NewCache[item](LastDispatchedWins)
	c.Replace(c.Begin("list"), "p", []item{{"a", 1, "x"}})

	assert.False(t, c.ReplaceEntity(c.Begin("z"), "p", item{"z", 9, ""}))
	assert.False(t, c.ReplaceEntity(c.Begin("a"), "other", item{"a", 9, ""}))

	list, _ := c.Get("p")
	assert.Equal(t, []item{{"a", 1, "x"}}, list)
}

func TestCachePatchFieldsTouchesOnlyPatchedFields(t *testing.T) {
	c := NewCache[item](LastDispatchedWins)
	c.Replace(c.Begin("l1"), "p1", []item{{"a", 1, "x"}})
	c.Replace(c.Begin("l2"), "p2", []item{{"b", 2, "x"}, {"a", 1, "x"}})

	n := c.PatchFields(c.Begin("a"), "a", func(i *item) { i.tag = "done" })
	assert.Equal(t, 2, n)

	p1, _ := c.Get("p1")
	p2, _ := c.Get("p2")
	assert.Equal(t, []item{{"a", 1, "done"}}, p1)
	assert.Equal(t, []item{{"b", 2, "x"}, {"a", 1, "done"}}, p2)
}

func TestCacheAppendCreatesList(t *testing.T) {
	c := NewCache[item](LastDispatchedWins)
	c.Append("p", item{"a", 1, ""})

	list, ok := c.Get("p")
	assert.True(t, ok)
	assert.Len(t, list, 1)

	assert.False(t, c.AppendIfPresent("missing", item{"b", 2, ""}))
	assert.False(t, c.Has("missing"))
}

func TestCacheGetReturnsCopy(t *testing.T) {
	c := NewCache[item](LastDispatchedWins)
	c.Replace(c.Begin("list"), "p", []item{{"a", 1, "x"}})

	list, _ := c.Get("p")
	list[0].val = 99

	again, _ := c.Get("p")
	assert.Equal(t, 1, again[0].val)
}

func TestCacheSequencing(t *testing.T) {
	tests := []struct {
		policy Policy
		want   int
	}{
		{LastDispatchedWins, 2},
		{LastResolvedWins, 1},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			c := NewCache[item](tt.policy)
			c.Replace(c.Begin("list"), "p", []item{{"a", 0, ""}})

			first := c.Begin("a")
			second := c.Begin("a")

			// second resolves before first
			assert.True(t, c.ReplaceEntity(second, "p", item{"a", 2, ""}))
			applied := c.ReplaceEntity(first, "p", item{"a", 1, ""})
			assert.Equal(t, tt.policy == LastResolvedWins, applied)

			list, _ := c.Get("p")
			assert.Equal(t, tt.want, list[0].val)
		})
	}
}

func TestCacheSequencingIsPerKey(t *testing.T) {
	c := NewCache[item](LastDispatchedWins)
	c.Replace(c.Begin("list"), "p", []item{{"a", 0, ""}, {"b", 0, ""}})

	ta := c.Begin("a")
	tb := c.Begin("b")
	assert.True(t, c.ReplaceEntity(tb, "p", item{"b", 1, ""}))
	assert.True(t, c.ReplaceEntity(ta, "p", item{"a", 1, ""}))
}

func TestCacheSnapshotRestore(t *testing.T) {
	c := NewCache[item](LastDispatchedWins)
	c.Replace(c.Begin("l1"), "p1", []item{{"a", 1, "x"}})
	c.Replace(c.Begin("l2"), "p2", nil)

	snap := c.Snapshot()

	d := NewCache[item](LastDispatchedWins)
	d.Restore(snap)
	assert.Equal(t, []string{"p1", "p2"}, d.Keys())
	got, _ := d.Get("p1")
	assert.Equal(t, []item{{"a", 1, "x"}}, got)

	d.Reset()
	assert.Empty(t, d.Keys())
}
