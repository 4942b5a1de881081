package cycles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDiff_NoSnapshot(t *testing.T) {
	diff := ComputeDiff(nil, []Cycle{{"b", "c"}, {"a", "b"}})

	assert.Equal(t, []Cycle{{"a", "b"}, {"b", "c"}}, diff.Added)
	assert.Empty(t, diff.Resolved)
	assert.False(t, diff.Empty())
}

func TestComputeDiff_AddedAndResolved(t *testing.T) {
	old := NewSnapshot([]Cycle{{"a", "b"}, {"x", "y", "z"}})

	diff := ComputeDiff(old, []Cycle{{"y", "z", "x"}, {"p", "q"}})

	assert.Equal(t, []Cycle{{"p", "q"}}, diff.Added)
	assert.Equal(t, []Cycle{{"a", "b"}}, diff.Resolved)
}

func TestComputeDiff_Unchanged(t *testing.T) {
	found := []Cycle{{"a", "b"}, {"self"}}

	diff := ComputeDiff(NewSnapshot(found), found)

	assert.True(t, diff.Empty())
}
