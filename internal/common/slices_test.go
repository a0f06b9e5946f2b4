package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedUnique(t *testing.T) {
	in := []string{"b", "a", "b", "c", "a"}
	out := SortedUnique(in)

	assert.Equal(t, []string{"a", "b", "c"}, out)
	assert.Equal(t, []string{"b", "a", "b", "c", "a"}, in, "input must not be modified")
	assert.NotNil(t, SortedUnique([]string(nil)))
}

func TestFirst(t *testing.T) {
	v, ok := First([]int{4, 5})
	assert.True(t, ok)
	assert.Equal(t, 4, v)

	_, ok = First([]int{})
	assert.False(t, ok)
}

func TestAllBlank(t *testing.T) {
	assert.True(t, AllBlank())
	assert.True(t, AllBlank("", "  ", "\t\n"))
	assert.False(t, AllBlank("", "x"))
	assert.Equal(t, []int{}, NonNil([]int(nil)))
}
