package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimpleLinux(t *testing.T) {
	s := SimpleLinux(3)
	assert.Equal(t, 3, s.Size())
	assert.Equal(t, map[string]int{Linux: 3}, s.TypeCounts())
	assert.Equal(t, "[linux:3]", s.String())

	assert.Equal(t, 0, SimpleLinux(-2).Size())
	assert.Equal(t, Empty(), SimpleLinux(0))
}

func TestEmpty(t *testing.T) {
	assert.Equal(t, 0, Empty().Size())
	assert.Equal(t, "[]", Empty().String())
	assert.Equal(t, Empty(), FromTypeCounts(nil))
	assert.Equal(t, Empty(), NewResourceSpec())
}

func TestFromTypeCounts(t *testing.T) {
	s := FromTypeCounts(map[string]int{Windows: 1, Linux: 2})
	assert.Equal(t, 3, s.Size())
	assert.Equal(t, []NodeSpec{{Linux}, {Linux}, {Windows}}, s.Nodes())
	assert.Equal(t, "[linux:2, windows:1]", s.String())
}

func TestAdd(t *testing.T) {
	a := SimpleLinux(2)
	b := FromTypeCounts(map[string]int{Windows: 2})
	sum := a.Add(b)
	assert.Equal(t, 4, sum.Size())
	assert.Equal(t, map[string]int{Linux: 2, Windows: 2}, sum.TypeCounts())

	// Operands are unchanged.
	assert.Equal(t, 2, a.Size())
	assert.Equal(t, 2, b.Size())
}

func TestNodesIsACopy(t *testing.T) {
	s := SimpleLinux(2)
	nodes := s.Nodes()
	nodes[0] = NodeSpec{OS: Windows}
	assert.Equal(t, map[string]int{Linux: 2}, s.TypeCounts())
}
