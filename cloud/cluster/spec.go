package cluster

import (
	"fmt"
	"sort"
	"strings"
)

const (
	Linux   = "linux"
	Windows = "windows"
)

// SupportedOS lists the node types a ResourceSpec may ask for.
var SupportedOS = []string{Linux, Windows}

// NodeSpec describes the kind of a single node.
type NodeSpec struct {
	OS string
}

func (n NodeSpec) String() string {
	return n.OS
}

// ResourceSpec describes the nodes a test needs. It is immutable once created;
// the scheduler only ever looks at Size().
type ResourceSpec struct {
	nodes []NodeSpec
}

// NewResourceSpec builds a spec from an explicit node list.
func NewResourceSpec(nodes ...NodeSpec) ResourceSpec {
	cp := make([]NodeSpec, len(nodes))
	copy(cp, nodes)
	return makeSpec(cp)
}

// Zero-size specs share a single representation so they compare equal.
func makeSpec(nodes []NodeSpec) ResourceSpec {
	if len(nodes) == 0 {
		return ResourceSpec{}
	}
	return ResourceSpec{nodes: nodes}
}

// FromTypeCounts builds a spec from a count per node type. Types are laid out
// in sorted order so equal inputs produce equal specs.
func FromTypeCounts(counts map[string]int) ResourceSpec {
	types := make([]string, 0, len(counts))
	for os := range counts {
		types = append(types, os)
	}
	sort.Strings(types)
	nodes := []NodeSpec{}
	for _, os := range types {
		for i := 0; i < counts[os]; i++ {
			nodes = append(nodes, NodeSpec{OS: os})
		}
	}
	return makeSpec(nodes)
}

// SimpleLinux is a homogeneous spec of n linux nodes. Negative counts yield an empty spec.
func SimpleLinux(n int) ResourceSpec {
	if n < 0 {
		n = 0
	}
	nodes := make([]NodeSpec, n)
	for i := range nodes {
		nodes[i] = NodeSpec{OS: Linux}
	}
	return makeSpec(nodes)
}

// Empty is the spec of a test that uses no nodes.
func Empty() ResourceSpec {
	return ResourceSpec{}
}

func (s ResourceSpec) Size() int {
	return len(s.nodes)
}

func (s ResourceSpec) Nodes() []NodeSpec {
	cp := make([]NodeSpec, len(s.nodes))
	copy(cp, s.nodes)
	return cp
}

func (s ResourceSpec) TypeCounts() map[string]int {
	counts := map[string]int{}
	for _, n := range s.nodes {
		counts[n.OS]++
	}
	return counts
}

// Add returns a new spec holding the nodes of both s and other.
func (s ResourceSpec) Add(other ResourceSpec) ResourceSpec {
	nodes := make([]NodeSpec, 0, len(s.nodes)+len(other.nodes))
	nodes = append(nodes, s.nodes...)
	nodes = append(nodes, other.nodes...)
	return makeSpec(nodes)
}

func (s ResourceSpec) String() string {
	counts := s.TypeCounts()
	types := make([]string, 0, len(counts))
	for os := range counts {
		types = append(types, os)
	}
	sort.Strings(types)
	parts := make([]string, 0, len(types))
	for _, os := range types {
		parts = append(parts, fmt.Sprintf("%s:%d", os, counts[os]))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
