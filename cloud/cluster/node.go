package cluster

import (
	"fmt"
)

type NodeId string

// Node is a single unit of cluster capacity. A running test holds its nodes exclusively.
type Node interface {
	// A unique node identifier, like 'worker3' or 'host:port'
	Id() NodeId

	// The kind of node, used to build a ResourceSpec describing the cluster.
	Spec() NodeSpec
}

type idNode struct {
	id   NodeId
	spec NodeSpec
}

func (n *idNode) String() string {
	return string(n.id)
}

func NewIdNode(id string) Node {
	return &idNode{id: NodeId(id), spec: NodeSpec{OS: Linux}}
}

func NewIdSpecNode(id string, spec NodeSpec) Node {
	return &idNode{id: NodeId(id), spec: spec}
}

// NewIdNodes returns linux nodes named node1..nodeN.
func NewIdNodes(num int) []Node {
	r := []Node{}
	for i := 0; i < num; i++ {
		r = append(r, NewIdNode(fmt.Sprintf("node%d", i+1)))
	}
	return r
}

func (n *idNode) Id() NodeId {
	return n.id
}

func (n *idNode) Spec() NodeSpec {
	return n.spec
}

type NodeSorter []Node

func (n NodeSorter) Len() int           { return len(n) }
func (n NodeSorter) Swap(i, j int)      { n[i], n[j] = n[j], n[i] }
func (n NodeSorter) Less(i, j int) bool { return n[i].Id() < n[j].Id() }

var _ Node = (*idNode)(nil)
