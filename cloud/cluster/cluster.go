package cluster

import (
	"github.com/pkg/errors"
)

// Returned by Allocate when a request is larger than the number of free nodes.
var ErrInsufficientNodes = errors.New("not enough available nodes")

// Release errors.
var (
	ErrUnknownNode      = errors.New("unknown node")
	ErrNodeNotAllocated = errors.New("node is not allocated")
)

// ClusterView is the read side of a cluster that scheduling decisions are made against.
type ClusterView interface {
	// Total capacity; constant for the lifetime of a run.
	TotalNodes() int

	// Currently free nodes. Changes as tests allocate and release nodes,
	// always 0 <= AvailableNodes() <= TotalNodes().
	AvailableNodes() int
}

// Cluster represents a fixed pool of Nodes that tests allocate from and release back to.
type Cluster interface {
	ClusterView

	// All returns a spec covering every node in the cluster, regardless of availability.
	All() ResourceSpec

	// Allocate reserves nodes matching spec and returns them.
	Allocate(spec ResourceSpec) ([]Node, error)

	// Release returns previously allocated nodes to the pool.
	Release(nodes []Node) error
}
