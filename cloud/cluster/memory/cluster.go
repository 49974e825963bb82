package memory

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/testsched/cloud/cluster"
)

// Cluster is a fixed set of in-memory nodes.
//
// Allocate and Release may be called from any goroutine. The free node count is
// also published through an atomic so AvailableNodes never blocks on an in-flight
// allocation and always returns a value that was true at some instant.
type Cluster struct {
	mu        sync.Mutex
	nodes     []cluster.Node                 // All nodes, sorted by id; allocation hands them out in this order.
	busy      map[cluster.NodeId]bool        // Nodes currently held by a test.
	byId      map[cluster.NodeId]cluster.Node
	available int64
}

// NewCluster creates a cluster from the given nodes. Duplicate ids are dropped.
func NewCluster(nodes []cluster.Node) *Cluster {
	c := &Cluster{
		busy: map[cluster.NodeId]bool{},
		byId: map[cluster.NodeId]cluster.Node{},
	}
	for _, n := range nodes {
		if _, ok := c.byId[n.Id()]; ok {
			log.Infof("Node already added!! %v", n.Id())
			continue
		}
		c.byId[n.Id()] = n
		c.nodes = append(c.nodes, n)
	}
	sort.Sort(cluster.NodeSorter(c.nodes))
	atomic.StoreInt64(&c.available, int64(len(c.nodes)))
	return c
}

// NewClusterOfSize creates a cluster of n linux nodes.
func NewClusterOfSize(n int) *Cluster {
	return NewCluster(cluster.NewIdNodes(n))
}

// A nil *Cluster reads as a cluster with no nodes.
func (c *Cluster) TotalNodes() int {
	if c == nil {
		return 0
	}
	return len(c.nodes)
}

func (c *Cluster) AvailableNodes() int {
	if c == nil {
		return 0
	}
	return int(atomic.LoadInt64(&c.available))
}

func (c *Cluster) All() cluster.ResourceSpec {
	if c == nil {
		return cluster.Empty()
	}
	specs := make([]cluster.NodeSpec, 0, len(c.nodes))
	for _, n := range c.nodes {
		specs = append(specs, n.Spec())
	}
	return cluster.NewResourceSpec(specs...)
}

// Allocate hands out spec.Size() idle nodes. In-memory nodes are interchangeable
// so the type breakdown of spec is not consulted.
func (c *Cluster) Allocate(spec cluster.ResourceSpec) ([]cluster.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	want := spec.Size()
	free := len(c.nodes) - len(c.busy)
	if want > free {
		return nil, errors.Wrapf(cluster.ErrInsufficientNodes, "requested %d, %d of %d free", want, free, len(c.nodes))
	}
	allocated := make([]cluster.Node, 0, want)
	for _, n := range c.nodes {
		if len(allocated) == want {
			break
		}
		if !c.busy[n.Id()] {
			c.busy[n.Id()] = true
			allocated = append(allocated, n)
		}
	}
	atomic.StoreInt64(&c.available, int64(len(c.nodes)-len(c.busy)))
	log.WithFields(
		log.Fields{
			"requested": spec.String(),
			"available": len(c.nodes) - len(c.busy),
		}).Debug("Allocated nodes")
	return allocated, nil
}

// Release frees nodes previously returned by Allocate. Releasing an unknown or
// idle node is an error and leaves the cluster untouched.
func (c *Cluster) Release(nodes []cluster.Node) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := map[cluster.NodeId]bool{}
	for _, n := range nodes {
		if _, ok := c.byId[n.Id()]; !ok {
			return errors.Wrapf(cluster.ErrUnknownNode, "cannot release %v", n.Id())
		}
		if !c.busy[n.Id()] || seen[n.Id()] {
			return errors.Wrapf(cluster.ErrNodeNotAllocated, "cannot release %v", n.Id())
		}
		seen[n.Id()] = true
	}
	for id := range seen {
		delete(c.busy, id)
	}
	atomic.StoreInt64(&c.available, int64(len(c.nodes)-len(c.busy)))
	return nil
}

func (c *Cluster) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	busy := []string{}
	for _, n := range c.nodes {
		if c.busy[n.Id()] {
			busy = append(busy, string(n.Id()))
		}
	}
	return fmt.Sprintf("{total:%d, available:%d, busy:%s}",
		len(c.nodes), len(c.nodes)-len(c.busy), spew.Sdump(busy))
}

var _ cluster.Cluster = (*Cluster)(nil)
