package sched

import (
	"fmt"

	"github.com/twitter/testsched/cloud/cluster"
)

// RequirementKind distinguishes a test that needs nodes, one that needs none,
// and one whose need could not be determined.
type RequirementKind int

const (
	Known RequirementKind = iota
	Zero
	Unresolved
)

func (k RequirementKind) String() string {
	switch k {
	case Known:
		return "Known"
	case Zero:
		return "Zero"
	case Unresolved:
		return "Unresolved"
	default:
		return fmt.Sprintf("RequirementKind(%d)", int(k))
	}
}

// Requirement is the resolved node requirement of a test. Spec is only
// meaningful unless Kind is Unresolved.
type Requirement struct {
	Kind RequirementKind
	Spec cluster.ResourceSpec
}

func (r Requirement) String() string {
	if r.Kind == Unresolved {
		return "Unresolved"
	}
	return fmt.Sprintf("%s%s", r.Kind, r.Spec)
}

// ClusterUseMetadata is what a test declares about its cluster usage.
// Spec takes precedence over NumNodes; both nil means nothing was declared.
type ClusterUseMetadata struct {
	Spec     *cluster.ResourceSpec
	NumNodes *int
}

// Declared reports whether the test stated a requirement at all.
func (m ClusterUseMetadata) Declared() bool {
	return m.Spec != nil || m.NumNodes != nil
}

// ResolveRequirement decides how many nodes a test will consume. The first
// matching rule wins:
//   - an explicit spec is used as is
//   - an explicit node count n becomes n linux nodes
//   - a test without a cluster needs nothing
//   - with failGreedy set, a cluster test that declared nothing is Unresolved
//   - otherwise the test is assumed to take the whole cluster
//
// Only a nil interface counts as having no cluster. A cluster with zero nodes
// is still a cluster reference: a test that declared nothing resolves to Zero,
// or to Unresolved with failGreedy set.
func ResolveRequirement(use ClusterUseMetadata, c cluster.Cluster, failGreedy bool) Requirement {
	var spec cluster.ResourceSpec
	switch {
	case use.Spec != nil:
		spec = *use.Spec
	case use.NumNodes != nil:
		spec = cluster.SimpleLinux(*use.NumNodes)
	case c == nil:
		spec = cluster.Empty()
	case failGreedy:
		return Requirement{Kind: Unresolved}
	default:
		spec = c.All()
	}
	if spec.Size() == 0 {
		return Requirement{Kind: Zero, Spec: spec}
	}
	return Requirement{Kind: Known, Spec: spec}
}
