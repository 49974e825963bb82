package sched

import (
	"math/rand"

	"github.com/leanovate/gopter"

	"github.com/twitter/testsched/cloud/cluster"
)

// GenRandomClusterUse declares a spec, a node count, both or neither, each
// with up to maxNodes nodes.
func GenRandomClusterUse(rng *rand.Rand, maxNodes int) ClusterUseMetadata {
	use := ClusterUseMetadata{}
	if rng.Intn(3) == 0 {
		spec := cluster.FromTypeCounts(map[string]int{
			cluster.Linux:   rng.Intn(maxNodes + 1),
			cluster.Windows: rng.Intn(2),
		})
		use.Spec = &spec
	}
	if rng.Intn(3) == 0 {
		n := rng.Intn(maxNodes + 1)
		use.NumNodes = &n
	}
	return use
}

// Wrapper function that generates ClusterUseMetadata for property based tests
func GopterGenClusterUse(maxNodes int) gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		use := GenRandomClusterUse(genParams.Rng, maxNodes)
		return gopter.NewGenResult(use, gopter.NoShrinker)
	}
}
