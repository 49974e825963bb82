//go:generate mockgen -source=launcher.go -package=runner -destination=launcher_mock.go

package runner

import (
	"context"

	"github.com/twitter/testsched/cloud/cluster"
	"github.com/twitter/testsched/sched"
)

// Launcher runs one test on the nodes allocated to it and returns once the
// test has finished. A nil error means the test passed. Launch is called
// concurrently for different tests and must return promptly once ctx is done.
type Launcher interface {
	Launch(ctx context.Context, tc *sched.TestContext, nodes []cluster.Node) error
}
