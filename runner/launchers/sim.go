// Package launchers provides Launcher implementations.
package launchers

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/testsched/cloud/cluster"
	"github.com/twitter/testsched/runner"
	"github.com/twitter/testsched/sched"
	"github.com/twitter/testsched/sched/plan"
)

// SimLauncher simulates running tests: each test sleeps for its planned
// duration and then passes, or fails if the plan says so. Tests missing from
// the plan behave like the default.
type SimLauncher struct {
	behaviors map[string]plan.Behavior
	def       plan.Behavior

	mu       sync.Mutex
	launched []string
}

func NewSimLauncher(behaviors map[string]plan.Behavior, def plan.Behavior) *SimLauncher {
	if behaviors == nil {
		behaviors = map[string]plan.Behavior{}
	}
	return &SimLauncher{behaviors: behaviors, def: def}
}

func (l *SimLauncher) Launch(ctx context.Context, tc *sched.TestContext, nodes []cluster.Node) error {
	b, ok := l.behaviors[tc.TestId()]
	if !ok {
		b = l.def
	}
	l.mu.Lock()
	l.launched = append(l.launched, tc.TestId())
	l.mu.Unlock()

	logger, err := tc.Logger()
	if err != nil {
		logger = log.WithField("test", tc.LoggerName())
	}
	logger.WithFields(
		log.Fields{
			"nodes":    len(nodes),
			"duration": b.Duration,
		}).Debug("Simulating test")

	if b.Duration > 0 {
		t := time.NewTimer(b.Duration)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}
	if b.Fail {
		return fmt.Errorf("simulated failure of %s", tc.TestId())
	}
	return nil
}

// Launched returns the ids of tests launched so far, in launch order.
func (l *SimLauncher) Launched() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.launched...)
}

var _ runner.Launcher = (*SimLauncher)(nil)
