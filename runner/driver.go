// Package runner drives a session: it feeds tests to the scheduler, allocates
// their nodes, launches them and collects results.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/twitter/testsched/async"
	"github.com/twitter/testsched/cloud/cluster"
	"github.com/twitter/testsched/common/stats"
	"github.com/twitter/testsched/sched"
	"github.com/twitter/testsched/sched/scheduler"
)

// ErrDeadlock is returned by Run when tests are pending, nothing is running,
// and no nodes were released within StallMaxWait.
var ErrDeadlock = errors.New("pending tests can't fit in the available nodes")

// Default stall handling, used for zero Options fields.
const (
	DefaultStallInitialInterval = 100 * time.Millisecond
	DefaultStallMaxWait         = 30 * time.Second
)

type Options struct {
	// Launches per second; zero or less is unlimited.
	LaunchRatePerSec float64
	// Launches allowed at once above the rate, at least 1.
	LaunchBurst int

	// With nothing running and no pending test fitting, poll for released
	// nodes starting at StallInitialInterval for up to StallMaxWait.
	// A negative StallMaxWait gives up immediately.
	StallInitialInterval time.Duration
	StallMaxWait         time.Duration
}

func (o Options) String() string {
	return fmt.Sprintf("Options{LaunchRatePerSec: %g, LaunchBurst: %d, StallInitialInterval: %s, StallMaxWait: %s}",
		o.LaunchRatePerSec, o.LaunchBurst, o.StallInitialInterval, o.StallMaxWait)
}

// Driver runs tests on a cluster through a Launcher, one session at a time.
type Driver struct {
	cluster  cluster.Cluster
	launcher Launcher
	opts     Options
	stat     stats.StatsReceiver
}

func NewDriver(c cluster.Cluster, launcher Launcher, opts Options, stat stats.StatsReceiver) *Driver {
	if stat == nil {
		stat = stats.NilStatsReceiver()
	}
	if opts.StallInitialInterval <= 0 {
		opts.StallInitialInterval = DefaultStallInitialInterval
	}
	if opts.StallMaxWait == 0 {
		opts.StallMaxWait = DefaultStallMaxWait
	}
	if opts.LaunchBurst < 1 {
		opts.LaunchBurst = 1
	}
	return &Driver{cluster: c, launcher: launcher, opts: opts, stat: stat}
}

// run is the state of a single Run call. It is only touched from the Run
// goroutine; launch callbacks are delivered there by the async.Runner.
type run struct {
	*Driver
	ctx     context.Context
	results Results
	index   map[*sched.TestContext]int
	runner  *async.Runner
}

// Run executes tcs and returns one Result per context, in order. Ignored
// tests are reported as IGNORE. Tests whose requirement can't be resolved, or
// that need more nodes than the cluster has, fail without running.
//
// The returned error is nil when the session ran to completion, whatever the
// test outcomes. It is ctx.Err() when ctx ended first, or ErrDeadlock; in both
// cases tests that were never launched are reported as well, and Run only
// returns once every launched test has finished.
func (d *Driver) Run(ctx context.Context, tcs []*sched.TestContext) (Results, error) {
	r := &run{
		Driver:  d,
		ctx:     ctx,
		results: make(Results, len(tcs)),
		index:   map[*sched.TestContext]int{},
		runner:  async.NewRunner(),
	}

	units := []scheduler.TestUnit{}
	for i, tc := range tcs {
		r.index[tc] = i
		r.results[i] = Result{TestId: tc.TestId()}
		switch {
		case tc.Ignore:
			r.finish(tc, IGNORE, "", nil)
		case tc.Requirement().Kind == sched.Unresolved:
			r.finish(tc, FAIL, ReasonUnresolved, nil)
		default:
			units = append(units, tc)
		}
	}

	s := scheduler.NewScheduler(units, d.cluster,
		scheduler.NewLoggingListener(log.WithField("component", "scheduler")), d.stat.Scope("scheduler"))
	for _, u := range s.Unschedulable() {
		r.finish(u.(*sched.TestContext), FAIL,
			fmt.Sprintf("%s: needs %d of %d nodes", ReasonInsufficient, u.ExpectedNumNodes(), d.cluster.TotalNodes()), nil)
	}

	err := r.loop(s)

	// Launched tests get ctx too, so on cancellation these finish promptly.
	for r.runner.NumRunning() > 0 {
		r.runner.Wait(context.Background())
	}
	r.updateGauges()
	for _, u := range s.Pending() {
		if err == ErrDeadlock {
			r.finish(u.(*sched.TestContext), FAIL, ReasonDeadlock, nil)
		} else {
			r.finish(u.(*sched.TestContext), CANCELLED, ReasonCancelled, nil)
		}
	}

	log.WithFields(
		log.Fields{
			"summary": r.results.Summary().String(),
			"err":     err,
		}).Info("Session finished")
	return r.results, err
}

func (r *run) loop(s *scheduler.Scheduler) error {
	limit := rate.Inf
	if r.opts.LaunchRatePerSec > 0 {
		limit = rate.Limit(r.opts.LaunchRatePerSec)
	}
	limiter := rate.NewLimiter(limit, r.opts.LaunchBurst)

	for {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		// Completed tests release their nodes before the next decision.
		if r.runner.ProcessMessages() > 0 {
			r.updateGauges()
		}

		u, err := s.Consume()
		switch err {
		case nil:
		case scheduler.ErrExhausted:
			if r.runner.NumRunning() == 0 {
				return nil
			}
			if err := r.runner.Wait(r.ctx); err != nil {
				return err
			}
			continue
		case scheduler.ErrStalled:
			if r.runner.NumRunning() > 0 {
				if err := r.runner.Wait(r.ctx); err != nil {
					return err
				}
				continue
			}
			if err := r.awaitRelease(s); err != nil {
				return err
			}
			continue
		default:
			return err
		}

		tc := u.(*sched.TestContext)
		spec, _ := tc.ExpectedClusterSpec()
		nodes, err := r.cluster.Allocate(spec)
		if err != nil {
			// Someone else took nodes between Consume and Allocate.
			r.finish(tc, FAIL, fmt.Sprintf("allocating %s: %v", spec, err), nil)
			continue
		}
		if err := limiter.Wait(r.ctx); err != nil {
			r.release(tc, nodes)
			r.finish(tc, CANCELLED, ReasonCancelled, nil)
			if ctxErr := r.ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
		r.launch(tc, nodes)
	}
}

// awaitRelease polls with exponential backoff until some pending test fits.
func (r *run) awaitRelease(s *scheduler.Scheduler) error {
	r.stat.Counter(stats.DriverStallWaitCounter).Inc(1)
	log.WithFields(
		log.Fields{
			"pending":        s.Count(),
			"availableNodes": r.cluster.AvailableNodes(),
			"maxWait":        r.opts.StallMaxWait,
		}).Info("Nothing running and no pending test fits, waiting for nodes")

	if r.opts.StallMaxWait < 0 {
		if s.Peek() != nil {
			return nil
		}
		return ErrDeadlock
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.opts.StallInitialInterval
	b.MaxElapsedTime = r.opts.StallMaxWait
	ticker := backoff.NewTicker(backoff.WithContext(b, r.ctx))
	defer ticker.Stop()

	for range ticker.C {
		if s.Peek() != nil {
			return nil
		}
	}
	if err := r.ctx.Err(); err != nil {
		return err
	}
	return ErrDeadlock
}

func (r *run) launch(tc *sched.TestContext, nodes []cluster.Node) {
	logger, err := tc.Logger()
	if err != nil {
		log.WithFields(
			log.Fields{
				"testId": tc.TestId(),
				"err":    err,
			}).Warn("Couldn't create test logger, using the session log")
		logger = log.WithField("test", tc.LoggerName())
	}
	logger.WithField("nodes", nodeIds(nodes)).Info("Running")

	i := r.index[tc]
	r.results[i].Started = time.Now()
	r.results[i].Nodes = nodeIds(nodes)
	latency := r.stat.Latency(stats.DriverTestLatency_ms).Time()
	r.stat.Counter(stats.DriverLaunchedCounter).Inc(1)

	ctx := r.ctx
	r.runner.RunAsync(func() error {
		return r.launcher.Launch(ctx, tc, nodes)
	}, func(err error) {
		latency.Stop()
		r.results[i].Duration = time.Since(r.results[i].Started)
		r.release(tc, nodes)
		switch {
		case err == nil:
			logger.Info("PASS")
			r.finish(tc, PASS, "", nodes)
		case ctx.Err() != nil && errors.Cause(err) == ctx.Err():
			logger.WithField("err", err).Warn("CANCELLED")
			r.finish(tc, CANCELLED, err.Error(), nodes)
		default:
			logger.WithField("err", err).Warn("FAIL")
			r.finish(tc, FAIL, err.Error(), nodes)
		}
		if err := tc.Close(); err != nil {
			log.WithFields(
				log.Fields{
					"testId": tc.TestId(),
					"err":    err,
				}).Warn("Closing test context")
		}
	})
	r.updateGauges()
}

func (r *run) release(tc *sched.TestContext, nodes []cluster.Node) {
	if err := r.cluster.Release(nodes); err != nil {
		log.WithFields(
			log.Fields{
				"testId": tc.TestId(),
				"nodes":  nodeIds(nodes),
				"err":    err,
			}).Error("Releasing nodes")
	}
	r.updateGauges()
}

func (r *run) finish(tc *sched.TestContext, status Status, reason string, nodes []cluster.Node) {
	i := r.index[tc]
	r.results[i].Status = status
	r.results[i].Reason = reason
	switch status {
	case PASS:
		r.stat.Counter(stats.DriverPassedCounter).Inc(1)
	case FAIL:
		r.stat.Counter(stats.DriverFailedCounter).Inc(1)
	case IGNORE:
		r.stat.Counter(stats.DriverIgnoredCounter).Inc(1)
	}
	if nodes == nil && status != PASS {
		log.WithFields(
			log.Fields{
				"testId": tc.TestId(),
				"status": status,
				"reason": reason,
			}).Info("Not run")
	}
}

func (r *run) updateGauges() {
	r.stat.Gauge(stats.DriverRunningGauge).Update(int64(r.runner.NumRunning()))
	r.stat.Gauge(stats.DriverAvailableNodesGauge).Update(int64(r.cluster.AvailableNodes()))
}

func nodeIds(nodes []cluster.Node) []cluster.NodeId {
	ids := make([]cluster.NodeId, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.Id())
	}
	return ids
}
