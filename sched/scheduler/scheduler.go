package scheduler

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/twitter/testsched/cloud/cluster"
	"github.com/twitter/testsched/common/stats"
)

// ErrExhausted is returned by Consume once every pending test has been handed out.
var ErrExhausted = errors.New("scheduler is empty")

// ErrStalled is returned by Consume when tests are pending but none fits in
// the nodes currently available.
var ErrStalled = errors.New("no tests can currently be scheduled")

// TestUnit is what the Scheduler needs to know about a test.
// ExpectedNumNodes must not change while the unit is in a Scheduler.
type TestUnit interface {
	TestId() string
	ExpectedNumNodes() int
}

// Scheduler hands out tests largest first among those that fit the cluster's
// current availability. See the package doc.
type Scheduler struct {
	cluster       cluster.ClusterView
	unschedulable []TestUnit
	pending       []TestUnit
	listener      Listener
	stat          stats.StatsReceiver
}

// NewScheduler splits units into unschedulable and pending against
// c.TotalNodes(). A nil listener or stat disables that reporting.
func NewScheduler(units []TestUnit, c cluster.ClusterView, listener Listener, stat stats.StatsReceiver) *Scheduler {
	if listener == nil {
		listener = NewNoopListener()
	}
	if stat == nil {
		stat = stats.NilStatsReceiver()
	}
	s := &Scheduler{
		cluster:       c,
		unschedulable: []TestUnit{},
		pending:       []TestUnit{},
		listener:      listener,
		stat:          stat,
	}

	total := c.TotalNodes()
	for _, u := range units {
		if u.ExpectedNumNodes() > total {
			s.unschedulable = append(s.unschedulable, u)
		} else {
			s.pending = append(s.pending, u)
		}
	}
	// Stable so equally sized tests keep their declaration order.
	sort.SliceStable(s.pending, func(i, j int) bool {
		return s.pending[i].ExpectedNumNodes() > s.pending[j].ExpectedNumNodes()
	})

	s.stat.Gauge(stats.SchedUnschedulableTestsGauge).Update(int64(len(s.unschedulable)))
	s.stat.Gauge(stats.SchedPendingTestsGauge).Update(int64(len(s.pending)))
	s.listener.Classified(s.Pending(), s.Unschedulable())
	return s
}

// Unschedulable returns the tests that need more nodes than the cluster has,
// in the order they were given.
func (s *Scheduler) Unschedulable() []TestUnit {
	return append([]TestUnit{}, s.unschedulable...)
}

// Pending returns the tests not yet consumed, in the order they will be considered.
func (s *Scheduler) Pending() []TestUnit {
	return append([]TestUnit{}, s.pending...)
}

// Count is the number of pending tests.
func (s *Scheduler) Count() int {
	return len(s.pending)
}

// Peek returns the largest pending test that fits in the nodes available
// now, or nil if there is none. It does not change the Scheduler.
func (s *Scheduler) Peek() TestUnit {
	if i := s.peekIndex(); i >= 0 {
		return s.pending[i]
	}
	return nil
}

func (s *Scheduler) peekIndex() int {
	available := s.cluster.AvailableNodes()
	for i, u := range s.pending {
		if u.ExpectedNumNodes() <= available {
			return i
		}
	}
	return -1
}

// Consume removes and returns what Peek would return. It fails with
// ErrExhausted when nothing is pending and ErrStalled when nothing pending fits.
func (s *Scheduler) Consume() (TestUnit, error) {
	defer s.stat.Latency(stats.SchedConsumeLatency_ms).Time().Stop()

	if len(s.pending) == 0 {
		s.stat.Counter(stats.SchedExhaustedCounter).Inc(1)
		s.listener.Exhausted()
		return nil, ErrExhausted
	}

	i := s.peekIndex()
	if i < 0 {
		s.stat.Counter(stats.SchedStalledCounter).Inc(1)
		s.listener.Stalled(len(s.pending), s.cluster.AvailableNodes())
		return nil, ErrStalled
	}

	u := s.pending[i]
	copy(s.pending[i:], s.pending[i+1:])
	s.pending[len(s.pending)-1] = nil
	s.pending = s.pending[:len(s.pending)-1]

	s.stat.Counter(stats.SchedConsumedCounter).Inc(1)
	s.stat.Gauge(stats.SchedPendingTestsGauge).Update(int64(len(s.pending)))
	s.listener.Consumed(u, s.cluster.AvailableNodes())
	return u, nil
}
