package scheduler

import (
	"bytes"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twitter/testsched/cloud/cluster"
	"github.com/twitter/testsched/cloud/cluster/memory"
	"github.com/twitter/testsched/common/stats"
	"github.com/twitter/testsched/sched"
	"github.com/twitter/testsched/tests/testhelpers"
)

type unit struct {
	id    string
	nodes int
}

func (u *unit) TestId() string        { return u.id }
func (u *unit) ExpectedNumNodes() int { return u.nodes }

// fixedView is a ClusterView whose availability tests set directly.
type fixedView struct {
	total     int
	available int
}

func (v *fixedView) TotalNodes() int     { return v.total }
func (v *fixedView) AvailableNodes() int { return v.available }

func units(sizes ...int) []TestUnit {
	us := []TestUnit{}
	for i, n := range sizes {
		us = append(us, &unit{id: string(rune('a' + i)), nodes: n})
	}
	return us
}

func ids(us []TestUnit) []string {
	r := []string{}
	for _, u := range us {
		r = append(r, u.TestId())
	}
	return r
}

func TestLargestFitsFirstThenStall(t *testing.T) {
	t1, t2, t3 := &unit{"T1", 8}, &unit{"T2", 5}, &unit{"T3", 3}
	view := &fixedView{total: 10, available: 10}
	s := NewScheduler([]TestUnit{t3, t1, t2}, view, nil, nil)

	assert.Equal(t, 3, s.Count())
	assert.Equal(t, t1, s.Peek())
	u, err := s.Consume()
	require.NoError(t, err)
	assert.Equal(t, t1, u)
	assert.Equal(t, 2, s.Count())

	view.available = 2
	assert.Nil(t, s.Peek())
	u, err = s.Consume()
	assert.Nil(t, u)
	assert.Equal(t, ErrStalled, err)
	assert.Equal(t, 2, s.Count())

	view.available = 4
	assert.Equal(t, t3, s.Peek())
}

func TestOversizedIsUnschedulable(t *testing.T) {
	big := &unit{"big", 6}
	s := NewScheduler([]TestUnit{big}, &fixedView{total: 5, available: 5}, nil, nil)

	assert.Equal(t, []TestUnit{big}, s.Unschedulable())
	assert.Equal(t, 0, s.Count())
	assert.Nil(t, s.Peek())
	_, err := s.Consume()
	assert.Equal(t, ErrExhausted, err)
}

func TestEqualSizesKeepDeclarationOrder(t *testing.T) {
	ta, tb := &unit{"Ta", 4}, &unit{"Tb", 4}
	s := NewScheduler([]TestUnit{ta, tb}, &fixedView{total: 8, available: 8}, nil, nil)

	assert.Equal(t, ta, s.Peek())
	u, err := s.Consume()
	require.NoError(t, err)
	assert.Equal(t, ta, u)

	assert.Equal(t, tb, s.Peek())
	u, err = s.Consume()
	require.NoError(t, err)
	assert.Equal(t, tb, u)

	_, err = s.Consume()
	assert.Equal(t, ErrExhausted, err)
}

func TestPendingOrder(t *testing.T) {
	us := units(1, 3, 0, 3, 7, 2, 9)
	s := NewScheduler(us, &fixedView{total: 7, available: 0}, nil, nil)

	assert.Equal(t, []string{"e", "b", "d", "f", "a", "c"}, ids(s.Pending()))
	assert.Equal(t, []string{"g"}, ids(s.Unschedulable()))

	// Zero-node tests fit even in a fully busy cluster.
	u, err := s.Consume()
	require.NoError(t, err)
	assert.Equal(t, "c", u.TestId())
	_, err = s.Consume()
	assert.Equal(t, ErrStalled, err)
}

func TestRemovalKeepsOrder(t *testing.T) {
	view := &fixedView{total: 10, available: 3}
	s := NewScheduler(units(5, 3, 4, 3, 1), view, nil, nil)

	u, err := s.Consume()
	require.NoError(t, err)
	assert.Equal(t, "b", u.TestId())
	assert.Equal(t, []string{"a", "c", "d", "e"}, ids(s.Pending()))

	view.available = 10
	order := []string{}
	for {
		u, err := s.Consume()
		if err == ErrExhausted {
			break
		}
		require.NoError(t, err)
		order = append(order, u.TestId())
	}
	assert.Equal(t, []string{"a", "c", "d", "e"}, order)
}

func TestPeekIsIdempotent(t *testing.T) {
	view := &fixedView{total: 6, available: 4}
	s := NewScheduler(units(6, 4, 2), view, nil, nil)
	first := s.Peek()
	assert.Equal(t, first, s.Peek())
	assert.Equal(t, 3, s.Count())
}

func TestReturnedSlicesAreCopies(t *testing.T) {
	s := NewScheduler(units(2, 9), &fixedView{total: 4, available: 4}, nil, nil)
	p := s.Pending()
	p[0] = nil
	u := s.Unschedulable()
	u[0] = nil
	assert.NotNil(t, s.Peek())
	assert.NotNil(t, s.Unschedulable()[0])
}

func TestAgainstMemoryCluster(t *testing.T) {
	c := memory.NewClusterOfSize(4)
	session := &sched.SessionContext{}
	three, two := 3, 2
	tcs := []*sched.TestContext{
		{Session: session, Cluster: c, Function: "small", ClusterUse: sched.ClusterUseMetadata{NumNodes: &two}},
		{Session: session, Cluster: c, Function: "greedy"},
		{Session: session, Cluster: c, Function: "mid", ClusterUse: sched.ClusterUseMetadata{NumNodes: &three}},
	}
	us := []TestUnit{}
	for _, tc := range tcs {
		us = append(us, tc)
	}
	s := NewScheduler(us, c, nil, nil)

	u, err := s.Consume()
	require.NoError(t, err)
	assert.Equal(t, "greedy", u.TestId())
	nodes, err := c.Allocate(cluster.SimpleLinux(u.ExpectedNumNodes()))
	require.NoError(t, err)

	_, err = s.Consume()
	assert.Equal(t, ErrStalled, err)

	require.NoError(t, c.Release(nodes))
	u, err = s.Consume()
	require.NoError(t, err)
	assert.Equal(t, "mid", u.TestId())
	_, err = c.Allocate(cluster.SimpleLinux(3))
	require.NoError(t, err)

	_, err = s.Consume()
	assert.Equal(t, ErrStalled, err)
}

func TestSchedulerStats(t *testing.T) {
	stat := stats.DefaultStatsReceiver()
	view := &fixedView{total: 4, available: 4}
	s := NewScheduler(units(4, 2, 5), view, nil, stat)

	_, err := s.Consume()
	require.NoError(t, err)
	view.available = 1
	_, err = s.Consume()
	assert.Equal(t, ErrStalled, err)
	view.available = 4
	_, err = s.Consume()
	require.NoError(t, err)
	_, err = s.Consume()
	assert.Equal(t, ErrExhausted, err)

	testhelpers.VerifyStats(stat, t, map[string]testhelpers.Rule{
		stats.SchedUnschedulableTestsGauge: {Checker: testhelpers.IntEqTest, Value: 1},
		stats.SchedPendingTestsGauge:       {Checker: testhelpers.IntEqTest, Value: 0},
		stats.SchedConsumedCounter:         {Checker: testhelpers.IntEqTest, Value: 2},
		stats.SchedStalledCounter:          {Checker: testhelpers.IntEqTest, Value: 1},
		stats.SchedExhaustedCounter:        {Checker: testhelpers.IntEqTest, Value: 1},
		stats.SchedConsumeLatency_ms:       {Checker: testhelpers.IntEqTest, Value: 4},
	})
}

func TestLoggingListener(t *testing.T) {
	var buf bytes.Buffer
	l := log.New()
	l.Out = &buf
	l.SetLevel(log.DebugLevel)

	view := &fixedView{total: 3, available: 3}
	s := NewScheduler([]TestUnit{&unit{"fits", 3}, &unit{"huge", 9}}, view, NewLoggingListener(log.NewEntry(l)), nil)
	_, err := s.Consume()
	require.NoError(t, err)
	_, err = s.Consume()
	assert.Equal(t, ErrExhausted, err)

	out := buf.String()
	assert.Contains(t, out, "Unschedulable test")
	assert.Contains(t, out, "testId=huge")
	assert.Contains(t, out, "testId=fits")
	assert.Contains(t, out, "Exhausted")
}

func TestRandomUnitsDrainLargestFirst(t *testing.T) {
	rng := testhelpers.NewRand()
	total := 6
	testIds := testhelpers.GenUniqueIds(rng, "rand-", 50)
	us := []TestUnit{}
	for _, id := range testIds {
		us = append(us, &unit{id: id, nodes: rng.Intn(total + 3)})
	}
	view := &fixedView{total: total, available: total}
	s := NewScheduler(us, view, nil, nil)

	for _, u := range s.Unschedulable() {
		assert.True(t, u.ExpectedNumNodes() > total)
	}
	// with the cluster always idle, units come out in pending order
	expected := ids(s.Pending())
	consumed := []string{}
	prev := total
	for {
		u, err := s.Consume()
		if err == ErrExhausted {
			break
		}
		require.NoError(t, err)
		assert.True(t, u.ExpectedNumNodes() <= prev)
		prev = u.ExpectedNumNodes()
		consumed = append(consumed, u.TestId())
	}
	assert.Equal(t, expected, consumed)
	assert.Equal(t, len(us), len(consumed)+len(s.Unschedulable()))
}
