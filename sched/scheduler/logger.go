package scheduler

import (
	"github.com/luci/go-render/render"
	log "github.com/sirupsen/logrus"
)

// Listener observes a Scheduler's decisions. Calls are made synchronously
// from the goroutine using the Scheduler.
type Listener interface {
	// Construction
	Classified(pending []TestUnit, unschedulable []TestUnit)

	// Decisions
	Consumed(unit TestUnit, available int)
	Stalled(pending int, available int)
	Exhausted()
}

type noopListener struct{}

func NewNoopListener() Listener { return &noopListener{} }

func (l *noopListener) Classified(pending []TestUnit, unschedulable []TestUnit) {}
func (l *noopListener) Consumed(unit TestUnit, available int)                   {}
func (l *noopListener) Stalled(pending int, available int)                      {}
func (l *noopListener) Exhausted()                                              {}

type loggingListener struct {
	log *log.Entry
}

// NewLoggingListener logs every decision at debug level, and stalls and
// unschedulable tests at info.
func NewLoggingListener(entry *log.Entry) Listener {
	if entry == nil {
		entry = log.NewEntry(log.StandardLogger())
	}
	return &loggingListener{log: entry}
}

func (l *loggingListener) Classified(pending []TestUnit, unschedulable []TestUnit) {
	l.log.WithFields(
		log.Fields{
			"pending":       len(pending),
			"unschedulable": len(unschedulable),
		}).Debug("Pending order ", render.Render(unitSizes(pending)))
	for _, u := range unschedulable {
		l.log.WithFields(
			log.Fields{
				"testId":           u.TestId(),
				"expectedNumNodes": u.ExpectedNumNodes(),
			}).Info("Unschedulable test")
	}
}

func (l *loggingListener) Consumed(unit TestUnit, available int) {
	l.log.WithFields(
		log.Fields{
			"testId":           unit.TestId(),
			"expectedNumNodes": unit.ExpectedNumNodes(),
			"availableNodes":   available,
		}).Debug("Consumed")
}

func (l *loggingListener) Stalled(pending int, available int) {
	l.log.WithFields(
		log.Fields{
			"pending":        pending,
			"availableNodes": available,
		}).Info("Stalled, no pending test fits")
}

func (l *loggingListener) Exhausted() {
	l.log.Debug("Exhausted")
}

type unitSize struct {
	TestId string
	Nodes  int
}

func unitSizes(units []TestUnit) []unitSize {
	sizes := make([]unitSize, 0, len(units))
	for _, u := range units {
		sizes = append(sizes, unitSize{u.TestId(), u.ExpectedNumNodes()})
	}
	return sizes
}
