package runner

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/twitter/testsched/cloud/cluster"
)

// Status is the outcome of one test.
type Status string

const (
	PASS      Status = "PASS"
	FAIL      Status = "FAIL"
	IGNORE    Status = "IGNORE"
	CANCELLED Status = "CANCELLED"
)

// Reasons recorded for tests that failed without being launched.
const (
	ReasonUnresolved   = "unresolved cluster requirement"
	ReasonInsufficient = "insufficient cluster capacity"
	ReasonDeadlock     = "deadlocked waiting for nodes"
	ReasonCancelled    = "cancelled before launch"
)

type Result struct {
	TestId   string
	Status   Status
	Reason   string           `json:",omitempty"`
	Nodes    []cluster.NodeId `json:",omitempty"`
	Started  time.Time
	Duration time.Duration
}

func (r Result) String() string {
	s := fmt.Sprintf("%s %s", r.Status, r.TestId)
	if r.Reason != "" {
		s += ": " + r.Reason
	}
	return s
}

// Results are in the order the tests were given to the Driver.
type Results []Result

type Summary struct {
	Passed    int
	Failed    int
	Ignored   int
	Cancelled int
}

func (s Summary) Total() int {
	return s.Passed + s.Failed + s.Ignored + s.Cancelled
}

func (s Summary) String() string {
	return fmt.Sprintf("%d tests: %d passed, %d failed, %d ignored, %d cancelled",
		s.Total(), s.Passed, s.Failed, s.Ignored, s.Cancelled)
}

func (rs Results) Summary() Summary {
	s := Summary{}
	for _, r := range rs {
		switch r.Status {
		case PASS:
			s.Passed++
		case FAIL:
			s.Failed++
		case IGNORE:
			s.Ignored++
		case CANCELLED:
			s.Cancelled++
		}
	}
	return s
}

// Ok is true when no test failed or was cancelled.
func (rs Results) Ok() bool {
	s := rs.Summary()
	return s.Failed == 0 && s.Cancelled == 0
}

// WriteJSON writes the results as an indented JSON report.
func (rs Results) WriteJSON(w io.Writer) error {
	report := struct {
		Summary Summary
		Results Results
	}{rs.Summary(), rs}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
