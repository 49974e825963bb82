// Package sched describes the tests a session runs: where their results go,
// how they log, and how many cluster nodes each expects to consume.
package sched

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	uuid "github.com/nu7hatch/gouuid"
	"github.com/pkg/errors"
)

// SessionId identifies one run of a test plan.
type SessionId string

// SessionContext holds state shared by every test in a run.
type SessionContext struct {
	SessionId SessionId

	// Root of per-test result directories. Empty means the current directory.
	ResultsDir string

	// When set, a test attached to a cluster that declares no node
	// requirement is not assumed to want the whole cluster.
	FailGreedyTests bool

	// Send debug output of test loggers to Console instead of warnings only.
	Debug bool

	// Where test loggers write console output; nil means os.Stdout.
	Console io.Writer
}

// NewSessionContext creates a session with a fresh id whose results live in
// resultsDir/<id>.
func NewSessionContext(resultsDir string, failGreedyTests bool, debug bool) (*SessionContext, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, errors.Wrap(err, "generating session id")
	}
	return &SessionContext{
		SessionId:       SessionId(id.String()),
		ResultsDir:      filepath.Join(resultsDir, id.String()),
		FailGreedyTests: failGreedyTests,
		Debug:           debug,
	}, nil
}

func (s *SessionContext) console() io.Writer {
	if s.Console == nil {
		return os.Stdout
	}
	return s.Console
}

func (s *SessionContext) String() string {
	return fmt.Sprintf("SessionContext{id: %s, results: %s, failGreedyTests: %t, debug: %t}",
		s.SessionId, s.ResultsDir, s.FailGreedyTests, s.Debug)
}
