package sched

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/testsched/cloud/cluster"
	"github.com/twitter/testsched/common/log/hooks"
	"github.com/twitter/testsched/os/temp"
)

// Files each test logger writes inside the test's results dir.
const (
	InfoLogFile  = "test_log.info"
	DebugLogFile = "test_log.debug"
)

// InjectedArg is one parameter a test is invoked with. Order is significant
// since it determines the test's name.
type InjectedArg struct {
	Key   string
	Value string
}

// TestContext is everything needed to run a single test unit.
type TestContext struct {
	Session *SessionContext

	// The cluster this test runs against, nil if it uses none.
	Cluster cluster.Cluster

	Module   string
	Class    string
	Function string
	File     string

	// nil means the test is not parameterized, which differs from an empty
	// list only in the results dir layout.
	InjectedArgs []InjectedArg

	Ignore      bool
	ClusterUse  ClusterUseMetadata
	Description string

	// Set when the same test runs more than once in a session.
	TestIndex *int

	mu       sync.Mutex
	logger   *log.Entry
	logHooks []*hooks.LevelWriterHook
	scratch  *temp.TempDir
}

// Copy returns a new context with the same declaration and none of the
// resources (logger, scratch dir) the original has acquired.
func (tc *TestContext) Copy() *TestContext {
	c := &TestContext{
		Session:     tc.Session,
		Cluster:     tc.Cluster,
		Module:      tc.Module,
		Class:       tc.Class,
		Function:    tc.Function,
		File:        tc.File,
		Ignore:      tc.Ignore,
		ClusterUse:  tc.ClusterUse,
		Description: tc.Description,
	}
	if tc.InjectedArgs != nil {
		c.InjectedArgs = append([]InjectedArg{}, tc.InjectedArgs...)
	}
	if tc.TestIndex != nil {
		idx := *tc.TestIndex
		c.TestIndex = &idx
	}
	return c
}

func (tc *TestContext) failGreedy() bool {
	return tc.Session != nil && tc.Session.FailGreedyTests
}

// Requirement resolves this test's node requirement against its cluster and
// the session's greedy policy.
func (tc *TestContext) Requirement() Requirement {
	return ResolveRequirement(tc.ClusterUse, tc.Cluster, tc.failGreedy())
}

// ExpectedClusterSpec is the spec this test will consume, or false when it
// can't be determined.
func (tc *TestContext) ExpectedClusterSpec() (cluster.ResourceSpec, bool) {
	req := tc.Requirement()
	if req.Kind == Unresolved {
		return cluster.ResourceSpec{}, false
	}
	return req.Spec, true
}

// ExpectedNumNodes is how many nodes this test will consume. It is 0 both for
// tests that need no nodes and for Unresolved ones; use Requirement to tell
// them apart.
func (tc *TestContext) ExpectedNumNodes() int {
	if spec, ok := tc.ExpectedClusterSpec(); ok {
		return spec.Size()
	}
	return 0
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	badCharsRe   = regexp.MustCompile(`[^.\-=_\p{L}\p{N}\p{Mn}\p{Pc}]+`)
	dotsRe       = regexp.MustCompile(`\.+`)
	edgeDotRe    = regexp.MustCompile(`^\.|\.$`)
)

// escapePathname turns s into something usable as a single path component.
func escapePathname(s string) string {
	s = whitespaceRe.ReplaceAllString(s, "")
	s = badCharsRe.ReplaceAllString(s, ".")
	s = dotsRe.ReplaceAllString(s, ".")
	return edgeDotRe.ReplaceAllString(s, "")
}

// InjectedArgsName is the escaped "k=v.k=v" form of the injected args.
func (tc *TestContext) InjectedArgsName() string {
	if tc.InjectedArgs == nil {
		return ""
	}
	params := make([]string, 0, len(tc.InjectedArgs))
	for _, arg := range tc.InjectedArgs {
		params = append(params, fmt.Sprintf("%s=%s", arg.Key, arg.Value))
	}
	return escapePathname(strings.Join(params, "."))
}

// TestName is the dotted module, class, function and args of the test,
// skipping any that are empty.
func (tc *TestContext) TestName() string {
	parts := []string{}
	for _, p := range []string{tc.Module, tc.Class, tc.Function, tc.InjectedArgsName()} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

func (tc *TestContext) TestId() string {
	return tc.TestName()
}

func (tc *TestContext) LoggerName() string {
	if tc.TestIndex == nil {
		return tc.TestId()
	}
	return fmt.Sprintf("%s-%d", tc.TestId(), *tc.TestIndex)
}

// ResultsDir is where this test's logs and artifacts are written.
func (tc *TestContext) ResultsDir() string {
	d := ""
	if tc.Session != nil {
		d = tc.Session.ResultsDir
	}
	if tc.Class != "" {
		d = filepath.Join(d, tc.Class)
	}
	if tc.Function != "" {
		d = filepath.Join(d, tc.Function)
	}
	if tc.InjectedArgs != nil {
		d = filepath.Join(d, tc.InjectedArgsName())
	}
	if tc.TestIndex != nil {
		d = filepath.Join(d, strconv.Itoa(*tc.TestIndex))
	}
	return d
}

// TestMetadata describes the test for reports.
func (tc *TestContext) TestMetadata() map[string]interface{} {
	args := map[string]string{}
	for _, arg := range tc.InjectedArgs {
		args[arg.Key] = arg.Value
	}
	return map[string]interface{}{
		"directory":     filepath.Dir(tc.File),
		"file_name":     filepath.Base(tc.File),
		"cls_name":      tc.Class,
		"method_name":   tc.Function,
		"injected_args": args,
	}
}

// Logger returns the test's logger, creating its results dir and log files on
// first use. Entries at info and above go to InfoLogFile, everything goes to
// DebugLogFile, and warnings (or everything in debug sessions) reach the
// session console.
func (tc *TestContext) Logger() (*log.Entry, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.logger != nil {
		return tc.logger, nil
	}

	dir := tc.ResultsDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating results dir for %s", tc.TestId())
	}
	info, err := hooks.NewLevelFileHook(filepath.Join(dir, InfoLogFile), hooks.LevelsAtLeast(log.InfoLevel), nil)
	if err != nil {
		return nil, err
	}
	debug, err := hooks.NewLevelFileHook(filepath.Join(dir, DebugLogFile), hooks.LevelsAtLeast(log.DebugLevel), nil)
	if err != nil {
		info.Close()
		return nil, err
	}

	consoleLevel := log.WarnLevel
	console := ioutil.Discard
	if tc.Session != nil {
		if tc.Session.Debug {
			consoleLevel = log.DebugLevel
		}
		console = tc.Session.console()
	}

	l := log.New()
	l.Out = ioutil.Discard
	l.SetLevel(log.DebugLevel)
	l.AddHook(hooks.NewContextHook())
	l.AddHook(info)
	l.AddHook(debug)
	l.AddHook(hooks.NewLevelWriterHook(console, hooks.LevelsAtLeast(consoleLevel), nil))

	tc.logHooks = []*hooks.LevelWriterHook{info, debug}
	tc.logger = l.WithField("test", tc.LoggerName())
	return tc.logger, nil
}

// LocalScratchDir is a temporary directory for the test on the driver host,
// created on first use and removed by Close.
func (tc *TestContext) LocalScratchDir() (string, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.scratch == nil {
		d, err := temp.TempDirDefault()
		if err != nil {
			return "", err
		}
		tc.scratch = d
	}
	return tc.scratch.Dir, nil
}

// Close removes the scratch dir and closes the log files. The context can be
// closed more than once.
func (tc *TestContext) Close() error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	var err error
	if tc.scratch != nil {
		err = tc.scratch.Remove()
		tc.scratch = nil
	}
	for _, h := range tc.logHooks {
		if cerr := h.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	tc.logHooks = nil
	tc.logger = nil
	return err
}

func (tc *TestContext) String() string {
	spec := "Unresolved"
	if s, ok := tc.ExpectedClusterSpec(); ok {
		spec = s.String()
	}
	return fmt.Sprintf("<module=%s, cls=%s, function=%s, injected_args=%v, file=%s, ignore=%t, cluster_spec=%s>",
		tc.Module, tc.Class, tc.Function, tc.InjectedArgs, tc.File, tc.Ignore, spec)
}
