// Package plan reads the list of tests a session should run.
//
//	tests:
//	  - module: kafkatest.tests.core
//	    class: ReplicationTest
//	    function: test_replication
//	    injected_args: [{key: acks, value: all}]
//	    cluster_size: 3
//	    duration: 2s
package plan

import (
	"fmt"
	"io/ioutil"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/twitter/testsched/cloud/cluster"
	"github.com/twitter/testsched/sched"
)

// Plan is an ordered list of test declarations.
type Plan struct {
	Tests []TestDecl `yaml:"tests"`
}

// TestDecl declares one test. ClusterSpec, when present, wins over ClusterSize.
type TestDecl struct {
	Module       string            `yaml:"module"`
	Class        string            `yaml:"class"`
	Function     string            `yaml:"function"`
	File         string            `yaml:"file"`
	Description  string            `yaml:"description"`
	InjectedArgs []InjectedArgDecl `yaml:"injected_args"`
	ClusterSize  *int              `yaml:"cluster_size"`
	ClusterSpec  map[string]int    `yaml:"cluster_spec"`
	Ignore       bool              `yaml:"ignore"`

	// How the simulated launcher behaves for this test.
	Duration time.Duration `yaml:"duration"`
	Fail     bool          `yaml:"fail"`
}

type InjectedArgDecl struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Behavior is what a simulated run of a test does.
type Behavior struct {
	Duration time.Duration
	Fail     bool
}

// Load reads and validates the plan at path.
func Load(path string) (*Plan, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading plan %s", path)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "plan %s", path)
	}
	return p, nil
}

// Parse decodes and validates a plan.
func Parse(data []byte) (*Plan, error) {
	p := &Plan{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, errors.Wrap(err, "parsing plan")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate reports every problem in the plan, not just the first.
func (p *Plan) Validate() error {
	var err error
	seen := map[string]int{}
	for i, d := range p.Tests {
		id := d.context(nil, nil).TestId()
		if d.Function == "" {
			err = multierr.Append(err, fmt.Errorf("test #%d (%s): missing function", i, id))
		}
		if d.ClusterSize != nil && *d.ClusterSize < 0 {
			err = multierr.Append(err, fmt.Errorf("test #%d (%s): negative cluster_size %d", i, id, *d.ClusterSize))
		}
		for _, os := range sortedKeys(d.ClusterSpec) {
			if !supportedOS(os) {
				err = multierr.Append(err, fmt.Errorf("test #%d (%s): unknown node type %q in cluster_spec, supported are %v",
					i, id, os, cluster.SupportedOS))
			}
			if n := d.ClusterSpec[os]; n < 0 {
				err = multierr.Append(err, fmt.Errorf("test #%d (%s): negative count %d for %s in cluster_spec", i, id, n, os))
			}
		}
		if d.Duration < 0 {
			err = multierr.Append(err, fmt.Errorf("test #%d (%s): negative duration %s", i, id, d.Duration))
		}
		if prev, ok := seen[id]; ok {
			err = multierr.Append(err, fmt.Errorf("test #%d: duplicate test id %s, first declared as test #%d", i, id, prev))
		} else {
			seen[id] = i
		}
	}
	return err
}

// Contexts builds a TestContext per declared test, in declaration order.
// Ignored tests are included with Ignore set. c may be a nil interface for a
// session without a cluster; a typed nil pointer is a cluster and must read as
// one with no nodes.
func (p *Plan) Contexts(session *sched.SessionContext, c cluster.Cluster) []*sched.TestContext {
	tcs := make([]*sched.TestContext, 0, len(p.Tests))
	for _, d := range p.Tests {
		tcs = append(tcs, d.context(session, c))
	}
	return tcs
}

// Behaviors maps test ids to their simulated behavior.
func (p *Plan) Behaviors() map[string]Behavior {
	b := map[string]Behavior{}
	for _, d := range p.Tests {
		b[d.context(nil, nil).TestId()] = Behavior{Duration: d.Duration, Fail: d.Fail}
	}
	return b
}

func (d TestDecl) context(session *sched.SessionContext, c cluster.Cluster) *sched.TestContext {
	tc := &sched.TestContext{
		Session:     session,
		Cluster:     c,
		Module:      d.Module,
		Class:       d.Class,
		Function:    d.Function,
		File:        d.File,
		Description: d.Description,
		Ignore:      d.Ignore,
	}
	if d.InjectedArgs != nil {
		tc.InjectedArgs = make([]sched.InjectedArg, 0, len(d.InjectedArgs))
		for _, a := range d.InjectedArgs {
			tc.InjectedArgs = append(tc.InjectedArgs, sched.InjectedArg{Key: a.Key, Value: a.Value})
		}
	}
	if d.ClusterSpec != nil {
		spec := cluster.FromTypeCounts(d.ClusterSpec)
		tc.ClusterUse.Spec = &spec
	}
	if d.ClusterSize != nil {
		n := *d.ClusterSize
		tc.ClusterUse.NumNodes = &n
	}
	return tc
}

func supportedOS(os string) bool {
	for _, s := range cluster.SupportedOS {
		if s == os {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
