package cli

/**
implements the command line entry for the plan command
*/

import (
	"fmt"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/twitter/testsched/common/client"
	"github.com/twitter/testsched/common/errors"
	"github.com/twitter/testsched/sched"
	"github.com/twitter/testsched/sched/config"
	"github.com/twitter/testsched/sched/plan"
	"github.com/twitter/testsched/sched/scheduler"
)

type planCmd struct {
	planFile        string
	failGreedyTests bool
}

func (c *planCmd) RegisterFlags() *cobra.Command {
	r := &cobra.Command{
		Use:   "plan",
		Short: "Show each test's node requirement and the order an idle cluster would run them in",
	}
	r.Flags().StringVar(&c.planFile, "plan", "", "YAML test plan")
	r.Flags().BoolVar(&c.failGreedyTests, "fail_greedy_tests", false, "Don't assume tests without a declared size need the whole cluster")
	return r
}

func (c *planCmd) Run(cl *client.SimpleClient, cmd *cobra.Command, args []string) error {
	configs, err := config.GetConfigs(cl.ConfigSelector)
	if err != nil {
		return errors.NewError(err, errors.ConfigFailureExitCode)
	}
	cluster, err := configs.Cluster.CreateCluster()
	if err != nil {
		return errors.NewError(err, errors.ConfigFailureExitCode)
	}
	p, err := loadPlan(c.planFile)
	if err != nil {
		return err
	}
	log.Infof("Planning %d tests on %d nodes", len(p.Tests), cluster.TotalNodes())

	// No results are written, the session only carries the policy.
	session := &sched.SessionContext{FailGreedyTests: configs.Session.FailGreedyTests || c.failGreedyTests}
	tcs := p.Contexts(session, cluster)

	w := tabwriter.NewWriter(cl.Out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "TEST\tREQUIREMENT\tNODES")
	units := []scheduler.TestUnit{}
	for _, tc := range tcs {
		req := tc.Requirement()
		if tc.Ignore {
			fmt.Fprintf(w, "%s\t%s\t%s\n", tc.TestId(), req, "ignored")
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", tc.TestId(), req, tc.ExpectedNumNodes())
		if req.Kind != sched.Unresolved {
			units = append(units, tc)
		}
	}
	w.Flush()

	s := scheduler.NewScheduler(units, cluster, nil, nil)
	if u := s.Unschedulable(); len(u) > 0 {
		fmt.Fprintf(cl.Out, "\nUnschedulable on %d nodes:\n", cluster.TotalNodes())
		for _, tc := range u {
			fmt.Fprintf(cl.Out, "  %s (%d nodes)\n", tc.TestId(), tc.ExpectedNumNodes())
		}
	}
	fmt.Fprintln(cl.Out, "\nOrder on an idle cluster:")
	for i, tc := range s.Pending() {
		fmt.Fprintf(cl.Out, "  %d. %s (%d nodes)\n", i+1, tc.TestId(), tc.ExpectedNumNodes())
	}
	return nil
}

func loadPlan(path string) (*plan.Plan, error) {
	if path == "" {
		return nil, errors.NewError(fmt.Errorf("--plan is required"), errors.PlanFailureExitCode)
	}
	p, err := plan.Load(path)
	if err != nil {
		return nil, errors.NewError(err, errors.PlanFailureExitCode)
	}
	return p, nil
}
