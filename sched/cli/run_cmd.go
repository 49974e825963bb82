package cli

/**
implements the command line entry for the run command
*/

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/twitter/testsched/common/client"
	"github.com/twitter/testsched/common/errors"
	"github.com/twitter/testsched/runner"
	"github.com/twitter/testsched/runner/launchers"
	"github.com/twitter/testsched/sched/config"
	"github.com/twitter/testsched/sched/plan"
)

// ReportFile is written to the session results directory after every run.
const ReportFile = "report.json"

type runCmd struct {
	planFile   string
	resultsDir string
}

func (c *runCmd) RegisterFlags() *cobra.Command {
	r := &cobra.Command{
		Use:   "run",
		Short: "Run a test plan on the configured cluster with simulated tests",
	}
	r.Flags().StringVar(&c.planFile, "plan", "", "YAML test plan")
	r.Flags().StringVar(&c.resultsDir, "results_dir", "", "Override the session results directory")
	return r
}

func (c *runCmd) Run(cl *client.SimpleClient, cmd *cobra.Command, args []string) error {
	configs, err := config.GetConfigs(cl.ConfigSelector)
	if err != nil {
		return errors.NewError(err, errors.ConfigFailureExitCode)
	}
	if c.resultsDir != "" {
		configs.Session.ResultsDir = c.resultsDir
	}
	log.Infof("Running with configs: %s", configs)

	p, err := loadPlan(c.planFile)
	if err != nil {
		return err
	}

	cluster, err := configs.Cluster.CreateCluster()
	if err != nil {
		return errors.NewError(err, errors.ConfigFailureExitCode)
	}
	opts, err := configs.Driver.CreateDriverOptions()
	if err != nil {
		return errors.NewError(err, errors.ConfigFailureExitCode)
	}
	stat, err := configs.Stats.CreateStatsReceiver()
	if err != nil {
		return errors.NewError(err, errors.ConfigFailureExitCode)
	}
	session, err := configs.Session.CreateSessionContext()
	if err != nil {
		return errors.NewError(err, errors.ConfigFailureExitCode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	launcher := launchers.NewSimLauncher(p.Behaviors(), plan.Behavior{})
	driver := runner.NewDriver(cluster, launcher, opts, stat)
	rs, runErr := driver.Run(ctx, p.Contexts(session, cluster))

	for _, r := range rs {
		fmt.Fprintln(cl.Out, r)
	}
	fmt.Fprintln(cl.Out, rs.Summary())
	if err := writeReport(session.ResultsDir, rs); err != nil {
		log.Errorf("Couldn't write report: %v", err)
	}
	if rendered := stat.Render(configs.Stats.Pretty); len(rendered) > 0 {
		fmt.Fprintln(cl.Out, string(rendered))
	}

	switch {
	case runErr == runner.ErrDeadlock:
		return errors.NewError(runErr, errors.DeadlockExitCode)
	case runErr != nil:
		return errors.NewError(runErr, errors.CancelledExitCode)
	case !rs.Ok():
		return errors.NewError(fmt.Errorf("%d of %d tests failed", rs.Summary().Failed, len(rs)), errors.TestFailureExitCode)
	}
	return nil
}

func writeReport(dir string, rs runner.Results) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, ReportFile))
	if err != nil {
		return err
	}
	defer f.Close()
	return rs.WriteJSON(f)
}
