package cli

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	commoncli "github.com/twitter/testsched/common/client"
)

// TestschedCLIClient includes fields required for CLI client handling
type TestschedCLIClient struct {
	commoncli.SimpleClient
}

func (c *TestschedCLIClient) Exec() error {
	return c.RootCmd.Execute()
}

// NewCLIClient builds the testsched command tree. Command output goes to out,
// os.Stdout if nil.
func NewCLIClient(out io.Writer) commoncli.CLIClient {
	if out == nil {
		out = os.Stdout
	}
	c := &TestschedCLIClient{}
	c.Out = out

	c.RootCmd = &cobra.Command{
		Use:               "testsched",
		Short:             "testsched schedules test sessions on a cluster, largest tests first",
		PersistentPreRunE: c.Init,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	c.RootCmd.SetOutput(out)
	c.RootCmd.PersistentFlags().StringVar(&c.LogLevel, "log_level", "info", "Log everything at this level and above (error|info|debug)")
	c.RootCmd.PersistentFlags().StringVar(&c.ConfigSelector, "config", "local.memory", "Named session config or path to a JSON config file")

	c.addCmd(&planCmd{})
	c.addCmd(&runCmd{})

	return c
}

// Can only be called from cobra command run or hook
func (c *TestschedCLIClient) Init(cmd *cobra.Command, args []string) error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Error(err)
		return err
	}
	log.SetLevel(level)
	return nil
}

func (c *TestschedCLIClient) addCmd(cmd commoncli.Cmd) {
	cobraCmd := cmd.RegisterFlags()
	cobraCmd.RunE = func(innerCmd *cobra.Command, args []string) error {
		return cmd.Run(&c.SimpleClient, innerCmd, args)
	}
	c.RootCmd.AddCommand(cobraCmd)
}
