package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/testsched/common/errors"
	"github.com/twitter/testsched/common/log/hooks"
	"github.com/twitter/testsched/sched/cli"
)

func main() {
	log.AddHook(hooks.NewContextHook())
	client := cli.NewCLIClient(os.Stdout)
	if err := client.Exec(); err != nil {
		log.Error(err)
		os.Exit(int(errors.GetExitCode(err, errors.TestFailureExitCode)))
	}
}
