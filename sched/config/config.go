// Package config holds the named session configurations and turns them into
// the cluster, session and driver a run needs.
package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/testsched/cloud/cluster"
	"github.com/twitter/testsched/cloud/cluster/memory"
	"github.com/twitter/testsched/common/stats"
	"github.com/twitter/testsched/runner"
	"github.com/twitter/testsched/sched"
)

// JSONConfigs is a full configuration as read from JSON. Each section whose
// Type is empty is taken from the "default" configuration.
type JSONConfigs struct {
	Cluster ClusterJSONConfig `json:"Cluster"`
	Session SessionJSONConfig `json:"Session"`
	Driver  DriverJSONConfig  `json:"Driver"`
	Stats   StatsJSONConfig   `json:"Stats"`
}

func (c JSONConfigs) String() string {
	return fmt.Sprintf("\n%s\n%s\n%s\n%s", c.Cluster, c.Session, c.Driver, c.Stats)
}

type ClusterJSONConfig struct {
	Type  string `json:"Type"`  // cluster type: memory
	Count int    `json:"Count"` // number of nodes
}

func (c ClusterJSONConfig) String() string {
	return fmt.Sprintf("ClusterJSONConfig: Type: %s, Count: %d", c.Type, c.Count)
}

type SessionJSONConfig struct {
	Type            string `json:"Type"`            // session type: local
	ResultsDir      string `json:"ResultsDir"`      // default to ./results
	FailGreedyTests bool   `json:"FailGreedyTests"` // default to false
	Debug           bool   `json:"Debug"`           // default to false
}

func (c SessionJSONConfig) String() string {
	return fmt.Sprintf("SessionJSONConfig: Type: %s, ResultsDir: %s, FailGreedyTests: %t, Debug: %t",
		c.Type, c.ResultsDir, c.FailGreedyTests, c.Debug)
}

type DriverJSONConfig struct {
	Type                 string  `json:"Type"`                 // driver type: greedy
	LaunchRatePerSec     float64 `json:"LaunchRatePerSec"`     // default to 0, unlimited
	LaunchBurst          int     `json:"LaunchBurst"`          // default to 1
	StallInitialInterval string  `json:"StallInitialInterval"` // default to 100ms
	StallMaxWait         string  `json:"StallMaxWait"`         // default to 30s
}

func (c DriverJSONConfig) String() string {
	return fmt.Sprintf("DriverJSONConfig: Type: %s, LaunchRatePerSec: %g, LaunchBurst: %d, StallInitialInterval: %s, StallMaxWait: %s",
		c.Type, c.LaunchRatePerSec, c.LaunchBurst, c.StallInitialInterval, c.StallMaxWait)
}

type StatsJSONConfig struct {
	Type   string `json:"Type"`   // stats type: default, nil
	Pretty bool   `json:"Pretty"` // indent rendered stats
}

func (c StatsJSONConfig) String() string {
	return fmt.Sprintf("StatsJSONConfig: Type: %s, Pretty: %t", c.Type, c.Pretty)
}

// GetConfigText returns the JSON of a named configuration.
func GetConfigText(configSelector string) ([]byte, error) {
	configText, ok := SessionConfigs[configSelector]
	if !ok {
		keys := make([]string, 0, len(SessionConfigs))
		for k := range SessionConfigs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("invalid configuration %s, supported values are %v", configSelector, keys)
	}

	return []byte(configText), nil
}

// GetConfigs reads a named configuration or, failing that, a JSON file at
// that path, and fills sections without a Type from "default".
func GetConfigs(configSelector string) (*JSONConfigs, error) {
	defaultConfigText, _ := GetConfigText("default")
	defaultConfig := &JSONConfigs{}
	if err := json.Unmarshal(defaultConfigText, defaultConfig); err != nil {
		return nil, errors.Wrap(err, "couldn't parse the default config")
	}

	configText, err := GetConfigText(configSelector)
	if err != nil {
		if _, statErr := os.Stat(configSelector); statErr != nil {
			return nil, err
		}
		if configText, err = ioutil.ReadFile(configSelector); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", configSelector)
		}
	}

	configs := &JSONConfigs{}
	if err := json.Unmarshal(configText, configs); err != nil {
		return nil, errors.Wrapf(err, "couldn't parse top-level config %s", configSelector)
	}

	if configs.Cluster.Type == "" {
		log.Infof("using default Cluster config")
		configs.Cluster = defaultConfig.Cluster
	}
	if configs.Session.Type == "" {
		log.Infof("using default Session config")
		configs.Session = defaultConfig.Session
	}
	if configs.Driver.Type == "" {
		log.Infof("using default Driver config")
		configs.Driver = defaultConfig.Driver
	}
	if configs.Stats.Type == "" {
		log.Infof("using default Stats config")
		configs.Stats = defaultConfig.Stats
	}
	return configs, nil
}

// CreateCluster builds the cluster tests are scheduled on.
func (c *ClusterJSONConfig) CreateCluster() (cluster.Cluster, error) {
	switch c.Type {
	case "memory":
		if c.Count < 0 {
			return nil, fmt.Errorf("invalid memory cluster size %d", c.Count)
		}
		return memory.NewClusterOfSize(c.Count), nil
	default:
		return nil, fmt.Errorf("unknown cluster type %q", c.Type)
	}
}

// CreateSessionContext starts a new session with results under ResultsDir.
func (c *SessionJSONConfig) CreateSessionContext() (*sched.SessionContext, error) {
	if c.Type != "local" {
		return nil, fmt.Errorf("unknown session type %q", c.Type)
	}
	dir := c.ResultsDir
	if dir == "" {
		dir = "results"
	}
	return sched.NewSessionContext(dir, c.FailGreedyTests, c.Debug)
}

// CreateDriverOptions parses the driver section into runner.Options.
func (c *DriverJSONConfig) CreateDriverOptions() (runner.Options, error) {
	opts := runner.Options{
		LaunchRatePerSec: c.LaunchRatePerSec,
		LaunchBurst:      c.LaunchBurst,
	}
	if c.Type != "greedy" {
		return opts, fmt.Errorf("unknown driver type %q", c.Type)
	}
	var err error
	if c.StallInitialInterval != "" {
		if opts.StallInitialInterval, err = time.ParseDuration(c.StallInitialInterval); err != nil {
			return opts, errors.Wrap(err, "parsing StallInitialInterval")
		}
	}
	if c.StallMaxWait != "" {
		if opts.StallMaxWait, err = time.ParseDuration(c.StallMaxWait); err != nil {
			return opts, errors.Wrap(err, "parsing StallMaxWait")
		}
	}
	return opts, nil
}

// CreateStatsReceiver returns where the run records its metrics.
func (c *StatsJSONConfig) CreateStatsReceiver() (stats.StatsReceiver, error) {
	switch c.Type {
	case "default":
		return stats.DefaultStatsReceiver(), nil
	case "nil":
		return stats.NilStatsReceiver(), nil
	default:
		return nil, fmt.Errorf("unknown stats type %q", c.Type)
	}
}
