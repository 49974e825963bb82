package config

// SessionConfigs are the configurations selectable by name.
// !!! add new configurations to this map !!!
var SessionConfigs = map[string]string{
	"default":      defaultConfig,
	"local.memory": localMemory,
	"local.strict": localStrict,
}

// defaultConfig supplies every section a configuration leaves without a Type.
const defaultConfig = `{
  "Cluster": {
    "Type": "memory",
    "Count": 10
  },
  "Session": {
    "Type": "local",
    "ResultsDir": "results",
    "FailGreedyTests": false,
    "Debug": false
  },
  "Driver": {
    "Type": "greedy",
    "LaunchRatePerSec": 0,
    "LaunchBurst": 1,
    "StallInitialInterval": "100ms",
    "StallMaxWait": "30s"
  },
  "Stats": {
    "Type": "default",
    "Pretty": true
  }
}`

// localMemory runs everything in process on a small in-memory cluster.
const localMemory = `{
  "Cluster": {
    "Type": "memory",
    "Count": 5
  },
  "Driver": {
    "Type": "greedy",
    "LaunchRatePerSec": 10,
    "LaunchBurst": 5,
    "StallInitialInterval": "50ms",
    "StallMaxWait": "5s"
  }
}`

// localStrict refuses to guess the size of tests that declare none.
const localStrict = `{
  "Cluster": {
    "Type": "memory",
    "Count": 5
  },
  "Session": {
    "Type": "local",
    "ResultsDir": "results",
    "FailGreedyTests": true,
    "Debug": false
  }
}`
