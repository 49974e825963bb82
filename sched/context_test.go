package sched

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapePathname(t *testing.T) {
	tests := map[string]string{
		"x=1.y=2":          "x=1.y=2",
		"a b\tc":           "abc",
		"x=[1, 2].y={'a'}": "x=.1.2.y=.a",
		"...x=1...":        "x=1",
		"path=/tmp/foo":    "path=.tmp.foo",
		"-_=":              "-_=",
		"":                 "",
		"name=café":        "name=café",
		"name=日本 語":        "name=日本語",
		"x=π→2":            "x=π.2",
	}
	for in, expected := range tests {
		assert.Equal(t, expected, escapePathname(in), in)
	}
}

func newContext(session *SessionContext) *TestContext {
	return &TestContext{
		Session:  session,
		Module:   "kafkatest.tests.core",
		Class:    "ReplicationTest",
		Function: "test_replication",
		File:     "/src/tests/core/replication_test.py",
	}
}

func TestNaming(t *testing.T) {
	tc := newContext(&SessionContext{ResultsDir: "/results/s1"})
	assert.Equal(t, "", tc.InjectedArgsName())
	assert.Equal(t, "kafkatest.tests.core.ReplicationTest.test_replication", tc.TestName())
	assert.Equal(t, tc.TestName(), tc.TestId())
	assert.Equal(t, tc.TestId(), tc.LoggerName())
	assert.Equal(t, "/results/s1/ReplicationTest/test_replication", tc.ResultsDir())

	tc.InjectedArgs = []InjectedArg{{"acks", "all"}, {"security protocol", "SASL SSL"}}
	assert.Equal(t, "acks=all.securityprotocol=SASLSSL", tc.InjectedArgsName())
	assert.Equal(t, "kafkatest.tests.core.ReplicationTest.test_replication.acks=all.securityprotocol=SASLSSL", tc.TestName())
	assert.Equal(t, "/results/s1/ReplicationTest/test_replication/acks=all.securityprotocol=SASLSSL", tc.ResultsDir())

	idx := 2
	tc.TestIndex = &idx
	assert.Equal(t, tc.TestId()+"-2", tc.LoggerName())
	assert.Equal(t, "/results/s1/ReplicationTest/test_replication/acks=all.securityprotocol=SASLSSL/2", tc.ResultsDir())
}

func TestNamingSkipsEmptyParts(t *testing.T) {
	tc := &TestContext{Function: "test_standalone"}
	assert.Equal(t, "test_standalone", tc.TestName())
	assert.Equal(t, "test_standalone", tc.ResultsDir())

	tc.InjectedArgs = []InjectedArg{}
	assert.Equal(t, "", tc.InjectedArgsName())
	assert.Equal(t, "test_standalone", tc.TestName())
}

func TestTestMetadata(t *testing.T) {
	tc := newContext(nil)
	tc.InjectedArgs = []InjectedArg{{"acks", "1"}}
	assert.Equal(t, map[string]interface{}{
		"directory":     "/src/tests/core",
		"file_name":     "replication_test.py",
		"cls_name":      "ReplicationTest",
		"method_name":   "test_replication",
		"injected_args": map[string]string{"acks": "1"},
	}, tc.TestMetadata())
}

func TestCopy(t *testing.T) {
	idx := 1
	tc := newContext(nil)
	tc.InjectedArgs = []InjectedArg{{"a", "1"}}
	tc.TestIndex = &idx
	n := 3
	tc.ClusterUse.NumNodes = &n

	c := tc.Copy()
	assert.Equal(t, tc.TestId(), c.TestId())
	assert.Equal(t, tc.LoggerName(), c.LoggerName())
	assert.Equal(t, 3, c.ExpectedNumNodes())

	c.InjectedArgs[0].Value = "2"
	*c.TestIndex = 5
	assert.Equal(t, "1", tc.InjectedArgs[0].Value)
	assert.Equal(t, 1, *tc.TestIndex)
}

func TestLoggerWritesLevelFiles(t *testing.T) {
	root, err := ioutil.TempDir("", "sched-test-")
	require.NoError(t, err)
	defer os.RemoveAll(root)

	var console bytes.Buffer
	tc := newContext(&SessionContext{ResultsDir: root, Console: &console})
	logger, err := tc.Logger()
	require.NoError(t, err)
	again, err := tc.Logger()
	require.NoError(t, err)
	assert.True(t, logger == again)

	logger.Debug("debug-line")
	logger.Info("info-line")
	logger.Warn("warn-line")
	require.NoError(t, tc.Close())

	info, err := ioutil.ReadFile(filepath.Join(tc.ResultsDir(), InfoLogFile))
	require.NoError(t, err)
	debug, err := ioutil.ReadFile(filepath.Join(tc.ResultsDir(), DebugLogFile))
	require.NoError(t, err)

	assert.NotContains(t, string(info), "debug-line")
	assert.Contains(t, string(info), "info-line")
	assert.Contains(t, string(debug), "debug-line")
	assert.Contains(t, string(debug), "warn-line")
	assert.Contains(t, string(debug), tc.LoggerName())

	assert.NotContains(t, console.String(), "info-line")
	assert.Contains(t, console.String(), "warn-line")
}

func TestLoggerDebugConsole(t *testing.T) {
	root, err := ioutil.TempDir("", "sched-test-")
	require.NoError(t, err)
	defer os.RemoveAll(root)

	var console bytes.Buffer
	tc := newContext(&SessionContext{ResultsDir: root, Console: &console, Debug: true})
	logger, err := tc.Logger()
	require.NoError(t, err)
	logger.Debug("debug-line")
	require.NoError(t, tc.Close())
	assert.Contains(t, console.String(), "debug-line")
}

func TestLoggerBadResultsDir(t *testing.T) {
	f, err := ioutil.TempFile("", "sched-test-")
	require.NoError(t, err)
	defer os.Remove(f.Name())
	f.Close()

	// results dir below a regular file can't be created
	tc := newContext(&SessionContext{ResultsDir: f.Name()})
	_, err = tc.Logger()
	assert.Error(t, err)
}

func TestLocalScratchDir(t *testing.T) {
	tc := newContext(nil)
	dir, err := tc.LocalScratchDir()
	require.NoError(t, err)
	again, err := tc.LocalScratchDir()
	require.NoError(t, err)
	assert.Equal(t, dir, again)

	_, err = os.Stat(dir)
	require.NoError(t, err)

	require.NoError(t, tc.Close())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, tc.Close())
}

func TestNewSessionContext(t *testing.T) {
	s, err := NewSessionContext("/results", true, false)
	require.NoError(t, err)
	assert.NotEmpty(t, s.SessionId)
	assert.Equal(t, filepath.Join("/results", string(s.SessionId)), s.ResultsDir)
	assert.True(t, s.FailGreedyTests)

	other, err := NewSessionContext("/results", true, false)
	require.NoError(t, err)
	assert.NotEqual(t, s.SessionId, other.SessionId)
}
