package async

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RunnerWait(t *testing.T) {
	r := NewRunner()
	results := map[string]error{}

	r.RunAsync(func() error { return nil }, func(err error) { results["a"] = err })
	r.RunAsync(func() error { return errors.New("boom") }, func(err error) { results["b"] = err })
	assert.Equal(t, 2, r.NumRunning())

	ctx := context.Background()
	for r.NumRunning() > 0 {
		require.NoError(t, r.Wait(ctx))
	}
	assert.Len(t, results, 2)
	assert.NoError(t, results["a"])
	assert.EqualError(t, results["b"], "boom")
}

func Test_RunnerWaitNothingRunning(t *testing.T) {
	r := NewRunner()
	assert.NoError(t, r.Wait(context.Background()))
}

func Test_RunnerWaitCancelled(t *testing.T) {
	r := NewRunner()
	release := make(chan struct{})
	ran := false
	r.RunAsync(func() error { <-release; return nil }, func(error) { ran = true })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Equal(t, context.DeadlineExceeded, r.Wait(ctx))
	assert.False(t, ran)
	assert.Equal(t, 1, r.NumRunning())

	close(release)
	require.NoError(t, r.Wait(context.Background()))
	assert.True(t, ran)
	assert.Equal(t, 0, r.NumRunning())
}

// Callbacks only run on the goroutine calling Wait, so the counter needs no lock.
func Test_RunnerCallbacksOnCaller(t *testing.T) {
	r := NewRunner()
	count := 0
	for i := 0; i < 50; i++ {
		r.RunAsync(func() error { return nil }, func(error) { count++ })
	}
	for r.NumRunning() > 0 {
		require.NoError(t, r.Wait(context.Background()))
	}
	assert.Equal(t, 50, count)
}
