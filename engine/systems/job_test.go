package systems

import (
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestNewJobSystemValidates(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	require.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	require.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestRunWaitsForEveryTask(t *testing.T) {
	js, err := NewJobSystem(3, 0)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, js.Shutdown()) })

	var ran, completed atomic.Int32
	tasks := make([]JobTask, 8)
	for i := range tasks {
		tasks[i] = JobTask{
			Name:       "count",
			OnStart:    func() error { ran.Add(1); return nil },
			OnComplete: func() { completed.Add(1) },
		}
	}
	require.NoError(t, js.Run(tasks...))
	require.Equal(t, int32(8), ran.Load())
	require.Equal(t, int32(8), completed.Load())
}

func TestRunCombinesFailures(t *testing.T) {
	js, err := NewJobSystem(2, 4)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, js.Shutdown()) })

	boom := errors.New("boom")
	var failures atomic.Int32
	err = js.Run(
		JobTask{Name: "ok", OnStart: func() error { return nil }},
		JobTask{Name: "bad", OnStart: func() error { return boom }, OnFailure: func(error) { failures.Add(1) }},
	)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "job bad")
	require.Equal(t, int32(1), failures.Load())
}

func TestSubmitAfterShutdown(t *testing.T) {
	js, err := NewJobSystem(1, 0)
	require.NoError(t, err)
	require.NoError(t, js.Shutdown())
	require.NoError(t, js.Shutdown())
	require.ErrorIs(t, js.Submit(JobTask{OnStart: func() error { return nil }}), ErrJobSystemClosed)
}
