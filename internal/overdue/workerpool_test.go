package overdue

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool(t *testing.T) {
	tests := []struct {
		name       string
		numTasks   int
		numWorkers int
		failing    int
	}{
		{
			name:       "Simple tasks",
			numTasks:   5,
			numWorkers: 2,
		},
		{
			name:       "Error in task",
			numTasks:   3,
			numWorkers: 2,
			failing:    1,
		},
		{
			name:       "More workers than tasks",
			numTasks:   1,
			numWorkers: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wp := NewWorkerPool(tt.numWorkers)

			var executed, failed atomic.Int32
			for i := 0; i < tt.numTasks; i++ {
				i := i
				err := wp.AddTask(context.Background(), func() error {
					if i < tt.failing {
						failed.Add(1)
						return assert.AnError
					}
					time.Sleep(10 * time.Millisecond)
					executed.Add(1)
					return nil
				})
				require.NoError(t, err, "failed to add task to pool")
			}
			wp.Close()

			assert.Equal(t, int32(tt.numTasks-tt.failing), executed.Load())
			assert.Equal(t, int32(tt.failing), failed.Load())
		})
	}
}

func TestWorkerPool_AddTaskCanceled(t *testing.T) {
	wp := NewWorkerPool(1)
	defer wp.Close()

	block := make(chan struct{})
	require.NoError(t, wp.AddTask(context.Background(), func() error {
		<-block
		return nil
	}))
	// fills the buffer while the only worker is busy
	require.NoError(t, wp.AddTask(context.Background(), func() error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := wp.AddTask(ctx, func() error {
		t.Error("task should not be executed")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	close(block)
}

func TestWorkerPool_CloseTwice(t *testing.T) {
	wp := NewWorkerPool(0)
	wp.Close()
	assert.NotPanics(t, wp.Close)
}
