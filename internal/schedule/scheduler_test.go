package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingJob struct {
	mu      sync.Mutex
	runs    int
	block   chan struct{}
	lastCtx context.Context
}

func (j *recordingJob) Name() string { return "recording" }

func (j *recordingJob) Run(ctx context.Context) error {
	j.mu.Lock()
	j.runs++
	j.lastCtx = ctx
	j.mu.Unlock()
	if j.block != nil {
		<-j.block
	}
	return nil
}

func TestAddJobRejectsBadSpec(t *testing.T) {
	s := NewCronScheduler()
	require.Error(t, s.AddJob(&recordingJob{}, "not a cron spec"))
	require.Error(t, s.AddJob(&recordingJob{}, "* * * * * *"))
}

func TestAddJobAcceptsFiveFieldSpec(t *testing.T) {
	s := NewCronScheduler()
	require.NoError(t, s.AddJob(&recordingJob{}, "*/30 * * * *"))
}

func TestWrapSkipsOverlappingRuns(t *testing.T) {
	s := NewCronScheduler()
	s.ctx = context.Background()

	job := &recordingJob{block: make(chan struct{})}
	fn := s.wrap(job, "* * * * *")

	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()

	require.Eventually(t, func() bool {
		job.mu.Lock()
		defer job.mu.Unlock()
		return job.runs == 1
	}, time.Second, 5*time.Millisecond)

	// Second tick while the first run is still in flight is a no-op.
	fn()
	job.mu.Lock()
	require.Equal(t, 1, job.runs)
	job.mu.Unlock()

	close(job.block)
	<-done

	fn()
	job.mu.Lock()
	require.Equal(t, 2, job.runs)
	job.mu.Unlock()
}
