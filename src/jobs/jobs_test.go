package jobs

import (
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackerCancelAndWait(t *testing.T) {
	t.Run("finishes fast enough", func(t *testing.T) {
		testJobs := Jobs{
			FakeJob("Job A", time.Millisecond*100),
			FakeJob("Job B", time.Millisecond*200),
		}

		before := time.Now()
		unfinished := testJobs.CancelAndWait(time.Second * 1)
		after := time.Now()
		assert.WithinDuration(t, after, before, time.Millisecond*500, "tracker.Finish did not finish fast enough")
		assert.Len(t, unfinished, 0)
	})
	t.Run("reports unfinished jobs", func(t *testing.T) {
		testJobs := Jobs{
			FakeJob("Job A", time.Millisecond*100),
			FakeJob("Job B", time.Second*10),
		}

		unfinished := testJobs.CancelAndWait(time.Second * 1)
		assert.Equal(t, []string{"Job B"}, unfinished)
	})
}

func TestRun(t *testing.T) {
	var ran atomic.Bool
	job := Run("work", func(job *Job) {
		ran.Store(true)
	})
	select {
	case <-job.Finished():
	case <-time.After(time.Second):
		t.Fatal("job never finished")
	}
	assert.True(t, ran.Load())

	panicky := Run("panicky", func(job *Job) {
		panic("oh no")
	})
	select {
	case <-panicky.Finished():
	case <-time.After(time.Second):
		t.Fatal("panicking job never finished")
	}
}

func TestCancelOnInterrupt(t *testing.T) {
	t.Run("no interrupt", func(t *testing.T) {
		job := Run("quick", func(job *Job) {})
		signals := make(chan os.Signal, 1)
		Jobs{job}.CancelOnInterrupt(signals, time.Second, func() { t.Fatal("should not force quit") })
	})
	t.Run("interrupt cancels", func(t *testing.T) {
		job := Run("waits for cancel", func(job *Job) {
			<-job.Canceled()
		})
		signals := make(chan os.Signal, 1)
		signals <- os.Interrupt
		Jobs{job}.CancelOnInterrupt(signals, time.Second, func() { t.Fatal("should not force quit") })
		assert.Empty(t, Jobs{job}.ListUnfinished())
	})
	t.Run("stuck job forces quit", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		job := Run("stuck", func(job *Job) {
			<-release
		})
		signals := make(chan os.Signal, 1)
		signals <- os.Interrupt
		var forced atomic.Bool
		Jobs{job}.CancelOnInterrupt(signals, 50*time.Millisecond, func() { forced.Store(true) })
		assert.True(t, forced.Load())
	})
}

func FakeJob(name string, timeout time.Duration) *Job {
	job := New(name)
	go func() {
		<-job.Ctx.Done()
		timer := time.NewTimer(timeout)
		<-timer.C
		job.Finish()
	}()
	return job
}
