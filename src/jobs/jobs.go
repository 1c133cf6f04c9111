package jobs

import (
	"context"
	"os"
	"time"

	"git.handmade.network/hmn/pngscope/src/logging"
	"github.com/rs/zerolog"
)

/*
 * This package runs long batch work (storing a directory full of PNGs, say)
 * in a way that can be canceled cleanly. A Job's context is canceled when the
 * user interrupts; the job stops taking new work, finishes what it has, and
 * calls Finish.
 */

// A Job tracks one piece of background work.
type Job struct {
	Name   string
	Ctx    context.Context
	Logger zerolog.Logger
	cancel func()
	done   chan struct{}
}

func New(name string) *Job {
	return NewWithContext(context.Background(), name)
}

func NewWithContext(parent context.Context, name string) *Job {
	logger := logging.With().Str("job", name).Logger()
	ctx, cancel := context.WithCancel(parent)
	ctx = logging.AttachLoggerToContext(&logger, ctx)
	return &Job{
		Name:   name,
		Ctx:    ctx,
		Logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Run starts f in a goroutine and finishes the job when f returns.
func Run(name string, f func(job *Job)) *Job {
	job := New(name)
	go func() {
		defer job.Finish()
		defer logging.LogPanics(&job.Logger)
		f(job)
	}()
	return job
}

// Sends a cancel signal to the Job. Expected to be called from outside the
// job.
func (j *Job) Cancel() {
	j.cancel()
}

// Returns a channel that is closed once Cancel has been called.
func (j *Job) Canceled() <-chan struct{} {
	return j.Ctx.Done()
}

// Marks the Job as finished. Expected to be called by the job itself.
func (j *Job) Finish() *Job {
	close(j.done)
	return j
}

// Returns a channel that is closed once the Job has called Finish.
func (j *Job) Finished() <-chan struct{} {
	return j.done
}

// A utility for running and canceling multiple jobs at once. Because this type
// is simply a slice of Jobs, you can construct it using normal slice syntax.
type Jobs []*Job

// Cancels all tracked jobs, giving them a chance to finish gracefully. Will
// return when all jobs finish or when the timeout expires, whichever comes
// first. Returns a list of all jobs that did not finish on time.
func (jobs Jobs) CancelAndWait(timeout time.Duration) []string {
	allDoneChan := make(chan struct{})
	for _, job := range jobs {
		job.Cancel()
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	go func() {
		for _, job := range jobs {
			<-job.Finished()
		}
		close(allDoneChan)
	}()

	select {
	case <-timer.C:
		return jobs.ListUnfinished()
	case <-allDoneChan:
		return nil
	}
}

// Wait blocks until every job has finished.
func (jobs Jobs) Wait() {
	for _, job := range jobs {
		<-job.Finished()
	}
}

func (jobs Jobs) ListUnfinished() []string {
	unfinished := []string{}
	for _, job := range jobs {
		select {
		case <-job.Finished():
			continue
		default:
			unfinished = append(unfinished, job.Name)
		}
	}
	return unfinished
}

/*
CancelOnInterrupt watches signals while the jobs run. The first signal cancels
every job and waits up to timeout for them to wrap up; a second signal calls
forceQuit. It returns once all jobs have finished.
*/
func (jobs Jobs) CancelOnInterrupt(signals <-chan os.Signal, timeout time.Duration, forceQuit func()) {
	allDone := make(chan struct{})
	go func() {
		jobs.Wait()
		close(allDone)
	}()

	select {
	case <-allDone:
		return
	case <-signals:
	}

	logging.Info().Msg("Interrupted; finishing files in progress")
	go func() {
		select {
		case <-signals:
			logging.Warn().Strs("Unfinished", jobs.ListUnfinished()).Msg("Forcibly stopped")
			forceQuit()
		case <-allDone:
		}
	}()

	unfinished := jobs.CancelAndWait(timeout)
	if len(unfinished) > 0 {
		logging.Warn().Strs("Unfinished", unfinished).Msg("Jobs did not finish by the deadline")
		forceQuit()
	}
}
