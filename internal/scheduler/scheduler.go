// Package scheduler implements the fixed worker pool that drains the
// concurrent task queue and dispatches each task to the first idle
// worker, honoring pause/resume and a shutdown kill flag.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dagscheduler/dagscheduler/internal/identifier"
	"github.com/dagscheduler/dagscheduler/internal/logging"
	"github.com/dagscheduler/dagscheduler/internal/queue"
	"github.com/dagscheduler/dagscheduler/internal/task"
	"github.com/dagscheduler/dagscheduler/internal/worker"
)

// PoolSize is the scheduler's fixed worker count.
const PoolSize = 10

// refreshInterval is the dispatch loop's queue poll period.
const refreshInterval = 5 * time.Millisecond

// Scheduler pulls tasks from its queue and assigns each to the first
// idle worker in a fixed-size pool. A Scheduler is not copyable once
// Startup has been called.
type Scheduler struct {
	log   *logging.Logger
	queue *queue.Queue

	poolMu sync.Mutex
	pool   [PoolSize]*worker.Worker

	idleMu   sync.Mutex
	idleCond sync.Cond

	pause atomic.Bool
	kill  atomic.Bool

	// outstanding counts tasks that have been queued but have not yet
	// either finished running (successfully, with a stage failure, or
	// interrupted — Complete is called in all three cases) or been
	// dropped without running (killed while still queued, or killed at
	// dispatch time because the scheduler is shutting down). Wait uses
	// it to provide callers an actual completion barrier, since
	// dag.ProcessDAG's batch emission deliberately does not block on
	// task completion itself.
	outstanding atomic.Int64
}

// New constructs a scheduler with a fresh, empty queue and a fully
// idle worker pool. The returned scheduler starts paused and killed;
// Startup clears both flags.
func New(log *logging.Logger) *Scheduler {
	if log == nil {
		log = logging.Discard()
	}
	s := &Scheduler{log: log, queue: queue.New()}
	s.idleCond.L = &s.idleMu
	s.pause.Store(true)
	s.kill.Store(true)

	for i := range s.pool {
		s.pool[i] = worker.New(log, s.notifyIdle)
	}
	return s
}

// broadcastIdle wakes every goroutine waiting on the idle condition
// variable, without implying that a task resolved. Used both by the
// outstanding-task bookkeeping below and by waitForIdleOrTimeout's own
// timeout fallback, which must wake waiters periodically regardless of
// task completion.
func (s *Scheduler) broadcastIdle() {
	s.idleMu.Lock()
	s.idleCond.Broadcast()
	s.idleMu.Unlock()
}

// notifyIdle is the worker pool's onIdle hook: it fires exactly once
// per task a worker finishes running (success, stage failure, or
// interruption all call Task.Complete before the worker goes idle), so
// it doubles as the "one more task resolved" signal for Wait.
func (s *Scheduler) notifyIdle() {
	s.outstanding.Add(-1)
	s.broadcastIdle()
}

// decrementOutstanding records a queued task resolving without ever
// reaching a worker (killed while still queued, or killed at dispatch
// time because the scheduler is shutting down), waking any Wait
// callers so they can recheck whether the drain is complete.
func (s *Scheduler) decrementOutstanding() {
	s.outstanding.Add(-1)
	s.broadcastIdle()
}

// Startup clears the pause and kill flags and runs the dispatch loop
// until ctx is cancelled or Shutdown is called. It blocks for the
// lifetime of the scheduler; callers typically run it on its own
// goroutine.
func (s *Scheduler) Startup(ctx context.Context) error {
	s.pause.Store(false)
	s.kill.Store(false)

	for {
		if s.kill.Load() || ctx.Err() != nil {
			return ctx.Err()
		}

		if s.pause.Load() {
			time.Sleep(refreshInterval)
			continue
		}

		next, ok := s.queue.WaitForAndPop(refreshInterval)
		if !ok {
			continue
		}

		s.log.Info("next task", "task", next.Label())
		s.dispatch(ctx, next)
	}
}

// dispatch blocks, without busy-spinning, until next is either handed
// to an idle worker, killed because the scheduler is shutting down, or
// held because the scheduler is paused — a paused scheduler retains
// the popped task rather than re-enqueueing it, so task order is
// preserved across a pause/resume cycle.
func (s *Scheduler) dispatch(ctx context.Context, next *task.Task) {
	for {
		if s.kill.Load() {
			next.Kill()
			s.decrementOutstanding()
			return
		}

		if !s.pause.Load() {
			if w := s.firstIdleWorker(); w != nil {
				if s.kill.Load() {
					next.Kill()
					s.decrementOutstanding()
					return
				}
				w.SetTaskAndRun(ctx, next)
				return
			}
		}

		s.waitForIdleOrTimeout(refreshInterval)
	}
}

// waitForIdleOrTimeout blocks on the idle condition variable, waking
// early whenever a worker finishes a task, and unconditionally after
// timeout so paused/kill transitions are still observed promptly.
func (s *Scheduler) waitForIdleOrTimeout(timeout time.Duration) {
	woke := make(chan struct{})
	go func() {
		s.idleMu.Lock()
		s.idleCond.Wait()
		s.idleMu.Unlock()
		close(woke)
	}()

	select {
	case <-woke:
	case <-time.After(timeout):
		// The waiter may not have reached Wait yet, in which case a
		// single broadcast is lost; repeat it until the waiter wakes.
		for {
			s.broadcastIdle()
			select {
			case <-woke:
				return
			case <-time.After(time.Millisecond):
			}
		}
	}
}

func (s *Scheduler) firstIdleWorker() *worker.Worker {
	s.poolMu.Lock()
	defer s.poolMu.Unlock()
	for _, w := range s.pool {
		if !w.IsRunning() {
			return w
		}
	}
	return nil
}

// QueueTask pushes t onto the scheduler's queue and counts it as
// outstanding for Wait.
func (s *Scheduler) QueueTask(t *task.Task) {
	s.outstanding.Add(1)
	s.queue.Push(t)
}

// KillTask removes t from the queue if it is still waiting there,
// dropping it without running it. Does not stop an already-dispatched
// task.
func (s *Scheduler) KillTask(t *task.Task) bool {
	return s.KillTaskByID(t.ID())
}

// KillTaskByID removes the queued task with the given identifier, if
// present.
func (s *Scheduler) KillTaskByID(id identifier.Identifier) bool {
	_, ok := s.queue.RemoveByID(id)
	if ok {
		s.decrementOutstanding()
	}
	return ok
}

// Wait blocks until every task ever passed to QueueTask has either run
// to completion (including stage failure or interruption — Complete is
// always invoked) or been dropped without running (killed while
// queued, or killed at dispatch time by Shutdown), or until ctx is
// cancelled first. dag.ProcessDAG's own batch emission deliberately
// does not block on task completion; callers that need the workflow
// to actually finish before acting (e.g. the CLI, before Shutdown) use
// Wait to provide that barrier.
func (s *Scheduler) Wait(ctx context.Context) error {
	for s.outstanding.Load() > 0 {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.waitForIdleOrTimeout(refreshInterval)
	}
	return nil
}

// Pause sets the pause flag: the dispatch loop stops popping new
// tasks and holds onto any task it is mid-assignment for.
func (s *Scheduler) Pause() { s.pause.Store(true) }

// Resume clears the pause flag.
func (s *Scheduler) Resume() { s.pause.Store(false) }

// IsPaused reports the current pause state.
func (s *Scheduler) IsPaused() bool { return s.pause.Load() }

// IsShutdown reports the current kill state.
func (s *Scheduler) IsShutdown() bool { return s.kill.Load() }

// Shutdown pauses the scheduler then sets the kill flag, causing
// Startup to return on its next loop iteration.
func (s *Scheduler) Shutdown() {
	s.Pause()
	s.kill.Store(true)
	s.broadcastIdle()
}
