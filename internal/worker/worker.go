// Package worker implements the interruptible single-task runner: a
// background goroutine that iterates one task's stages at a time and
// honors a cooperative interrupt between stages.
package worker

import (
	"context"
	"sync"

	"github.com/dagscheduler/dagscheduler/internal/logging"
	"github.com/dagscheduler/dagscheduler/internal/stage"
	"github.com/dagscheduler/dagscheduler/internal/task"
)

// Worker runs at most one task at a time on a dedicated goroutine. A
// Worker must not be copied after SetTaskAndRun has been called; it is
// only safe to discard once Shutdown returns.
type Worker struct {
	log    *logging.Logger
	onIdle func()

	taskMu sync.Mutex
	task   *task.Task

	interrupt bool
	running   bool
	stateMu   sync.Mutex

	done chan struct{}
}

// New constructs an idle worker. onIdle, if non-nil, is invoked after
// every run completes (including the initial idle state never calling
// it), letting a scheduler wake a condition variable instead of
// busy-spinning while it waits for a free worker.
func New(log *logging.Logger, onIdle func()) *Worker {
	if log == nil {
		log = logging.Discard()
	}
	return &Worker{log: log, onIdle: onIdle}
}

// SetTaskAndRun stores task under the slot lock and starts a goroutine
// to run it. Returns true iff the goroutine actually started; false if
// the worker already holds a task.
func (w *Worker) SetTaskAndRun(ctx context.Context, t *task.Task) bool {
	w.taskMu.Lock()
	if w.task != nil {
		w.taskMu.Unlock()
		return false
	}
	w.task = t
	w.taskMu.Unlock()

	started := make(chan struct{})
	w.done = make(chan struct{})
	go w.run(ctx, t, started)
	<-started
	return true
}

func (w *Worker) run(ctx context.Context, t *task.Task, started chan struct{}) {
	defer close(w.done)

	w.setRunning(true)
	close(started)

	allRan := t.IterateStages(ctx, func(s stage.Stage) bool {
		w.log.Debug("running stage", "stage", s.Label(), "task", t.Label())
		ok := s.Run(ctx)
		if w.WasInterrupted() {
			w.log.Info("stage interrupted", "stage", s.Label(), "task", t.Label())
			return false
		}
		if !ok {
			w.log.Error("stage failed", "stage", s.Label(), "task", t.Label())
		}
		return ok
	})

	w.taskMu.Lock()
	w.task = nil
	w.taskMu.Unlock()

	w.setRunning(false)
	t.Complete(allRan)

	if w.onIdle != nil {
		w.onIdle()
	}
}

// SetInterrupt kills the held task, if any, and sets the interrupt
// flag to the given value (default true).
func (w *Worker) SetInterrupt(values ...bool) {
	should := true
	if len(values) > 0 {
		should = values[0]
	}

	w.taskMu.Lock()
	if w.task != nil {
		w.task.Kill()
	}
	w.taskMu.Unlock()

	w.stateMu.Lock()
	w.interrupt = should
	w.stateMu.Unlock()
}

// WasInterrupted reports whether the interrupt flag is currently set.
func (w *Worker) WasInterrupted() bool {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	return w.interrupt
}

// IsRunning reports whether the worker's goroutine is currently
// executing a task.
func (w *Worker) IsRunning() bool {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	return w.running
}

// HasTask reports whether a task is currently held by the worker.
func (w *Worker) HasTask() bool {
	w.taskMu.Lock()
	defer w.taskMu.Unlock()
	return w.task != nil
}

func (w *Worker) setRunning(v bool) {
	w.stateMu.Lock()
	w.running = v
	w.stateMu.Unlock()
}

// Shutdown interrupts any running task and waits for the goroutine to
// exit. Safe to call on an idle worker.
func (w *Worker) Shutdown() {
	if w.IsRunning() {
		w.SetInterrupt(true)
	}
	if w.done != nil {
		<-w.done
	}
}
