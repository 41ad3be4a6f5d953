// Package queue implements a FIFO task queue shared between the
// scheduler's producer and its dispatch loop: push, try-pop,
// blocking/timed pop, and targeted removal by identifier.
package queue

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/dagscheduler/dagscheduler/internal/identifier"
	"github.com/dagscheduler/dagscheduler/internal/task"
)

// Queue is a mutex-guarded, condition-signaled FIFO of tasks. All
// operations are linearizable with respect to each other under the
// internal mutex; pop ordering is strict FIFO.
type Queue struct {
	mu       sync.Mutex
	notEmpty sync.Cond
	tasks    *list.List
}

// New constructs an empty queue.
func New() *Queue {
	q := &Queue{tasks: list.New()}
	q.notEmpty.L = &q.mu
	return q
}

// Push appends task to the back of the queue and wakes any waiters.
func (q *Queue) Push(t *task.Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks.PushBack(t)
	q.notEmpty.Broadcast()
}

// TryPop removes and returns the front task without blocking. Reports
// false if the queue is empty.
func (q *Queue) TryPop() (*task.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popFrontLocked()
}

// WaitAndPop blocks until a task is available or ctx is cancelled.
func (q *Queue) WaitAndPop(ctx context.Context) (*task.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.tasks.Len() == 0 {
		if ctx.Err() != nil {
			return nil, false
		}
		if !q.waitWithContext(ctx) {
			return nil, false
		}
	}
	return q.popFrontLocked()
}

// WaitForAndPop blocks up to timeout for a task to become available.
// Returns false if the timeout elapses first.
func (q *Queue) WaitForAndPop(timeout time.Duration) (*task.Task, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return q.WaitAndPop(ctx)
}

// waitWithContext waits on the condition variable, honoring ctx's
// deadline by racing a timer goroutine that broadcasts on expiry.
// Must be called with q.mu held; returns false if ctx was the reason
// for waking.
func (q *Queue) waitWithContext(ctx context.Context) bool {
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			q.mu.Lock()
			q.notEmpty.Broadcast()
			q.mu.Unlock()
		case <-stopped:
		}
		close(done)
	}()

	q.notEmpty.Wait()

	close(stopped)
	<-done
	return ctx.Err() == nil
}

// popFrontLocked must be called with q.mu held.
func (q *Queue) popFrontLocked() (*task.Task, bool) {
	front := q.tasks.Front()
	if front == nil {
		return nil, false
	}
	q.tasks.Remove(front)
	return front.Value.(*task.Task), true
}

// Size returns the current queue length.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tasks.Len()
}

// Empty reports whether the queue currently holds no tasks.
func (q *Queue) Empty() bool {
	return q.Size() == 0
}

// Clear drops every queued task without running it.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks.Init()
}

// RemoveByID scans the queue for a task with the given identifier,
// removing it and preserving the order of remaining elements. Reports
// false if no match was found.
func (q *Queue) RemoveByID(id identifier.Identifier) (*task.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for e := q.tasks.Front(); e != nil; e = e.Next() {
		t := e.Value.(*task.Task)
		if t.ID().Equal(id) {
			q.tasks.Remove(e)
			return t, true
		}
	}
	return nil, false
}
