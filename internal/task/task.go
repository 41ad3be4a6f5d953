// Package task implements Task: an ordered sequence of stages executed
// by a worker, plus an optional completion callback, config/initial
// inputs documents, and the cooperative-cancellation flags that
// coordinate with internal/worker and internal/scheduler.
package task

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dagscheduler/dagscheduler/internal/document"
	"github.com/dagscheduler/dagscheduler/internal/identifier"
	"github.com/dagscheduler/dagscheduler/internal/stage"
)

// CallbackPlugin is the pluggable completion-callback contract: a
// dynamically loaded object invoked with the task's pass/fail status.
type CallbackPlugin interface {
	Completed(status bool, t *Task)
	Clone() CallbackPlugin
}

// Option configures a Task at construction time.
type Option func(*Task)

// WithLabel sets the task's human label.
func WithLabel(label string) Option {
	return func(t *Task) { t.label = label }
}

// WithCallbackFunc sets a plain function completion callback. It is a
// contract violation to set both a function and a plugin callback.
func WithCallbackFunc(fn func(status bool)) Option {
	return func(t *Task) {
		if t.callbackPlugin != nil {
			panic("task: cannot set both a function and a plugin completion callback")
		}
		t.callbackFunc = fn
	}
}

// WithCallbackPlugin sets a plugin completion callback. It is a
// contract violation to set both a function and a plugin callback.
func WithCallbackPlugin(p CallbackPlugin) Option {
	return func(t *Task) {
		if t.callbackFunc != nil {
			panic("task: cannot set both a function and a plugin completion callback")
		}
		t.callbackPlugin = p
	}
}

// WithConfig sets the task's configuration document.
func WithConfig(d document.Document) Option {
	return func(t *Task) { t.config = d.Clone() }
}

// WithInitialInputs sets the task's initial-inputs document.
func WithInitialInputs(d document.Document) Option {
	return func(t *Task) { t.initialInputs = d.Clone() }
}

// Task is an ordered sequence of owned stages plus bookkeeping.
type Task struct {
	id             identifier.Identifier
	label          string
	stages         []stage.Stage
	callbackFunc   func(status bool)
	callbackPlugin CallbackPlugin
	config         document.Document
	initialInputs  document.Document

	iterating atomic.Bool
	kill      atomic.Bool
}

// New constructs a Task from an ordered stage list and options.
func New(stages []stage.Stage, opts ...Option) *Task {
	id := identifier.New()
	t := &Task{
		id:            id,
		label:         id.String(),
		stages:        append([]stage.Stage(nil), stages...),
		config:        document.Empty(),
		initialInputs: document.Empty(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ID returns the task's stable identifier, preserved across Clone.
func (t *Task) ID() identifier.Identifier { return t.id }

// Label returns the task's human label.
func (t *Task) Label() string { return t.label }

// Stages returns the task's ordered stage list.
func (t *Task) Stages() []stage.Stage {
	return t.stages
}

// Config returns the task's configuration document.
func (t *Task) Config() document.Document { return t.config }

// InitialInputs returns the task's initial-inputs document.
func (t *Task) InitialInputs() document.Document { return t.initialInputs }

// SetInitialInputs replaces the task's initial-inputs document with a
// deep clone of doc. A contract violation (panic) if the task is
// currently iterating.
func (t *Task) SetInitialInputs(doc document.Document) {
	t.guardMutation()
	t.initialInputs = doc.Clone()
}

func (t *Task) guardMutation() {
	if t.iterating.Load() {
		panic(fmt.Sprintf("task: cannot mutate task %s while it is iterating", t.id))
	}
}

// IterateStages acquires the iterating flag, then runs each stage in
// order: step(stage), stage.Cleanup(), stage.End(). Iteration
// continues only while step returned true, End reported success, and
// Kill is still false. Returns true iff every stage completed
// successfully. Re-entrant calls (another goroutine calling while
// already iterating) return false immediately.
func (t *Task) IterateStages(ctx context.Context, step func(stage.Stage) bool) bool {
	if !t.iterating.CompareAndSwap(false, true) {
		return false
	}
	defer t.iterating.Store(false)

	ranAll := true
	for _, s := range t.stages {
		hasRan := step(s)
		s.Cleanup()
		ended := s.End()
		ok := hasRan && ended && !t.kill.Load()
		if !ok {
			ranAll = false
			break
		}
	}
	return ranAll
}

// Kill sets the kill flag and returns its new value.
func (t *Task) Kill() bool {
	t.kill.Store(true)
	return t.kill.Load()
}

// Killed reports whether Kill has been called.
func (t *Task) Killed() bool { return t.kill.Load() }

// Complete invokes the configured completion callback(s). Both a
// function and a plugin callback are invoked if, implausibly, both
// were set through direct field manipulation; construction via the
// Option helpers above prevents that.
func (t *Task) Complete(status bool) {
	if t.callbackFunc != nil {
		t.callbackFunc(status)
	}
	if t.callbackPlugin != nil {
		t.callbackPlugin.Completed(status, t)
	}
}

// Clone deep-copies stages, documents, and callback, and preserves the
// identifier.
func (t *Task) Clone() *Task {
	clonedStages := make([]stage.Stage, len(t.stages))
	for i, s := range t.stages {
		clonedStages[i] = s.Clone()
	}

	clone := &Task{
		id:            t.id,
		label:         t.label,
		stages:        clonedStages,
		config:        t.config.Clone(),
		initialInputs: t.initialInputs.Clone(),
	}
	if t.callbackPlugin != nil {
		clone.callbackPlugin = t.callbackPlugin.Clone()
	} else {
		clone.callbackFunc = t.callbackFunc
	}
	return clone
}

// String renders "label = X [uuid = Y] stage... configuration = ...
// initial_json_inputs = ...", ported from Task::operator<<.
func (t *Task) String() string {
	s := fmt.Sprintf("label = %s", t.label)
	if t.label != t.id.String() {
		s += fmt.Sprintf(" uuid = %s", t.id.String())
	}
	for _, stg := range t.stages {
		s += " " + describeStage(stg)
	}
	s += fmt.Sprintf(" configuration = %s", t.config.String())
	s += fmt.Sprintf(" initial_json_inputs = %s", t.initialInputs.String())
	return s
}

func describeStage(s stage.Stage) string {
	type describer interface{ String() string }
	if d, ok := s.(describer); ok {
		return d.String()
	}
	return fmt.Sprintf("label = %s", s.Label())
}
