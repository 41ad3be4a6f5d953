// Package stage implements TaskStage: the smallest cooperative
// cancellation unit of work inside a task. Stages are synchronous,
// cloneable, and dynamically loadable via internal/registry.
package stage

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dagscheduler/dagscheduler/internal/identifier"
)

// Stage is the contract every task stage implements.
type Stage interface {
	ID() identifier.Identifier
	Label() string
	// Run executes the stage synchronously and returns whether it
	// succeeded. Must be idempotent with respect to End: if End was
	// called before Run began, Run may short-circuit to failure.
	Run(ctx context.Context) bool
	// End requests termination and reports whether the stage honored
	// the request. Safe to call before Run begins.
	End() bool
	// Cleanup releases resources acquired by Run.
	Cleanup()
	IsRunning() bool
	// Clone produces an independent instance with a fresh identifier
	// but identical behavior.
	Clone() Stage
}

// Base embeds the common identifier/label/running-flag bookkeeping
// shared by every stage implementation, grounded on
// original_source/lib/BaseTaskStage.cxx.
type Base struct {
	id      identifier.Identifier
	label   string
	running atomic.Bool
}

// NewBase constructs bookkeeping for a stage. An empty label defaults
// to the identifier's string form.
func NewBase(label string) Base {
	id := identifier.New()
	if label == "" {
		label = id.String()
	}
	return Base{id: id, label: label}
}

// ID returns the stage's stable identifier.
func (b *Base) ID() identifier.Identifier { return b.id }

// Label returns the stage's human label.
func (b *Base) Label() string { return b.label }

// IsRunning reports whether the stage is currently executing.
func (b *Base) IsRunning() bool { return b.running.Load() }

func (b *Base) setRunning(v bool) { b.running.Store(v) }

// String renders "label = X" and, when the label differs from the
// identifier's string form, appends "uuid = Y" — ported from
// BaseTaskStage::operator<<.
func (b *Base) String() string {
	s := fmt.Sprintf("label = %s", b.label)
	if b.label != b.id.String() {
		s += fmt.Sprintf(" uuid = %s", b.id.String())
	}
	return s
}

// cloneBase returns bookkeeping for a clone: a fresh identifier, the
// same label unless it was defaulted from the original identifier (in
// which case the clone defaults from its own fresh identifier too).
func (b *Base) cloneBase() Base {
	fresh := identifier.New()
	label := b.label
	if label == b.id.String() {
		label = fresh.String()
	}
	return Base{id: fresh, label: label}
}

// FuncStage adapts a plain run/end/cleanup function set into a Stage,
// used for stages resolved as simple functions rather than full
// objects (mirrors how Task's completion callback admits either a
// function or a plugin).
type FuncStage struct {
	Base
	RunFunc     func(ctx context.Context) bool
	EndFunc     func() bool
	CleanupFunc func()
}

// NewFuncStage constructs a FuncStage with the given label and
// behavior functions. Nil functions default to BaseTaskStage's
// defaults: Run succeeds, End reports failure (not running yet),
// Cleanup is a no-op.
func NewFuncStage(label string, run func(ctx context.Context) bool, end func() bool, cleanup func()) *FuncStage {
	return &FuncStage{Base: NewBase(label), RunFunc: run, EndFunc: end, CleanupFunc: cleanup}
}

// Run executes the stage's run function under the running flag.
func (f *FuncStage) Run(ctx context.Context) bool {
	f.setRunning(true)
	defer f.setRunning(false)
	if f.RunFunc == nil {
		return true
	}
	return f.RunFunc(ctx)
}

// End requests termination.
func (f *FuncStage) End() bool {
	if f.EndFunc == nil {
		return false
	}
	return f.EndFunc()
}

// Cleanup releases resources.
func (f *FuncStage) Cleanup() {
	if f.CleanupFunc != nil {
		f.CleanupFunc()
	}
}

// Clone deep-copies behavior (by reference, since functions are
// immutable values) with a fresh identifier.
func (f *FuncStage) Clone() Stage {
	return &FuncStage{
		Base:        f.cloneBase(),
		RunFunc:     f.RunFunc,
		EndFunc:     f.EndFunc,
		CleanupFunc: f.CleanupFunc,
	}
}
