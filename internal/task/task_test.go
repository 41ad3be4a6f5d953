package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dagscheduler/dagscheduler/internal/stage"
)

func okStage(label string) stage.Stage {
	return stage.NewFuncStage(label, func(ctx context.Context) bool { return true }, func() bool { return true }, nil)
}

func failStage(label string) stage.Stage {
	return stage.NewFuncStage(label, func(ctx context.Context) bool { return false }, func() bool { return true }, nil)
}

// TestIterateStagesAllSucceed verifies testable property 8: all
// stages run exactly once, in order, and the callback fires with true.
func TestIterateStagesAllSucceed(t *testing.T) {
	t.Parallel()

	var ran []string
	makeTracking := func(label string) stage.Stage {
		return stage.NewFuncStage(label, func(ctx context.Context) bool {
			ran = append(ran, label)
			return true
		}, func() bool { return true }, nil)
	}

	var completedWith *bool
	tsk := New([]stage.Stage{makeTracking("A"), makeTracking("B"), makeTracking("C")},
		WithCallbackFunc(func(status bool) { completedWith = &status }))

	ok := tsk.IterateStages(context.Background(), func(s stage.Stage) bool {
		return s.Run(context.Background())
	})
	require.True(t, ok)
	require.Equal(t, []string{"A", "B", "C"}, ran)

	tsk.Complete(ok)
	require.NotNil(t, completedWith)
	require.True(t, *completedWith)
}

// TestIterateStagesStopsOnFailure mirrors scenario S6: stage B fails,
// C never runs.
func TestIterateStagesStopsOnFailure(t *testing.T) {
	t.Parallel()

	var ranC bool
	stageC := stage.NewFuncStage("C", func(ctx context.Context) bool {
		ranC = true
		return true
	}, func() bool { return true }, nil)

	tsk := New([]stage.Stage{okStage("A"), failStage("B"), stageC})

	ok := tsk.IterateStages(context.Background(), func(s stage.Stage) bool {
		return s.Run(context.Background())
	})
	require.False(t, ok)
	require.False(t, ranC)
}

// TestIterateStagesCallsEndEvenWhenStepFails verifies scenario S6's
// literal sequence — "B.run, B.cleanup, B.end" — End is invoked
// unconditionally after Cleanup, even though B's run already failed.
func TestIterateStagesCallsEndEvenWhenStepFails(t *testing.T) {
	t.Parallel()

	var cleanedUp, ended bool
	stageB := stage.NewFuncStage("B",
		func(ctx context.Context) bool { return false },
		func() bool { ended = true; return true },
		func() { cleanedUp = true },
	)

	tsk := New([]stage.Stage{stageB})
	ok := tsk.IterateStages(context.Background(), func(s stage.Stage) bool {
		return s.Run(context.Background())
	})
	require.False(t, ok)
	require.True(t, cleanedUp)
	require.True(t, ended)
}

func TestIterateStagesHaltsOnKill(t *testing.T) {
	t.Parallel()

	var tsk *Task
	stageA := stage.NewFuncStage("A", func(ctx context.Context) bool {
		tsk.Kill()
		return true
	}, func() bool { return true }, nil)
	var ranB bool
	stageB := stage.NewFuncStage("B", func(ctx context.Context) bool {
		ranB = true
		return true
	}, func() bool { return true }, nil)

	tsk = New([]stage.Stage{stageA, stageB})
	ok := tsk.IterateStages(context.Background(), func(s stage.Stage) bool {
		return s.Run(context.Background())
	})
	require.False(t, ok)
	require.False(t, ranB)
}

func TestReentrantIterateStagesReturnsFalse(t *testing.T) {
	t.Parallel()

	done := make(chan struct{})
	blocking := stage.NewFuncStage("blocking", func(ctx context.Context) bool {
		<-done
		return true
	}, func() bool { return true }, nil)

	tsk := New([]stage.Stage{blocking})

	resultCh := make(chan bool, 1)
	go func() {
		resultCh <- tsk.IterateStages(context.Background(), func(s stage.Stage) bool {
			return s.Run(context.Background())
		})
	}()

	// Give the goroutine a chance to set the iterating flag.
	for !tskIterating(tsk) {
	}

	reentrant := tsk.IterateStages(context.Background(), func(s stage.Stage) bool { return true })
	require.False(t, reentrant)

	close(done)
	require.True(t, <-resultCh)
}

func tskIterating(t *Task) bool {
	return t.iterating.Load()
}

func TestCloneDeepCopiesAndPreservesIdentifier(t *testing.T) {
	t.Parallel()

	tsk := New([]stage.Stage{okStage("A")}, WithLabel("original"))
	clone := tsk.Clone()

	require.True(t, tsk.ID().Equal(clone.ID()))
	require.Equal(t, tsk.Label(), clone.Label())
	require.NotSame(t, &tsk.stages[0], &clone.stages[0])
	require.False(t, tsk.stages[0].ID().Equal(clone.stages[0].ID()))
}

func TestWithCallbackFuncAndPluginAreExclusive(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		New([]stage.Stage{okStage("A")},
			WithCallbackFunc(func(bool) {}),
			WithCallbackPlugin(fakePlugin{}),
		)
	})
}

type fakePlugin struct{}

func (fakePlugin) Completed(status bool, t *Task) {}
func (fakePlugin) Clone() CallbackPlugin          { return fakePlugin{} }

func TestMutationWhileIteratingPanics(t *testing.T) {
	t.Parallel()

	done := make(chan struct{})
	blocking := stage.NewFuncStage("blocking", func(ctx context.Context) bool {
		<-done
		return true
	}, func() bool { return true }, nil)
	tsk := New([]stage.Stage{blocking})

	go func() {
		tsk.IterateStages(context.Background(), func(s stage.Stage) bool { return s.Run(context.Background()) })
	}()

	for !tskIterating(tsk) {
	}

	require.Panics(t, func() {
		tsk.SetInitialInputs(tsk.InitialInputs())
	})

	close(done)
}
