package stage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFuncStageDefaults(t *testing.T) {
	t.Parallel()

	s := NewFuncStage("", nil, nil, nil)
	require.Equal(t, s.ID().String(), s.Label())
	require.True(t, s.Run(context.Background()))
	require.False(t, s.End())
	require.NotPanics(t, s.Cleanup)
}

func TestFuncStageRunsUnderRunningFlag(t *testing.T) {
	t.Parallel()

	var observedRunning bool
	s := NewFuncStage("probe", func(ctx context.Context) bool {
		observedRunning = s.IsRunning()
		return true
	}, nil, nil)

	require.False(t, s.IsRunning())
	require.True(t, s.Run(context.Background()))
	require.True(t, observedRunning)
	require.False(t, s.IsRunning())
}

func TestCloneProducesFreshIdentifier(t *testing.T) {
	t.Parallel()

	s := NewFuncStage("stage-a", func(ctx context.Context) bool { return true }, nil, nil)
	clone := s.Clone()

	require.False(t, s.ID().Equal(clone.ID()))
	require.Equal(t, s.Label(), clone.Label())
	require.True(t, clone.Run(context.Background()))
}

func TestCloneOfDefaultLabelUsesFreshIdentifier(t *testing.T) {
	t.Parallel()

	s := NewFuncStage("", nil, nil, nil)
	clone := s.Clone()

	require.Equal(t, clone.ID().String(), clone.Label())
	require.NotEqual(t, s.Label(), clone.Label())
}

func TestStringIncludesUUIDWhenLabelDiffers(t *testing.T) {
	t.Parallel()

	s := NewFuncStage("named", nil, nil, nil)
	require.Contains(t, s.String(), "label = named")
	require.Contains(t, s.String(), "uuid =")
}
