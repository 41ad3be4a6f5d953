package dag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dagscheduler/dagscheduler/internal/identifier"
	"github.com/dagscheduler/dagscheduler/internal/task"
)

func TestNewVertexDefaultsLabelToIdentifier(t *testing.T) {
	t.Parallel()

	v := NewVertex("", task.New(nil))
	require.Equal(t, v.ID().String(), v.Label())
}

func TestConnectRejectsDuplicateTarget(t *testing.T) {
	t.Parallel()

	a := newLabeledVertex("A")
	b := newLabeledVertex("B")
	require.True(t, a.Connect(b))
	require.False(t, a.Connect(b))
	require.Len(t, a.Edges(), 1)
}

func TestIncomingEdgeCountTracksConnectAndDisconnect(t *testing.T) {
	t.Parallel()

	a := newLabeledVertex("A")
	b := newLabeledVertex("B")
	require.False(t, b.HasIncomingEdges())

	a.Connect(b)
	require.EqualValues(t, 1, b.IncomingEdgeCount())

	a.disconnectAll()
	require.False(t, b.HasIncomingEdges())
	require.Empty(t, a.Edges())
}

func TestVertexCloneDropsEdgesAndResetsIncoming(t *testing.T) {
	t.Parallel()

	a := newLabeledVertex("A")
	b := newLabeledVertex("B")
	a.Connect(b)

	clone := a.Clone()
	require.True(t, clone.ID().Equal(a.ID()))
	require.Empty(t, clone.Edges())
	require.EqualValues(t, 0, clone.IncomingEdgeCount())
}

func TestNewVertexWithIDPreservesIdentifier(t *testing.T) {
	t.Parallel()

	id := identifier.New()
	v := NewVertexWithID(id, "A", task.New(nil))
	require.True(t, v.ID().Equal(id))
}
