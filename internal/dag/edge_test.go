package dag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectToReturnsTrueOnlyForFirstConnection(t *testing.T) {
	t.Parallel()

	a := newLabeledVertex("A")
	b := newLabeledVertex("B")
	c := newLabeledVertex("C")

	e := NewEdge()
	require.True(t, e.ConnectTo(a))
	require.EqualValues(t, 1, a.IncomingEdgeCount())

	require.False(t, e.ConnectTo(b))
	require.EqualValues(t, 0, a.IncomingEdgeCount())
	require.EqualValues(t, 1, b.IncomingEdgeCount())

	require.False(t, e.ConnectTo(c))
	require.EqualValues(t, 0, b.IncomingEdgeCount())
	require.EqualValues(t, 1, c.IncomingEdgeCount())
}

func TestIsConnectionToComparesByIdentifier(t *testing.T) {
	t.Parallel()

	a := newLabeledVertex("A")
	e := NewEdge()
	e.ConnectTo(a)
	require.True(t, e.IsConnectionTo(a))

	other := NewEdge()
	require.True(t, other.IsConnectionTo(nil))
	require.False(t, other.IsConnectionTo(a))
}

func TestEdgeCloneHasFreshIdentifierAndNoTarget(t *testing.T) {
	t.Parallel()

	a := newLabeledVertex("A")
	e := NewEdge()
	e.SetStatus(EdgeTraversed)
	e.ConnectTo(a)

	clone := e.Clone()
	require.False(t, clone.ID().Equal(e.ID()))
	require.Equal(t, EdgeTraversed, clone.Status())
	require.Nil(t, clone.Target())
}

func TestEdgeEqualIgnoresConnection(t *testing.T) {
	t.Parallel()

	a := newLabeledVertex("A")
	e1 := NewEdge()

	other := &Edge{id: e1.id, status: e1.status}
	require.True(t, e1.Equal(other))

	other.ConnectTo(a)
	require.True(t, e1.Equal(other))
}
