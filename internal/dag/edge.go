package dag

import (
	"fmt"

	"github.com/dagscheduler/dagscheduler/internal/identifier"
)

// EdgeStatus is the lifecycle state of a DAGEdge.
type EdgeStatus int

const (
	EdgeInitialized EdgeStatus = iota
	EdgeTraversed
	EdgeNonTraversable
)

func (s EdgeStatus) String() string {
	switch s {
	case EdgeInitialized:
		return "initialized"
	case EdgeTraversed:
		return "traversed"
	case EdgeNonTraversable:
		return "non-traversable"
	default:
		return "unknown"
	}
}

// Edge is a directed dependency from one vertex to another. It carries
// an identifier and status but never owns its target: the target is a
// short-lived pointer into the owning DAG's vertex set, obtained at
// connect time (spec.md §9's recast of the original's weak_ptr).
type Edge struct {
	id     identifier.Identifier
	status EdgeStatus
	target *Vertex
}

// NewEdge constructs an unconnected edge in the initialized state.
func NewEdge() *Edge {
	return &Edge{id: identifier.New(), status: EdgeInitialized}
}

// ID returns the edge's stable identifier.
func (e *Edge) ID() identifier.Identifier { return e.id }

// Status returns the edge's current status.
func (e *Edge) Status() EdgeStatus { return e.status }

// SetStatus updates the edge's status.
func (e *Edge) SetStatus(s EdgeStatus) { e.status = s }

// Target returns the vertex this edge currently points at, or nil.
func (e *Edge) Target() *Vertex { return e.target }

// ConnectTo retargets the edge. If the edge already targets a vertex,
// that vertex's incoming-edge count is decremented first and the
// method returns false. The new target (possibly nil) is then set and,
// if non-nil, its incoming-edge count is incremented. Returns true iff
// no prior connection existed.
func (e *Edge) ConnectTo(v *Vertex) bool {
	hadPrior := e.target != nil
	if hadPrior {
		e.target.decrementIncoming()
	}
	e.target = v
	if v != nil {
		v.incrementIncoming()
	}
	return !hadPrior
}

// IsConnectionTo reports whether the edge's current target is the
// given vertex, compared by identifier.
func (e *Edge) IsConnectionTo(v *Vertex) bool {
	if e.target == nil || v == nil {
		return e.target == nil && v == nil
	}
	return e.target.ID().Equal(v.ID())
}

// disconnect clears the edge's connection, decrementing the prior
// target's incoming count if one existed.
func (e *Edge) disconnect() {
	if e.target != nil {
		e.target.decrementIncoming()
		e.target = nil
	}
}

// Clone produces a fresh edge with a new identifier, the current
// status, and no connection — ownership cannot be duplicated.
func (e *Edge) Clone() *Edge {
	return &Edge{id: identifier.New(), status: e.status}
}

// Equal compares identifier and status only. Connection state is
// deliberately excluded: comparing target vertex contents would
// recurse infinitely through the vertex's own edges. This mirrors the
// original implementation's operator== and must be preserved.
func (e *Edge) Equal(other *Edge) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.id.Equal(other.id) && e.status == other.status
}

func (e *Edge) String() string {
	target := "<none>"
	if e.target != nil {
		target = e.target.ID().String()
	}
	return fmt.Sprintf("edge %s status=%s target=%s", e.id, e.status, target)
}
