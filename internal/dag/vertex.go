package dag

import (
	"sync/atomic"

	"github.com/dagscheduler/dagscheduler/internal/identifier"
	"github.com/dagscheduler/dagscheduler/internal/task"
)

// VertexStatus is the lifecycle state of a DAGVertex.
type VertexStatus int

const (
	VertexInitialized VertexStatus = iota
	VertexScheduled
	VertexRunning
	VertexPassed
	VertexFailed
	VertexInvalid
)

func (s VertexStatus) String() string {
	switch s {
	case VertexInitialized:
		return "initialized"
	case VertexScheduled:
		return "scheduled"
	case VertexRunning:
		return "running"
	case VertexPassed:
		return "passed"
	case VertexFailed:
		return "failed"
	case VertexInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Vertex is a node in the DAG: it owns a task and its outgoing edges,
// and tracks an atomic incoming-edge count maintained by connect/
// disconnect on those edges (and on edges owned by other vertices that
// target it).
type Vertex struct {
	id       identifier.Identifier
	status   VertexStatus
	label    string
	edges    []*Edge
	incoming atomic.Int32
	task     *task.Task
}

// NewVertex constructs a vertex with a random identifier. An empty
// label defaults to the identifier's string form.
func NewVertex(label string, t *task.Task) *Vertex {
	id := identifier.New()
	if label == "" {
		label = id.String()
	}
	return &Vertex{id: id, label: label, task: t}
}

// NewVertexWithID constructs a vertex with a caller-supplied identifier,
// used by the loader when the workflow document names an explicit
// UUID.
func NewVertexWithID(id identifier.Identifier, label string, t *task.Task) *Vertex {
	if label == "" {
		label = id.String()
	}
	return &Vertex{id: id, label: label, task: t}
}

// ID returns the vertex's stable identifier.
func (v *Vertex) ID() identifier.Identifier { return v.id }

// Label returns the vertex's human label.
func (v *Vertex) Label() string { return v.label }

// Status returns the vertex's current status.
func (v *Vertex) Status() VertexStatus { return v.status }

// SetStatus updates the vertex's status.
func (v *Vertex) SetStatus(s VertexStatus) { v.status = s }

// Task returns the vertex's owned task, or nil.
func (v *Vertex) Task() *task.Task { return v.task }

// IncomingEdgeCount returns the number of edges currently pointing at
// this vertex.
func (v *Vertex) IncomingEdgeCount() int32 { return v.incoming.Load() }

// HasIncomingEdges reports whether any edge currently targets this
// vertex.
func (v *Vertex) HasIncomingEdges() bool { return v.incoming.Load() > 0 }

func (v *Vertex) incrementIncoming() { v.incoming.Add(1) }
func (v *Vertex) decrementIncoming() {
	for {
		cur := v.incoming.Load()
		if cur <= 0 {
			return
		}
		if v.incoming.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

// Edges returns the vertex's outgoing edges in insertion order.
func (v *Vertex) Edges() []*Edge { return v.edges }

// ContainsConnectionTo scans the outgoing edges for one connected to
// target.
func (v *Vertex) ContainsConnectionTo(target *Vertex) bool {
	for _, e := range v.edges {
		if e.IsConnectionTo(target) {
			return true
		}
	}
	return false
}

// Connect appends a new edge targeting target, rejecting a duplicate
// connection to the same target.
func (v *Vertex) Connect(target *Vertex) bool {
	if v.ContainsConnectionTo(target) {
		return false
	}
	e := NewEdge()
	e.ConnectTo(target)
	v.edges = append(v.edges, e)
	return true
}

// VisitAllEdges iterates outgoing edges in insertion order.
func (v *Vertex) VisitAllEdges(fn func(*Edge)) {
	for _, e := range v.edges {
		fn(e)
	}
}

// disconnectAll clears every outgoing edge, decrementing each target's
// incoming count, used by vertex removal.
func (v *Vertex) disconnectAll() {
	for _, e := range v.edges {
		e.disconnect()
	}
	v.edges = nil
}

// connectionTargetIDs snapshots the identifiers of every connected
// target in edge order, used by DAG.Clone to reestablish connections
// after cloning every vertex (spec.md §9: the vertex-level clone alone
// cannot recover connections, since an edge holds a non-owning
// reference to a vertex the clone does not own).
func (v *Vertex) connectionTargetIDs() []identifier.Identifier {
	ids := make([]identifier.Identifier, 0, len(v.edges))
	for _, e := range v.edges {
		if e.target != nil {
			ids = append(ids, e.target.ID())
		}
	}
	return ids
}

// Clone copies identifier, status, label, and a deep copy of the task,
// but resets the incoming-edge count to zero and drops outgoing
// edges — the containing DAG must reconstruct edges after cloning all
// vertices.
func (v *Vertex) Clone() *Vertex {
	clone := &Vertex{id: v.id, status: v.status, label: v.label}
	if v.task != nil {
		clone.task = v.task.Clone()
	}
	return clone
}

func (v *Vertex) String() string {
	return "label = " + v.label + " uuid = " + v.id.String()
}
