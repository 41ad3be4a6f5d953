package dag

import schedulererrors "github.com/dagscheduler/dagscheduler/pkg/errors"

// RootsWithNoIncomingEdges returns every vertex with zero incoming
// edges, in the DAG's insertion order. These are the vertices eligible
// to run first.
func RootsWithNoIncomingEdges(d *DAG) []*Vertex {
	var roots []*Vertex
	d.LinearTraversal(func(v *Vertex) {
		if !v.HasIncomingEdges() {
			roots = append(roots, v)
		}
	})
	return roots
}

// TopologicalSort performs Kahn's algorithm destructively on d: edges
// are disconnected as their source vertex is consumed. Callers that
// need to preserve the original must pass a Clone. Returns the
// ordering and whether the DAG was fully consumed (false indicates a
// cycle: some vertices never reached zero incoming edges).
func TopologicalSort(d *DAG) ([]*Vertex, bool) {
	queue := RootsWithNoIncomingEdges(d)
	visited := make(map[string]bool, d.VertexCount())
	var order []*Vertex

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		if visited[v.ID().String()] {
			continue
		}
		visited[v.ID().String()] = true
		order = append(order, v)

		for _, e := range v.Edges() {
			target := e.Target()
			if target == nil {
				continue
			}
			e.disconnect()
			if !target.HasIncomingEdges() && !visited[target.ID().String()] {
				queue = append(queue, target)
			}
		}
	}

	return order, len(order) == d.VertexCount()
}

// ProcessDAG extracts the DAG's vertices as ordered, dependency-respecting
// batches (layers) computed purely structurally from a clone: a
// vertex joins a batch once every edge targeting it has been removed
// by the extraction of an earlier batch. Batch order therefore
// satisfies batch_index(u) < batch_index(v) for every edge u->v, but
// ProcessDAG itself does not block between batches on the enqueued
// tasks actually finishing execution — that runtime ordering, if
// needed, is the caller's responsibility (e.g. waiting on task
// completion callbacks before acting on a later batch).
// Per spec.md §4.7, acyclicity is verified first on a side clone, so a
// cyclic DAG fails before a single batch is enqueued — an isolated
// acyclic portion of an otherwise-cyclic graph must not be dispatched.
// The extraction itself then runs on a second clone, leaving the
// caller's DAG untouched.
func ProcessDAG(d *DAG, enqueue func(batch []*Vertex) error) error {
	if _, acyclic := TopologicalSort(d.Clone()); !acyclic {
		return schedulererrors.NewCycleError(d.Title(), "cannot process DAG: a cycle prevents further progress")
	}

	clone := d.Clone()
	for clone.VertexCount() > 0 {
		batch := RootsWithNoIncomingEdges(clone)
		if len(batch) == 0 {
			return schedulererrors.NewCycleError(d.Title(), "cannot process DAG: a cycle prevents further progress")
		}

		if err := enqueue(batch); err != nil {
			return err
		}

		for _, v := range batch {
			clone.RemoveVertexByID(v.ID())
		}
	}

	return nil
}
