package reactive

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// updateQueue is the pending-update queue: insertion-ordered, with a
// membership set so a node appears at most once per batch no matter how
// many times it is scheduled.
type updateQueue struct {
	order   []NodeID
	members mapset.Set[NodeID]
}

func newUpdateQueue() *updateQueue {
	return &updateQueue{members: mapset.NewSet[NodeID]()}
}

// push appends id unless it is already pending. Reports whether the id
// was actually added.
func (q *updateQueue) push(id NodeID) bool {
	if !q.members.Add(id) {
		return false
	}
	q.order = append(q.order, id)
	return true
}

func (q *updateQueue) pop() (NodeID, bool) {
	if len(q.order) == 0 {
		return 0, false
	}
	id := q.order[0]
	q.order = q.order[1:]
	q.members.Remove(id)
	return id, true
}

// remove drops a pending entry, if present. Disposal uses this so a
// disposed computation can never be drained.
func (q *updateQueue) remove(id NodeID) {
	if !q.members.Contains(id) {
		return
	}
	q.members.Remove(id)
	if i := slices.Index(q.order, id); i >= 0 {
		q.order = slices.Delete(q.order, i, i+1)
	}
}
