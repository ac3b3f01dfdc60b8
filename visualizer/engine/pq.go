package engine

import "container/heap"

// openItem is a coordinate waiting in the open set. seq is the insertion
// order and breaks priority ties so the earliest-discovered cell wins.
type openItem struct {
	coord    Coordinate
	key      int
	priority int
	seq      int
	index    int
}

type openQueue []*openItem

func (q openQueue) Len() int { return len(q) }
func (q openQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	return q[i].seq < q[j].seq
}
func (q openQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *openQueue) Push(x any) {
	item := x.(*openItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *openQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// openSet is a min-priority set of coordinates keyed by packed cell index
type openSet struct {
	queue   openQueue
	members map[int]*openItem
	nextSeq int
}

func newOpenSet() *openSet {
	s := &openSet{members: make(map[int]*openItem)}
	heap.Init(&s.queue)
	return s
}

func (s *openSet) Len() int { return s.queue.Len() }

func (s *openSet) Contains(key int) bool {
	_, ok := s.members[key]
	return ok
}

// Push inserts a coordinate that is not yet a member
func (s *openSet) Push(coord Coordinate, key, priority int) {
	item := &openItem{coord: coord, key: key, priority: priority, seq: s.nextSeq}
	s.nextSeq++
	heap.Push(&s.queue, item)
	s.members[key] = item
}

// Update changes the priority of a member, keeping its insertion order
func (s *openSet) Update(key, priority int) {
	item, ok := s.members[key]
	if !ok || item.priority == priority {
		return
	}
	item.priority = priority
	heap.Fix(&s.queue, item.index)
}

// PopMin removes and returns the member with the lowest priority
func (s *openSet) PopMin() (Coordinate, int) {
	item := heap.Pop(&s.queue).(*openItem)
	delete(s.members, item.key)
	return item.coord, item.key
}
