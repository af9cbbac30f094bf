package simcore

import "container/heap"

// EventToken identifies a previously-pushed event for cancellation. It is
// the event's insertion_seq, which is stable for the event's lifetime.
type EventToken uint64

// eventHeap is the container/heap.Interface backing EventQueue. Cancelled
// entries are tombstoned (kept in the heap, skipped by Pop) rather than
// removed in place — cheaper than heap.Remove under the churn a timer-heavy
// protocol produces, and the invariant ("a cancelled event is never
// dispatched") holds either way.
type eventHeap []*Event

func (h eventHeap) Len() int            { return len(h) }
func (h eventHeap) Less(i, j int) bool  { return h[i].less(*h[j]) }
func (h eventHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x interface{}) { *h = append(*h, x.(*Event)) }
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// EventQueue is a min-priority queue over Event ordered by
// (ScheduledMs asc, InsertionSeq asc), per spec §4.1.
type EventQueue struct {
	heap         eventHeap
	nextSeq      uint64
	cancelled    map[EventToken]bool
	kinds        map[EventToken]EventKind // kind of each live (not yet popped/cancelled) event
	liveNonTimer int                      // live events with Kind != EventTimerFire
}

// NewEventQueue returns an empty queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{
		cancelled: make(map[EventToken]bool),
		kinds:     make(map[EventToken]EventKind),
	}
	heap.Init(&q.heap)
	return q
}

// Push assigns the next insertion_seq to ev and enqueues it, returning a
// token that can later be passed to Cancel.
func (q *EventQueue) Push(ev Event) EventToken {
	ev.InsertionSeq = q.nextSeq
	q.nextSeq++
	tok := EventToken(ev.InsertionSeq)
	q.kinds[tok] = ev.Kind
	if ev.Kind != EventTimerFire {
		q.liveNonTimer++
	}
	heap.Push(&q.heap, &ev)
	return tok
}

// Cancel marks the event identified by tok as cancelled. A no-op if tok is
// unknown or already dispatched/cancelled.
func (q *EventQueue) Cancel(tok EventToken) {
	if q.cancelled[tok] {
		return
	}
	kind, live := q.kinds[tok]
	if !live {
		return
	}
	q.cancelled[tok] = true
	delete(q.kinds, tok)
	if kind != EventTimerFire {
		q.liveNonTimer--
	}
}

// Pop removes and returns the earliest non-cancelled event. The second
// return is false if the queue has no live events.
func (q *EventQueue) Pop() (Event, bool) {
	for q.heap.Len() > 0 {
		ev := heap.Pop(&q.heap).(*Event)
		tok := EventToken(ev.InsertionSeq)
		if q.cancelled[tok] {
			delete(q.cancelled, tok)
			continue
		}
		delete(q.kinds, tok)
		if ev.Kind != EventTimerFire {
			q.liveNonTimer--
		}
		return *ev, true
	}
	return Event{}, false
}

// HasLiveNonTimer reports whether any live (non-cancelled) event with a kind
// other than EventTimerFire remains in the queue, in O(1) — used by
// RunUntilQuiescent, which is called once per dispatched event and cannot
// afford a queue scan on every call.
func (q *EventQueue) HasLiveNonTimer() bool {
	return q.liveNonTimer > 0
}

// Empty reports whether the queue has no live (non-cancelled) events. Like
// Len, it discards any tombstones sitting at the head of the heap.
func (q *EventQueue) Empty() bool {
	return q.Len() == 0
}

// Len returns the number of live events, skipping tombstones lazily.
func (q *EventQueue) Len() int {
	for q.heap.Len() > 0 {
		top := q.heap[0]
		if q.cancelled[EventToken(top.InsertionSeq)] {
			heap.Pop(&q.heap)
			delete(q.cancelled, EventToken(top.InsertionSeq))
			continue
		}
		break
	}
	// Tombstones below the head stay in the heap; kinds holds only live events.
	return len(q.kinds)
}

// NextTimeMs peeks the scheduled time of the earliest live event, for the
// control dashboard. The second return is false if the queue is empty.
func (q *EventQueue) NextTimeMs() (int64, bool) {
	if q.Len() == 0 {
		return 0, false
	}
	return q.heap[0].ScheduledMs, true
}
