package simcore

import "testing"

func TestEventQueueOrdersByTimeThenInsertionSeq(t *testing.T) {
	q := NewEventQueue()
	q.Push(Event{Kind: EventWaitMarker, ScheduledMs: 100, WaitMarkerID: 1})
	q.Push(Event{Kind: EventWaitMarker, ScheduledMs: 50, WaitMarkerID: 2})
	q.Push(Event{Kind: EventWaitMarker, ScheduledMs: 50, WaitMarkerID: 3})

	var order []int
	for {
		ev, ok := q.Pop()
		if !ok {
			break
		}
		order = append(order, ev.WaitMarkerID)
	}

	want := []int{2, 3, 1}
	if len(order) != len(want) {
		t.Fatalf("got %d events, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %d, want %d", i, order[i], want[i])
		}
	}
}

func TestEventQueueCancelSkipsDispatch(t *testing.T) {
	q := NewEventQueue()
	tok := q.Push(Event{Kind: EventWaitMarker, ScheduledMs: 10, WaitMarkerID: 1})
	q.Push(Event{Kind: EventWaitMarker, ScheduledMs: 20, WaitMarkerID: 2})
	q.Cancel(tok)

	ev, ok := q.Pop()
	if !ok {
		t.Fatal("expected one live event")
	}
	if ev.WaitMarkerID != 2 {
		t.Errorf("got marker %d, want 2 (cancelled event should be skipped)", ev.WaitMarkerID)
	}
	if _, ok := q.Pop(); ok {
		t.Error("expected queue to be empty after popping the only live event")
	}
}

func TestEventQueueLenSkipsTombstonesLazily(t *testing.T) {
	q := NewEventQueue()
	tok := q.Push(Event{ScheduledMs: 1})
	q.Push(Event{ScheduledMs: 2})
	q.Cancel(tok)

	if got := q.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
	if q.Empty() {
		t.Error("Empty() = true, want false")
	}
}

func TestEventQueueHasLiveNonTimer(t *testing.T) {
	q := NewEventQueue()
	if q.HasLiveNonTimer() {
		t.Error("empty queue should report no live non-timer events")
	}

	timerTok := q.Push(Event{Kind: EventTimerFire, ScheduledMs: 10})
	if q.HasLiveNonTimer() {
		t.Error("a queue holding only a timer event should report no live non-timer events")
	}

	waitTok := q.Push(Event{Kind: EventWaitMarker, ScheduledMs: 20})
	if !q.HasLiveNonTimer() {
		t.Error("expected a live non-timer event after pushing one")
	}

	q.Cancel(waitTok)
	if q.HasLiveNonTimer() {
		t.Error("expected no live non-timer events once the only one is cancelled")
	}

	q.Cancel(timerTok) // cancelling a timer event must not affect the counter
	if q.HasLiveNonTimer() {
		t.Error("cancelling a timer event should not report a live non-timer event")
	}

	q.Push(Event{Kind: EventAppData, ScheduledMs: 30})
	if !q.HasLiveNonTimer() {
		t.Error("expected a live non-timer event after pushing another one")
	}
	if _, ok := q.Pop(); !ok {
		t.Fatal("expected a live event to pop")
	}
	if q.HasLiveNonTimer() {
		t.Error("expected no live non-timer events once the only one is popped")
	}
}

func TestEventQueueNextTimeMs(t *testing.T) {
	q := NewEventQueue()
	if _, ok := q.NextTimeMs(); ok {
		t.Error("NextTimeMs on empty queue should report false")
	}
	q.Push(Event{ScheduledMs: 42})
	got, ok := q.NextTimeMs()
	if !ok || got != 42 {
		t.Errorf("NextTimeMs() = (%d, %v), want (42, true)", got, ok)
	}
}
