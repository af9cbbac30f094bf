package simcore

// timerTable is the per-endpoint map from timer_id to the event token of its
// pending TimerFire, per spec §4.4: a timer_id is either unregistered or
// maps to exactly one future event.
type timerTable map[int32]EventToken

// register records tok as the pending fire for id, returning the
// previously-registered token (if any) so the caller can cancel it.
func (t timerTable) register(id int32, tok EventToken) (EventToken, bool) {
	prev, had := t[id]
	t[id] = tok
	return prev, had
}

// unregister removes id's mapping, returning its token if it was present.
// Called both by cancel_timer and by the engine just before a TimerFire
// hook runs, so the hook may safely re-arm the same id.
func (t timerTable) unregister(id int32) (EventToken, bool) {
	tok, had := t[id]
	if had {
		delete(t, id)
	}
	return tok, had
}
