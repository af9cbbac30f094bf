package simcore

import "math/rand"

// rngStream is the simulator's single entropy source. It lives on the
// Engine as a plain field — never a package global — so two Engines (e.g.
// one per fuzz-sweep seed) never share state, and the same seed always
// reproduces the same draw sequence. Only the Channel (§4.3) pulls from it;
// no other subsystem, including student protocols, may observe it.
type rngStream struct {
	r *rand.Rand
}

func newRNGStream(seed uint64) *rngStream {
	return &rngStream{r: rand.New(rand.NewSource(int64(seed)))} //nolint:gosec
}

// draw returns the next uniform float64 in [0, 1).
func (s *rngStream) draw() float64 {
	return s.r.Float64()
}
