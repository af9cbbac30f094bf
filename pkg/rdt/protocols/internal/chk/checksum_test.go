package chk

import "testing"

func TestComputeIsDeterministic(t *testing.T) {
	a := Compute(3, 7, 0x10, []byte("payload"))
	b := Compute(3, 7, 0x10, []byte("payload"))
	if a != b {
		t.Errorf("Compute returned different values for identical inputs: %#04x vs %#04x", a, b)
	}
}

func TestVerifyAcceptsAMatchingChecksum(t *testing.T) {
	payload := []byte("hello")
	sum := Compute(1, 2, 0, payload)
	if !Verify(1, 2, 0, payload, sum) {
		t.Error("Verify rejected a checksum Compute itself produced")
	}
}

func TestVerifyRejectsAFlippedChecksum(t *testing.T) {
	payload := []byte("hello")
	sum := Compute(1, 2, 0, payload)
	if Verify(1, 2, 0, payload, sum^0xFFFF) {
		t.Error("Verify accepted a fully-flipped checksum")
	}
}

func TestComputeDistinguishesDifferentPayloads(t *testing.T) {
	a := Compute(0, 0, 0, []byte("aa"))
	b := Compute(0, 0, 0, []byte("ab"))
	if a == b {
		t.Error("different payloads produced the same checksum")
	}
}
