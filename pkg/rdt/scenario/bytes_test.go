package scenario

import "testing"

func TestActionBytesPrefersTextOverB64(t *testing.T) {
	a := Action{BytesText: "hi", BytesB64: "AAAA"}
	got, err := a.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if string(got) != "hi" {
		t.Errorf("got %q, want %q", got, "hi")
	}
}

func TestActionBytesDecodesB64(t *testing.T) {
	a := Action{BytesB64: "aGVsbG8="} // "hello"
	got, err := a.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestActionBytesRejectsInvalidB64(t *testing.T) {
	a := Action{BytesB64: "not valid base64!!"}
	if _, err := a.Bytes(); err == nil {
		t.Error("expected an error for malformed base64")
	}
}

func TestActionBytesEmptyWhenNeitherSet(t *testing.T) {
	a := Action{}
	got, err := a.Bytes()
	if err != nil || got != nil {
		t.Errorf("got (%v, %v), want (nil, nil)", got, err)
	}
}

func TestAssertionExpectedBytesMirrorsActionBytes(t *testing.T) {
	a := Assertion{ExpectedText: "yo"}
	got, err := a.ExpectedBytes()
	if err != nil || string(got) != "yo" {
		t.Errorf("got (%q, %v), want (\"yo\", nil)", got, err)
	}
}
