package scenario

import (
	"encoding/base64"
	"fmt"
)

// Bytes resolves an app_send action's payload from whichever of
// bytes_text/bytes_b64 was set (bytes_text wins if both are present — scenario
// authors use it for readability, bytes_b64 for payloads with unprintable bytes).
func (a Action) Bytes() ([]byte, error) {
	if a.BytesText != "" {
		return []byte(a.BytesText), nil
	}
	if a.BytesB64 != "" {
		b, err := base64.StdEncoding.DecodeString(a.BytesB64)
		if err != nil {
			return nil, fmt.Errorf("action %s: invalid bytes_b64: %w", a.Type, err)
		}
		return b, nil
	}
	return nil, nil
}

// ExpectedBytes resolves a delivered_equals assertion's expected payload.
func (a Assertion) ExpectedBytes() ([]byte, error) {
	if a.ExpectedText != "" {
		return []byte(a.ExpectedText), nil
	}
	if a.ExpectedB64 != "" {
		b, err := base64.StdEncoding.DecodeString(a.ExpectedB64)
		if err != nil {
			return nil, fmt.Errorf("assertion %s: invalid expected_b64: %w", a.Type, err)
		}
		return b, nil
	}
	return nil, nil
}
