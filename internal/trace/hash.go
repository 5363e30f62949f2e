package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
const (
	DomainCall     = "tst/call/v1"
	DomainScenario = "tst/scenario/v1"
)

// Hash computes SHA-256 over domain, a 0x00 separator, and data.
// The separator keeps domain and data from running into each other.
func Hash(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CallID computes the content-addressed ID of an event within a run.
func CallID(runID string, e Event) (string, error) {
	obj := e.Value()
	obj["run_id"] = String(runID)
	data, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("CallID: failed to marshal: %w", err)
	}
	return Hash(DomainCall, data), nil
}

// ScenarioHash identifies the content of a scenario snapshot, independent
// of its run ID.
func ScenarioHash(s Snapshot) (string, error) {
	data, err := s.Marshal()
	if err != nil {
		return "", fmt.Errorf("ScenarioHash: failed to marshal: %w", err)
	}
	return Hash(DomainScenario, data), nil
}
