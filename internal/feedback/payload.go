package feedback

import (
	"encoding/json"
	"fmt"
)

// ValidatePayload enforces the minimal structural contract on a motion
// analysis payload before it is used anywhere: a non-nil, non-empty mapping
// that serializes cleanly. The payload schema itself is open; only this much
// is guaranteed.
func ValidatePayload(payload map[string]any) error {
	if payload == nil {
		return fmt.Errorf("analysis payload validation: payload is nil")
	}
	if len(payload) == 0 {
		return fmt.Errorf("analysis payload validation: payload is empty")
	}
	if _, err := json.Marshal(payload); err != nil {
		return fmt.Errorf("analysis payload validation: not serializable: %w", err)
	}
	return nil
}

// SerializePayload renders the payload for prompt injection.
func SerializePayload(payload map[string]any) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("analysis payload validation: not serializable: %w", err)
	}
	return string(data), nil
}
