package vision

import (
	"encoding/json"
	"fmt"

	"designify/internal/projecttree"
)

// parsePayload decodes the model's JSON into a generation payload. Only
// the top-level shape is validated: each of the three known sections, if
// present, must map string filenames to string contents. A malformed
// section is dropped rather than failing the whole generation; merge
// simply skips what is missing.
func parsePayload(raw json.RawMessage) (projecttree.Payload, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return projecttree.Payload{}, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	return projecttree.Payload{
		Components: decodeSection(top["components"]),
		Styles:     decodeSection(top["styles"]),
		Pages:      decodeSection(top["pages"]),
	}, nil
}

func decodeSection(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var section map[string]string
	if err := json.Unmarshal(raw, &section); err != nil {
		return nil
	}
	return section
}
