package portal

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The listing endpoint has shipped three body shapes across backend
// versions: a {code, body: [...]} envelope, a {data: {body: [...]}}
// double wrap, and a bare array. Detection follows that priority order.
type listEnvelope struct {
	Code json.RawMessage `json:"code"`
	Body json.RawMessage `json:"body"`
	Data *struct {
		Body json.RawMessage `json:"body"`
	} `json:"data"`
}

// decodeAbsenceList detects which envelope shape the response carries and
// maps every element to an AbsenceRecord.
func decodeAbsenceList(raw []byte, defaultType string) ([]AbsenceRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrUnexpectedFormat
	}

	var elements json.RawMessage
	switch trimmed[0] {
	case '{':
		var env listEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedFormat, err)
		}
		switch {
		case isJSONArray(env.Body):
			elements = env.Body
		case env.Data != nil && isJSONArray(env.Data.Body):
			elements = env.Data.Body
		default:
			return nil, ErrUnexpectedFormat
		}
	case '[':
		elements = trimmed
	default:
		return nil, ErrUnexpectedFormat
	}

	var wires []absenceWire
	if err := json.Unmarshal(elements, &wires); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedFormat, err)
	}

	records := make([]AbsenceRecord, 0, len(wires))
	for _, w := range wires {
		records = append(records, mapRecord(w, defaultType))
	}
	return records, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
