package justification

import (
	"fmt"
	"strconv"
)

// extractCode pulls the canonical justification identifier out of whichever
// response shape the backend returned, checking in priority order:
// body.justification_code, justification_code, id, body.id.
func extractCode(parsed map[string]any) (string, bool) {
	body, _ := parsed["body"].(map[string]any)

	if body != nil {
		if code, ok := asCode(body["justification_code"]); ok {
			return code, true
		}
	}
	if code, ok := asCode(parsed["justification_code"]); ok {
		return code, true
	}
	if code, ok := asCode(parsed["id"]); ok {
		return code, true
	}
	if body != nil {
		if code, ok := asCode(body["id"]); ok {
			return code, true
		}
	}
	return "", false
}

// asCode accepts the identifier as a string or a JSON number.
func asCode(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, val != ""
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10), true
		}
		return fmt.Sprintf("%v", val), true
	default:
		return "", false
	}
}
