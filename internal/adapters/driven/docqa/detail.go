package docqa

import (
	"encoding/json"
	"strings"
)

// errorResponse is the failure body shape. Detail is a string for
// application errors and a list of field errors for request validation.
type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// fieldError is one entry of a request validation failure.
type fieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// parseDetail extracts the human-readable reason from a failure body.
// It returns "" when the body carries no usable detail.
func parseDetail(body []byte) string {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(resp.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var fields []fieldError
	if err := json.Unmarshal(resp.Detail, &fields); err == nil {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			if msg := strings.TrimSpace(f.Msg); msg != "" {
				msgs = append(msgs, msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
