package mresponse

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Response is the decoded result of one executed request. Headers are a
// lowercased-key map where the last occurrence of a duplicate name wins; this
// is deliberately narrower than the ordered, duplicate-preserving request
// header model.
type Response struct {
	Status      int
	StatusText  string
	Headers     map[string]string
	Body        string
	ContentType string
	SizeBytes   int64
	TimeMs      float64
	CommandText string
}

// ResponseVar is the shape a response takes inside an expression environment.
type ResponseVar struct {
	Status   int               `json:"status"`
	Body     any               `json:"body"`
	Headers  map[string]string `json:"headers"`
	Duration float64           `json:"duration"`
}

// ToVar converts a response for assertion evaluation. A body that is valid
// JSON is decoded (numbers kept as json.Number), anything else stays a string.
func (r Response) ToVar() ResponseVar {
	var body any = r.Body
	raw := []byte(r.Body)
	if json.Valid(raw) {
		var jsonBody any
		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.UseNumber()
		if err := decoder.Decode(&jsonBody); err == nil {
			body = jsonBody
		}
	}

	return ResponseVar{
		Status:   r.Status,
		Body:     body,
		Headers:  r.Headers,
		Duration: r.TimeMs,
	}
}

// ToEnv builds the expression environment binding for this response.
func (r Response) ToEnv() map[string]any {
	v := r.ToVar()
	return map[string]any{
		"response": map[string]any{
			"status":   v.Status,
			"body":     v.Body,
			"headers":  v.Headers,
			"duration": v.Duration,
		},
	}
}
