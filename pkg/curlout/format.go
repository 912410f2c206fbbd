package curlout

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
)

// FormatBody pretty-prints JSON bodies with two-space indentation. Anything
// that is not JSON, including bodies that fail to parse, comes back
// unchanged.
func FormatBody(body, contentType string) string {
	if !strings.Contains(contentType, "application/json") {
		return body
	}
	var out bytes.Buffer
	if err := json.Indent(&out, []byte(body), "", "  "); err != nil {
		return body
	}
	return out.String()
}
