// Package curlout decodes the sentinel-delimited stdout of an instrumented
// curl run into a response model. Decoding is best effort and never fails on
// malformed input.
package curlout

import (
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"

	"curldeck/pkg/model/mresponse"

	"golang.org/x/net/html/charset"
)

// SentinelMarker delimits the HTTP response text from the machine-readable
// status/time/size lines curl appends via its write-out format.
const SentinelMarker = "---CURLDECK_INFO---"

const defaultContentType = "text/plain"

var statusLineRe = regexp.MustCompile(`(?m)^HTTP/[\d.]+ +(\d{3})(?: +(.*?))?\r?$`)

// Decode parses raw curl output. externalElapsedMs is the wall-clock time
// measured around the process and is used when curl did not report one.
func Decode(rawOutput string, externalElapsedMs float64, commandText string) mresponse.Response {
	content, info := splitSentinel(rawOutput)
	infoStatus, infoTimeMs, infoSize := parseInfo(info)

	status, reason, headers, body := parseLastBlock(content)
	if infoStatus != 0 {
		status = infoStatus
	}

	contentType := headers["content-type"]
	if contentType == "" {
		contentType = defaultContentType
	}
	body = normalizeCharset(body, contentType)

	statusText := reason
	if statusText == "" {
		statusText = StatusText(status)
	}

	sizeBytes := infoSize
	if sizeBytes == 0 {
		sizeBytes = int64(len(body))
	}
	timeMs := infoTimeMs
	if timeMs == 0 {
		timeMs = externalElapsedMs
	}

	return mresponse.Response{
		Status:      status,
		StatusText:  statusText,
		Headers:     headers,
		Body:        body,
		ContentType: contentType,
		SizeBytes:   sizeBytes,
		TimeMs:      timeMs,
		CommandText: commandText,
	}
}

func splitSentinel(rawOutput string) (content, info string) {
	idx := strings.Index(rawOutput, SentinelMarker)
	if idx == -1 {
		return rawOutput, ""
	}
	content = strings.TrimSuffix(rawOutput[:idx], "\n")
	content = strings.TrimSuffix(content, "\r")
	info = rawOutput[idx+len(SentinelMarker):]
	return content, strings.TrimPrefix(info, "\n")
}

// parseInfo reads the three write-out lines: status code, total seconds and
// downloaded size. Each defaults to zero when missing or unparseable.
func parseInfo(info string) (status int, timeMs float64, size int64) {
	lines := strings.Split(strings.TrimSpace(info), "\n")
	if len(lines) > 0 {
		status, _ = strconv.Atoi(strings.TrimSpace(lines[0]))
	}
	if len(lines) > 1 {
		if seconds, err := strconv.ParseFloat(strings.TrimSpace(lines[1]), 64); err == nil {
			timeMs = seconds * 1000
		}
	}
	if len(lines) > 2 {
		size, _ = strconv.ParseInt(strings.TrimSpace(lines[2]), 10, 64)
	}
	return status, timeMs, size
}

// parseLastBlock splits the content on status-line boundaries (the redirect
// chain curl prints with --location) and decodes only the final block.
func parseLastBlock(content string) (status int, reason string, headers map[string]string, body string) {
	headers = make(map[string]string)

	locs := statusLineRe.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return 0, "", headers, content
	}
	block := content[locs[len(locs)-1][0]:]

	var headerPart string
	if idx := strings.Index(block, "\r\n\r\n"); idx != -1 {
		headerPart = block[:idx]
		body = block[idx+4:]
	} else if idx := strings.Index(block, "\n\n"); idx != -1 {
		headerPart = block[:idx]
		body = block[idx+2:]
	} else {
		// No header/body boundary: the whole block is body, no headers.
		statusLine, _, _ := strings.Cut(block, "\n")
		if m := statusLineRe.FindStringSubmatch(statusLine); m != nil {
			status, _ = strconv.Atoi(m[1])
			reason = strings.TrimSpace(m[2])
		}
		return status, reason, headers, block
	}

	lines := strings.Split(strings.ReplaceAll(headerPart, "\r\n", "\n"), "\n")
	if m := statusLineRe.FindStringSubmatch(lines[0]); m != nil {
		status, _ = strconv.Atoi(m[1])
		reason = strings.TrimSpace(m[2])
	}
	for _, line := range lines[1:] {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		// Duplicate response header names overwrite; last one wins. This is
		// intentionally narrower than the request-side ordered model.
		headers[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return status, reason, headers, body
}

// normalizeCharset converts the body to UTF-8 when the content type names a
// charset. Conversion failures leave the body as delivered.
func normalizeCharset(body, contentType string) string {
	if body == "" || !strings.Contains(contentType, "charset") {
		return body
	}
	reader, err := charset.NewReader(bytes.NewReader([]byte(body)), contentType)
	if err != nil {
		return body
	}
	converted, err := io.ReadAll(reader)
	if err != nil {
		return body
	}
	return string(converted)
}
