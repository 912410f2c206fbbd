// Package reqfile parses the plain-text request definition format: blocks of
// `METHOD URL`, header lines and body text, separated by lines of three or
// more '#', with `@name = value` variable bindings and {{name}} interpolation.
package reqfile

import (
	"net/url"
	"regexp"
	"strings"

	"curldeck/pkg/idwrap"
	"curldeck/pkg/model/mauth"
	"curldeck/pkg/model/mbody"
	"curldeck/pkg/model/mrequest"
	"curldeck/pkg/model/mvar"
	"curldeck/pkg/varsystem"
)

var (
	variableLineRe = regexp.MustCompile(`^@([A-Za-z0-9_.-]+)\s*=\s*(.*)$`)
	requestLineRe  = regexp.MustCompile(`^([A-Za-z]+)\s+(\S+)(?:\s+HTTP/[\d.]+)?\s*$`)
	nameLineRe     = regexp.MustCompile(`^#{1,2}\s+(\S.*)$`)
)

// block is the transient form of one request before conversion to
// mrequest.Request. StartLine and EndLine are 1-based and inclusive.
type block struct {
	Method    string
	Url       string
	Headers   []mrequest.Header
	BodyLines []string
	Name      string
	StartLine int
	EndLine   int
}

// ParseAll parses every request block in text. Parsing is stateless per call;
// the variable map is threaded through the single line walk, so a binding is
// visible only to lines scanned after it (forward references stay literal).
func ParseAll(text string) []mrequest.Request {
	blocks, _ := parseBlocks(text)
	requests := make([]mrequest.Request, 0, len(blocks))
	for _, b := range blocks {
		requests = append(requests, buildRequest(b))
	}
	return requests
}

// ParseAtPosition returns the request whose source lines contain the 1-based
// lineNumber, or false if no block covers it.
func ParseAtPosition(text string, lineNumber int) (mrequest.Request, bool) {
	blocks, _ := parseBlocks(text)
	for _, b := range blocks {
		if lineNumber >= b.StartLine && lineNumber <= b.EndLine {
			return buildRequest(b), true
		}
	}
	return mrequest.Request{}, false
}

// CollectVariables scans the `@name = value` lines only. Values are returned
// as written; later bindings of the same name overwrite earlier ones.
func CollectVariables(text string) map[string]string {
	vars := make(map[string]string)
	for _, line := range splitLines(text) {
		if m := variableLineRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			vars[m[1]] = strings.TrimSpace(m[2])
		}
	}
	return vars
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func isSeparatorLine(line string) bool {
	return strings.HasPrefix(line, "###")
}

func isCommentLine(line string) bool {
	if strings.HasPrefix(line, "//") {
		return true
	}
	return strings.HasPrefix(line, "#") && !isSeparatorLine(line)
}

// parseBlocks walks the lines once, recording variable bindings as they
// appear and resolving each block element at the position it is scanned.
func parseBlocks(text string) ([]block, varsystem.VarMap) {
	lines := splitLines(text)
	vars := varsystem.VarMap{}

	var blocks []block
	var current *block
	inBody := false
	pendingName := ""
	pendingStart := 0

	closeBlock := func(endLine int) {
		if current != nil && current.Method != "" {
			current.EndLine = endLine
			// Resolve the body against the bindings recorded up to this
			// point in the walk, not against the whole file.
			if len(current.BodyLines) > 0 {
				body := strings.TrimSpace(strings.Join(current.BodyLines, "\n"))
				if resolved, err := vars.ReplaceVars(body); err == nil {
					body = resolved
				}
				if body == "" {
					current.BodyLines = nil
				} else {
					current.BodyLines = []string{body}
				}
			}
			blocks = append(blocks, *current)
		}
		current = nil
		inBody = false
	}

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(raw)

		if isSeparatorLine(line) {
			closeBlock(lineNo - 1)
			pendingName = ""
			pendingStart = 0
			continue
		}

		if m := variableLineRe.FindStringSubmatch(line); m != nil && !inBody {
			value := strings.TrimSpace(m[2])
			if resolved, err := vars.ReplaceVars(value); err == nil {
				value = resolved
			}
			vars[m[1]] = mvar.Var{VarKey: m[1], Value: value, Enabled: true}
			continue
		}

		if current == nil {
			// Fresh block: skip blanks, record names, drop comments.
			if line == "" {
				continue
			}
			if m := nameLineRe.FindStringSubmatch(line); m != nil {
				pendingName = strings.TrimSpace(m[1])
				if pendingStart == 0 {
					pendingStart = lineNo
				}
				continue
			}
			if isCommentLine(line) {
				continue
			}
			if m := requestLineRe.FindStringSubmatch(line); m != nil {
				method := strings.ToUpper(m[1])
				if !mrequest.IsValidMethod(method) {
					continue
				}
				urlStr := m[2]
				if resolved, err := vars.ReplaceVars(urlStr); err == nil {
					urlStr = resolved
				}
				start := lineNo
				if pendingStart != 0 {
					start = pendingStart
				}
				current = &block{
					Method:    method,
					Url:       urlStr,
					Name:      pendingName,
					StartLine: start,
				}
				pendingName = ""
				pendingStart = 0
			}
			continue
		}

		if !inBody {
			if line == "" {
				inBody = true
				continue
			}
			if key, value, ok := strings.Cut(line, ":"); ok {
				value = strings.TrimSpace(value)
				if resolved, err := vars.ReplaceVars(value); err == nil {
					value = resolved
				}
				current.Headers = append(current.Headers, mrequest.Header{
					ID:      idwrap.NewNow(),
					Key:     strings.TrimSpace(key),
					Value:   value,
					Enabled: true,
				})
			}
			continue
		}

		current.BodyLines = append(current.BodyLines, raw)
	}

	closeBlock(len(lines))
	return blocks, vars
}

func buildRequest(b block) mrequest.Request {
	baseURL, params := splitURL(b.Url)

	req := mrequest.Request{
		ID:          idwrap.NewNow(),
		Method:      b.Method,
		Url:         baseURL,
		Headers:     b.Headers,
		QueryParams: params,
		Auth:        mauth.None(),
	}

	bodyText := ""
	if len(b.BodyLines) > 0 {
		bodyText = b.BodyLines[0]
	}
	req.Body = inferBody(bodyText, req.ContentTypeHeader())

	if b.Name != "" {
		req.Name = b.Name
	} else {
		req.Name = generateName(b.Method, b.Url)
	}
	return req
}

func inferBody(bodyText, contentType string) mbody.Body {
	switch mbody.SniffKind(bodyText, contentType) {
	case mbody.BodyKindNone:
		return mbody.None()
	case mbody.BodyKindJSON:
		return mbody.JSON(bodyText)
	case mbody.BodyKindURLEncoded:
		return mbody.URLEncoded(bodyText)
	case mbody.BodyKindFormData:
		// The text format cannot carry individual multipart items; the raw
		// body is preserved in Content for the caller to split.
		return mbody.Body{Kind: mbody.BodyKindFormData, Content: bodyText}
	default:
		return mbody.Raw(bodyText)
	}
}

// splitURL strips the query string off a URL, returning the base form and the
// query entries in their original order. Relative URLs come back as "/path".
func splitURL(urlStr string) (string, []mrequest.QueryParam) {
	rawURL, rawQuery, hasQuery := strings.Cut(urlStr, "?")

	var params []mrequest.QueryParam
	if hasQuery {
		for _, pair := range strings.Split(rawQuery, "&") {
			if pair == "" {
				continue
			}
			key, value, _ := strings.Cut(pair, "=")
			if unescaped, err := url.QueryUnescape(key); err == nil {
				key = unescaped
			}
			if unescaped, err := url.QueryUnescape(value); err == nil {
				value = unescaped
			}
			params = append(params, mrequest.QueryParam{
				ID:      idwrap.NewNow(),
				Key:     key,
				Value:   value,
				Enabled: true,
			})
		}
	}

	// The URL text is preserved byte for byte; only relative forms are
	// normalized to a leading slash.
	if u, err := url.Parse(rawURL); err != nil || u.IsAbs() {
		return rawURL, params
	}
	if !strings.HasPrefix(rawURL, "/") {
		return "/" + rawURL, params
	}
	return rawURL, params
}

// generateName builds the auto name "METHOD lastPathSegment", falling back to
// the host when the path is empty, "root" when neither exists, and "request"
// when the URL does not parse at all.
func generateName(method, urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return method + " request"
	}
	path := strings.Trim(u.Path, "/")
	if path != "" {
		segments := strings.Split(path, "/")
		return method + " " + segments[len(segments)-1]
	}
	if host := u.Hostname(); host != "" {
		return method + " " + host
	}
	return method + " root"
}
