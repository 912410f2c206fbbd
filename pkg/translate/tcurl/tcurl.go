// Package tcurl imports a pasted curl command line into a request model.
package tcurl

import (
	"fmt"
	"regexp"
	"strings"

	"curldeck/pkg/idwrap"
	"curldeck/pkg/model/mauth"
	"curldeck/pkg/model/mbody"
	"curldeck/pkg/model/mrequest"
	"curldeck/pkg/reqfile"
)

var (
	urlPattern    = regexp.MustCompile(`(?:https?://|www\.)[^\s'"]+`)
	methodPattern = regexp.MustCompile(`(?:-X|--request)\s+(?:'([A-Z]+)'|"([A-Z]+)"|([A-Z]+))`)
	headerPattern = regexp.MustCompile(`(?:-H|--header)\s+(?:'([^:]+):([^']+)'|"([^:]+):([^"]+)"|([^:]+):([^'"\s]+))`)
	userPattern   = regexp.MustCompile(`(?:-u|--user)\s+(?:'([^']*)'|"([^"]*)"|(\S+))`)

	dataPattern          = regexp.MustCompile(`(?:-d|--data|--data-raw|--data-binary)\s+(?:'([^']*)'|"([^"]*)"|([^\s'"][^\s]*))`)
	dataURLEncodePattern = regexp.MustCompile(`--data-urlencode\s+(?:'([^=]+)=([^']*)'|"([^=]+)=([^"]*)"|([^=\s]+)=([^\s'"][^\s]*))`)
	formDataPattern      = regexp.MustCompile(`(?:-F|--form)\s+(?:'([^=]+)=([^']*)'|"([^=]+)=([^"]*)"|([^=\s]+)=([^\s'"][^\s]*))`)
)

// ConvertCurl parses a curl command string, handling line continuations and
// multi-line input, into a single request.
func ConvertCurl(curlStr string) (mrequest.Request, error) {
	normalized := normalizeCurlCommand(curlStr)
	if !strings.HasPrefix(strings.TrimSpace(normalized), "curl") {
		return mrequest.Request{}, fmt.Errorf("invalid curl command")
	}

	fullURL := extractURL(normalized)
	if fullURL == "" {
		return mrequest.Request{}, fmt.Errorf("URL not found in curl command")
	}

	method := extractMethod(normalized)
	headers := extractHeaders(normalized)
	auth := extractBasicAuth(normalized)

	hasDataFlag := false
	body := extractBody(normalized, &hasDataFlag)

	// Data flags without an explicit method imply POST.
	if method == "GET" && hasDataFlag {
		method = "POST"
	}

	parsed := reqfile.ParseAll(method + " " + fullURL)
	if len(parsed) == 0 {
		return mrequest.Request{}, fmt.Errorf("could not parse URL %q", fullURL)
	}
	req := parsed[0]
	req.Headers = headers
	req.Body = body
	req.Auth = auth
	return req, nil
}

// normalizeCurlCommand flattens line continuations and multi-line commands
// into one line, stopping at a second top-level curl command.
func normalizeCurlCommand(curlStr string) string {
	curlStr = strings.ReplaceAll(curlStr, " \\\n", " ")
	curlStr = strings.ReplaceAll(curlStr, "\\\n", " ")

	var normalized strings.Builder
	inQuote := false
	quoteChar := rune(0)

	lines := strings.Split(curlStr, "\n")
	for i, line := range lines {
		trimmedLine := strings.TrimSpace(line)
		if trimmedLine == "" {
			continue
		}
		if i > 0 && !inQuote && strings.HasPrefix(trimmedLine, "curl") && normalized.Len() > 0 {
			break
		}
		if normalized.Len() > 0 && !inQuote {
			normalized.WriteRune(' ')
		}
		for _, char := range trimmedLine {
			if char == '\'' || char == '"' {
				if !inQuote {
					inQuote = true
					quoteChar = char
				} else if char == quoteChar {
					inQuote = false
				}
			}
			normalized.WriteRune(char)
		}
	}

	return normalized.String()
}

func extractURL(curlStr string) string {
	urls := urlPattern.FindAllString(curlStr, -1)
	if len(urls) > 0 {
		return strings.TrimRight(urls[0], "'\" ")
	}

	fields := strings.Fields(curlStr)
	for i, field := range fields {
		if i > 0 && field != "curl" && !strings.HasPrefix(field, "-") &&
			(fields[i-1] == "curl" || fields[i-1] == "-L") {
			return removeQuotes(field)
		}
	}
	return ""
}

func extractMethod(curlStr string) string {
	matches := methodPattern.FindStringSubmatch(curlStr)
	if len(matches) >= 2 {
		for i := 1; i < len(matches); i++ {
			if matches[i] != "" {
				return matches[i]
			}
		}
	}
	return "GET"
}

func extractHeaders(curlStr string) []mrequest.Header {
	var headers []mrequest.Header
	for _, match := range headerPattern.FindAllStringSubmatch(curlStr, -1) {
		var key, value string
		switch {
		case match[1] != "":
			key, value = match[1], match[2]
		case match[3] != "":
			key, value = match[3], match[4]
		default:
			key, value = match[5], match[6]
		}
		headers = append(headers, mrequest.Header{
			ID:      idwrap.NewNow(),
			Key:     strings.TrimSpace(key),
			Value:   strings.TrimSpace(value),
			Enabled: true,
		})
	}
	return headers
}

func extractBasicAuth(curlStr string) mauth.Auth {
	match := userPattern.FindStringSubmatch(curlStr)
	if match == nil {
		return mauth.None()
	}
	var credential string
	for i := 1; i < len(match); i++ {
		if match[i] != "" {
			credential = match[i]
			break
		}
	}
	username, password, ok := strings.Cut(credential, ":")
	if !ok {
		return mauth.None()
	}
	return mauth.Basic(username, password)
}

func extractBody(curlStr string, hasDataFlag *bool) mbody.Body {
	var formItems []mbody.FormItem
	for _, match := range formDataPattern.FindAllStringSubmatch(curlStr, -1) {
		*hasDataFlag = true
		key, value := pickPair(match)
		kind := mbody.FormItemKindText
		if strings.HasPrefix(value, "@") {
			kind = mbody.FormItemKindFile
			value = strings.TrimPrefix(value, "@")
		}
		formItems = append(formItems, mbody.FormItem{
			ID:      idwrap.NewNow(),
			Key:     key,
			Value:   value,
			Kind:    kind,
			Enabled: true,
		})
	}
	if len(formItems) > 0 {
		return mbody.FormData(formItems)
	}

	var urlEncodedPairs []string
	for _, match := range dataURLEncodePattern.FindAllStringSubmatch(curlStr, -1) {
		*hasDataFlag = true
		key, value := pickPair(match)
		urlEncodedPairs = append(urlEncodedPairs, key+"="+value)
	}
	if len(urlEncodedPairs) > 0 {
		return mbody.URLEncoded(strings.Join(urlEncodedPairs, "&"))
	}

	if match := dataPattern.FindStringSubmatch(curlStr); match != nil {
		*hasDataFlag = true
		var content string
		for i := 1; i < len(match); i++ {
			if match[i] != "" {
				content = match[i]
				break
			}
		}
		if kind := mbody.SniffKind(content, ""); kind == mbody.BodyKindJSON {
			return mbody.JSON(content)
		}
		return mbody.Raw(content)
	}

	return mbody.None()
}

func pickPair(match []string) (string, string) {
	switch {
	case match[1] != "":
		return match[1], match[2]
	case match[3] != "":
		return match[3], match[4]
	default:
		return match[5], match[6]
	}
}

func removeQuotes(s string) string {
	s = strings.TrimSpace(s)
	if (strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'")) ||
		(strings.HasPrefix(s, "\"") && strings.HasSuffix(s, "\"")) {
		return s[1 : len(s)-1]
	}
	return s
}
