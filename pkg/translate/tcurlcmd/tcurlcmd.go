// Package tcurlcmd translates a request model into the argument vector (and
// shareable command line) for a curl invocation. Argument order is fixed and
// covered by golden tests: method, URL, headers, auth, body, redirect and TLS
// flags, timeout.
package tcurlcmd

import (
	"fmt"
	"net/url"
	"runtime"
	"strconv"
	"strings"

	"curldeck/pkg/model/mauth"
	"curldeck/pkg/model/mbody"
	"curldeck/pkg/model/mrequest"
)

// Options are the per-execution knobs; defaults and persistence belong to the
// caller.
type Options struct {
	FollowRedirects bool
	VerifySSL       bool
	TimeoutMs       int64
}

type QuoteStyle int8

const (
	QuoteStylePOSIX QuoteStyle = iota
	QuoteStyleWindows
)

// BuildArgs produces the ordered curl argument vector, without the leading
// program name. The result is meant for direct process spawning, never a
// shell.
func BuildArgs(req mrequest.Request, opts Options) []string {
	args := []string{"-X", req.Method, BuildURL(req)}

	for _, h := range req.Headers {
		if h.Enabled {
			args = append(args, "-H", fmt.Sprintf("%s: %s", h.Key, h.Value))
		}
	}

	args = append(args, authArgs(req)...)
	args = append(args, bodyArgs(req)...)

	if opts.FollowRedirects {
		args = append(args, "--location")
	}
	if !opts.VerifySSL {
		args = append(args, "--insecure")
	}
	args = append(args, "--max-time", strconv.FormatInt(timeoutSeconds(opts.TimeoutMs), 10))

	return args
}

// BuildCommand renders a human-shareable command line, quoting for the
// current platform.
func BuildCommand(req mrequest.Request, opts Options) string {
	style := QuoteStylePOSIX
	if runtime.GOOS == "windows" {
		style = QuoteStyleWindows
	}
	return BuildCommandWithStyle(req, opts, style)
}

func BuildCommandWithStyle(req mrequest.Request, opts Options, style QuoteStyle) string {
	args := BuildArgs(req, opts)
	var b strings.Builder
	b.WriteString("curl")
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(quoteArg(arg, style))
	}
	return b.String()
}

// BuildURL appends the enabled query params (and a query-located api-key) to
// the request URL. When the URL does not parse, the query string is joined
// manually with percent-encoding.
func BuildURL(req mrequest.Request) string {
	pairs := make([][2]string, 0, len(req.QueryParams)+1)
	for _, p := range req.QueryParams {
		if p.Enabled {
			pairs = append(pairs, [2]string{p.Key, p.Value})
		}
	}
	if req.Auth.Kind == mauth.AuthKindAPIKey && req.Auth.APIKey.Location == mauth.APIKeyLocationQuery {
		if req.Auth.APIKey.Name != "" {
			pairs = append(pairs, [2]string{req.Auth.APIKey.Name, req.Auth.APIKey.Value})
		}
	}
	if len(pairs) == 0 {
		return req.Url
	}

	encoded := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		encoded = append(encoded, url.QueryEscape(pair[0])+"="+url.QueryEscape(pair[1]))
	}
	query := strings.Join(encoded, "&")

	u, err := url.Parse(req.Url)
	if err != nil {
		// Manual join fallback.
		separator := "?"
		if strings.Contains(req.Url, "?") {
			separator = "&"
		}
		return req.Url + separator + query
	}
	if u.RawQuery != "" {
		u.RawQuery += "&" + query
	} else {
		u.RawQuery = query
	}
	return u.String()
}

func authArgs(req mrequest.Request) []string {
	switch req.Auth.Kind {
	case mauth.AuthKindBasic:
		basic := req.Auth.Basic
		if basic.Username != "" && basic.Password != "" {
			return []string{"-u", basic.Username + ":" + basic.Password}
		}
	case mauth.AuthKindBearer:
		if token := req.Auth.Bearer.Token; token != "" {
			return []string{"-H", "Authorization: Bearer " + token}
		}
	case mauth.AuthKindAPIKey:
		apiKey := req.Auth.APIKey
		if apiKey.Location == mauth.APIKeyLocationHeader && apiKey.Name != "" {
			return []string{"-H", fmt.Sprintf("%s: %s", apiKey.Name, apiKey.Value)}
		}
		// Query location is handled by BuildURL.
	}
	return nil
}

func bodyArgs(req mrequest.Request) []string {
	var args []string
	switch req.Body.Kind {
	case mbody.BodyKindJSON:
		if req.ContentTypeHeader() == "" {
			args = append(args, "-H", "Content-Type: "+mbody.MimeJSON)
		}
		if req.Body.Content != "" {
			args = append(args, "-d", req.Body.Content)
		}
	case mbody.BodyKindURLEncoded:
		if req.ContentTypeHeader() == "" {
			args = append(args, "-H", "Content-Type: "+mbody.MimeFormURLEncoded)
		}
		if req.Body.Content != "" {
			args = append(args, "-d", req.Body.Content)
		}
	case mbody.BodyKindFormData:
		for _, item := range req.Body.FormItems {
			if !item.Enabled {
				continue
			}
			if item.Kind == mbody.FormItemKindFile {
				args = append(args, "-F", fmt.Sprintf("%s=@%s", item.Key, item.Value))
			} else {
				args = append(args, "-F", fmt.Sprintf("%s=%s", item.Key, item.Value))
			}
		}
	case mbody.BodyKindRaw:
		if req.Body.Content != "" {
			args = append(args, "--data-raw", req.Body.Content)
		}
	case mbody.BodyKindBinary:
		if req.Body.Content != "" {
			args = append(args, "--data-binary", req.Body.Content)
		}
	}
	return args
}

// timeoutSeconds rounds the millisecond timeout up to whole seconds for
// curl's --max-time.
func timeoutSeconds(timeoutMs int64) int64 {
	if timeoutMs <= 0 {
		return 1
	}
	return (timeoutMs + 999) / 1000
}

const posixSpecial = " \t\n'\"\\$`!"

func quoteArg(arg string, style QuoteStyle) string {
	if style == QuoteStyleWindows {
		return quoteWindows(arg)
	}
	return quotePosix(arg)
}

func quotePosix(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, posixSpecial) {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

const windowsSpecial = " \t\"^&|<>"

func quoteWindows(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, windowsSpecial) {
		return arg
	}
	return `"` + strings.ReplaceAll(arg, `"`, `\"`) + `"`
}
