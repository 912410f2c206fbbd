package mbody

import (
	"strings"

	"curldeck/pkg/idwrap"

	"github.com/goccy/go-json"
)

type BodyKind int8

const (
	BodyKindNone BodyKind = iota
	BodyKindJSON
	BodyKindFormData
	BodyKindURLEncoded
	BodyKindRaw
	BodyKindBinary
)

func (k BodyKind) String() string {
	switch k {
	case BodyKindNone:
		return "none"
	case BodyKindJSON:
		return "json"
	case BodyKindFormData:
		return "form-data"
	case BodyKindURLEncoded:
		return "x-www-form-urlencoded"
	case BodyKindRaw:
		return "raw"
	case BodyKindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

type FormItemKind int8

const (
	FormItemKindText FormItemKind = iota
	FormItemKindFile
)

// FormItem is one multipart form entry. For FormItemKindFile the Value is a
// file path.
type FormItem struct {
	Key     string
	Value   string
	Kind    FormItemKind
	Enabled bool
	ID      idwrap.IDWrap
}

func (f FormItem) IsEnabled() bool {
	return f.Enabled
}

// Body is a closed union: Content carries the payload for JSON, URLEncoded,
// Raw and Binary kinds; FormItems carries it for FormData. Kind selects the
// active variant.
type Body struct {
	Kind      BodyKind
	Content   string
	FormItems []FormItem
}

func None() Body {
	return Body{Kind: BodyKindNone}
}

func JSON(content string) Body {
	return Body{Kind: BodyKindJSON, Content: content}
}

func Raw(content string) Body {
	return Body{Kind: BodyKindRaw, Content: content}
}

func URLEncoded(content string) Body {
	return Body{Kind: BodyKindURLEncoded, Content: content}
}

func Binary(content string) Body {
	return Body{Kind: BodyKindBinary, Content: content}
}

func FormData(items []FormItem) Body {
	return Body{Kind: BodyKindFormData, FormItems: items}
}

const (
	MimeJSON           = "application/json"
	MimeFormURLEncoded = "application/x-www-form-urlencoded"
	MimeMultipartForm  = "multipart/form-data"
)

// SniffKind infers the body kind for free-form body text. The Content-Type
// header wins when it names a known type; otherwise body text that parses as
// a JSON object or array is treated as JSON, and anything else is raw.
func SniffKind(bodyText, contentType string) BodyKind {
	trimmed := strings.TrimSpace(bodyText)
	if trimmed == "" {
		return BodyKindNone
	}
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, MimeJSON):
		return BodyKindJSON
	case strings.Contains(ct, MimeFormURLEncoded):
		return BodyKindURLEncoded
	case strings.Contains(ct, MimeMultipartForm):
		return BodyKindFormData
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		if json.Valid([]byte(trimmed)) {
			return BodyKindJSON
		}
	}
	return BodyKindRaw
}
