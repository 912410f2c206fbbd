package mrequest

import (
	"strings"

	"curldeck/pkg/idwrap"
	"curldeck/pkg/model/mauth"
	"curldeck/pkg/model/mbody"
)

const (
	MethodGet     = "GET"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodPatch   = "PATCH"
	MethodDelete  = "DELETE"
	MethodHead    = "HEAD"
	MethodOptions = "OPTIONS"
)

// Methods lists every method the engine accepts, in canonical order.
var Methods = []string{
	MethodGet, MethodPost, MethodPut, MethodPatch,
	MethodDelete, MethodHead, MethodOptions,
}

func IsValidMethod(method string) bool {
	for _, m := range Methods {
		if m == method {
			return true
		}
	}
	return false
}

// Header is one request header entry. Order is preserved and duplicate keys
// are allowed; Enabled soft-disables the entry without deleting it.
type Header struct {
	Key         string
	Value       string
	Description string
	Enabled     bool
	ID          idwrap.IDWrap
}

func (h Header) IsEnabled() bool {
	return h.Enabled
}

// QueryParam is one URL query entry, same ordering and soft-disable contract
// as Header.
type QueryParam struct {
	Key         string
	Value       string
	Description string
	Enabled     bool
	ID          idwrap.IDWrap
}

func (q QueryParam) IsEnabled() bool {
	return q.Enabled
}

type Request struct {
	ID          idwrap.IDWrap
	Name        string
	Method      string
	Url         string
	Headers     []Header
	QueryParams []QueryParam
	Body        mbody.Body
	Auth        mauth.Auth
}

// ContentTypeHeader returns the value of the first enabled Content-Type
// header, matched case-insensitively, or "" if none is set.
func (r Request) ContentTypeHeader() string {
	for _, h := range r.Headers {
		if h.Enabled && strings.EqualFold(h.Key, "Content-Type") {
			return h.Value
		}
	}
	return ""
}
