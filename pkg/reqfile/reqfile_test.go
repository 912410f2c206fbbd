package reqfile_test

import (
	"testing"

	"curldeck/pkg/model/mbody"
	"curldeck/pkg/reqfile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAllQueryExtraction(t *testing.T) {
	text := "GET https://api.example.com/users?limit=10&offset=20\n"

	requests := reqfile.ParseAll(text)
	require.Len(t, requests, 1)

	req := requests[0]
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "https://api.example.com/users", req.Url)
	require.Len(t, req.QueryParams, 2)
	assert.Equal(t, "limit", req.QueryParams[0].Key)
	assert.Equal(t, "10", req.QueryParams[0].Value)
	assert.True(t, req.QueryParams[0].Enabled)
	assert.Equal(t, "offset", req.QueryParams[1].Key)
	assert.Equal(t, "20", req.QueryParams[1].Value)
}

func TestParseAllExplicitName(t *testing.T) {
	text := `###
# Get Users
GET https://api.example.com/users
Accept: application/json
`

	requests := reqfile.ParseAll(text)
	require.Len(t, requests, 1)
	assert.Equal(t, "Get Users", requests[0].Name)
	require.Len(t, requests[0].Headers, 1)
	assert.Equal(t, "Accept", requests[0].Headers[0].Key)
	assert.Equal(t, "application/json", requests[0].Headers[0].Value)
}

func TestParseAllGeneratedNames(t *testing.T) {
	testCases := []struct {
		line string
		want string
	}{
		{"GET https://api.example.com/users/42", "GET 42"},
		{"POST https://api.example.com/users", "POST users"},
		{"GET https://example.com", "GET example.com"},
		{"GET https://example.com/", "GET example.com"},
		{"DELETE /sessions/current", "DELETE current"},
	}

	for _, tc := range testCases {
		requests := reqfile.ParseAll(tc.line)
		require.Len(t, requests, 1, "line %q", tc.line)
		assert.Equal(t, tc.want, requests[0].Name, "line %q", tc.line)
	}
}

func TestParseAllEmptyAndCommentOnly(t *testing.T) {
	assert.Empty(t, reqfile.ParseAll(""))
	assert.Empty(t, reqfile.ParseAll("\n\n\n"))
	assert.Empty(t, reqfile.ParseAll("// just a comment\n# another one\n"))
	assert.Empty(t, reqfile.ParseAll("###\n###\n"))
}

func TestParseAllMultipleBlocks(t *testing.T) {
	text := `GET https://example.com/a

###

POST https://example.com/b
Content-Type: application/json

{"name": "test"}

###
DELETE https://example.com/c
`

	requests := reqfile.ParseAll(text)
	require.Len(t, requests, 3)
	assert.Equal(t, "GET", requests[0].Method)
	assert.Equal(t, "POST", requests[1].Method)
	assert.Equal(t, mbody.BodyKindJSON, requests[1].Body.Kind)
	assert.Equal(t, `{"name": "test"}`, requests[1].Body.Content)
	assert.Equal(t, "DELETE", requests[2].Method)
}

func TestParseAllVariableInterpolation(t *testing.T) {
	text := `@base = https://api.example.com
@token = abc123

GET {{base}}/users
Authorization: Bearer {{token}}
`

	requests := reqfile.ParseAll(text)
	require.Len(t, requests, 1)
	assert.Equal(t, "https://api.example.com/users", requests[0].Url)
	require.Len(t, requests[0].Headers, 1)
	assert.Equal(t, "Bearer abc123", requests[0].Headers[0].Value)
}

func TestParseAllForwardReferenceStaysLiteral(t *testing.T) {
	text := `GET https://example.com/{{later}}

###
@later = defined-too-late
GET https://example.com/ping
`

	requests := reqfile.ParseAll(text)
	require.Len(t, requests, 2)
	assert.Equal(t, "https://example.com/{{later}}", requests[0].Url)
}

func TestParseAllTokenURLPreservedVerbatim(t *testing.T) {
	// The base URL is never reparsed through url serialization; an
	// unresolved token must not come back percent-encoded.
	text := "GET https://example.com/v1/{{resource}}?page=2\n"

	requests := reqfile.ParseAll(text)
	require.Len(t, requests, 1)
	assert.Equal(t, "https://example.com/v1/{{resource}}", requests[0].Url)
	require.Len(t, requests[0].QueryParams, 1)
	assert.Equal(t, "page", requests[0].QueryParams[0].Key)
	assert.Equal(t, "2", requests[0].QueryParams[0].Value)
}

func TestParseAllVariableChaining(t *testing.T) {
	text := `@host = example.com
@base = https://{{host}}/v1

GET {{base}}/items
`

	requests := reqfile.ParseAll(text)
	require.Len(t, requests, 1)
	assert.Equal(t, "https://example.com/v1/items", requests[0].Url)
}

func TestParseAllBodySniffing(t *testing.T) {
	text := `POST https://example.com/raw

plain text payload
`

	requests := reqfile.ParseAll(text)
	require.Len(t, requests, 1)
	assert.Equal(t, mbody.BodyKindRaw, requests[0].Body.Kind)
	assert.Equal(t, "plain text payload", requests[0].Body.Content)
}

func TestParseAtPosition(t *testing.T) {
	text := `GET https://example.com/first

###

POST https://example.com/second
`

	req, ok := reqfile.ParseAtPosition(text, 1)
	require.True(t, ok)
	assert.Equal(t, "GET", req.Method)

	req, ok = reqfile.ParseAtPosition(text, 5)
	require.True(t, ok)
	assert.Equal(t, "POST", req.Method)

	_, ok = reqfile.ParseAtPosition(text, 100)
	assert.False(t, ok)
}

func TestCollectVariables(t *testing.T) {
	text := `@a = 1
@b = two

GET https://example.com
@a = overridden
`

	vars := reqfile.CollectVariables(text)
	assert.Equal(t, map[string]string{"a": "overridden", "b": "two"}, vars)
}
