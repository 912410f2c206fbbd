package tcurl_test

import (
	"testing"

	"curldeck/pkg/model/mauth"
	"curldeck/pkg/model/mbody"
	"curldeck/pkg/translate/tcurl"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertCurlSimpleGet(t *testing.T) {
	req, err := tcurl.ConvertCurl("curl https://api.example.com/users?limit=10")
	require.NoError(t, err)

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "https://api.example.com/users", req.Url)
	require.Len(t, req.QueryParams, 1)
	assert.Equal(t, "limit", req.QueryParams[0].Key)
	assert.Equal(t, mbody.BodyKindNone, req.Body.Kind)
}

func TestConvertCurlPostWithJSON(t *testing.T) {
	cmd := `curl -X POST https://api.example.com/users -H 'Content-Type: application/json' -d '{"name":"alice"}'`

	req, err := tcurl.ConvertCurl(cmd)
	require.NoError(t, err)

	assert.Equal(t, "POST", req.Method)
	require.Len(t, req.Headers, 1)
	assert.Equal(t, "Content-Type", req.Headers[0].Key)
	assert.Equal(t, "application/json", req.Headers[0].Value)
	assert.Equal(t, mbody.BodyKindJSON, req.Body.Kind)
	assert.Equal(t, `{"name":"alice"}`, req.Body.Content)
}

func TestConvertCurlDataImpliesPost(t *testing.T) {
	req, err := tcurl.ConvertCurl(`curl https://example.com -d 'a=1'`)
	require.NoError(t, err)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, mbody.BodyKindRaw, req.Body.Kind)
}

func TestConvertCurlBasicAuth(t *testing.T) {
	req, err := tcurl.ConvertCurl(`curl -u alice:s3cret https://example.com`)
	require.NoError(t, err)
	assert.Equal(t, mauth.AuthKindBasic, req.Auth.Kind)
	assert.Equal(t, "alice", req.Auth.Basic.Username)
	assert.Equal(t, "s3cret", req.Auth.Basic.Password)
}

func TestConvertCurlFormData(t *testing.T) {
	cmd := `curl https://example.com/upload -F 'name=alice' -F 'file=@/tmp/pic.png'`

	req, err := tcurl.ConvertCurl(cmd)
	require.NoError(t, err)

	assert.Equal(t, "POST", req.Method)
	require.Equal(t, mbody.BodyKindFormData, req.Body.Kind)
	require.Len(t, req.Body.FormItems, 2)
	assert.Equal(t, mbody.FormItemKindText, req.Body.FormItems[0].Kind)
	assert.Equal(t, "alice", req.Body.FormItems[0].Value)
	assert.Equal(t, mbody.FormItemKindFile, req.Body.FormItems[1].Kind)
	assert.Equal(t, "/tmp/pic.png", req.Body.FormItems[1].Value)
}

func TestConvertCurlDataURLEncode(t *testing.T) {
	cmd := `curl https://example.com --data-urlencode 'q=hello world' --data-urlencode 'lang=en'`

	req, err := tcurl.ConvertCurl(cmd)
	require.NoError(t, err)
	assert.Equal(t, mbody.BodyKindURLEncoded, req.Body.Kind)
	assert.Equal(t, "q=hello world&lang=en", req.Body.Content)
}

func TestConvertCurlLineContinuations(t *testing.T) {
	cmd := "curl -X PUT https://example.com/items/1 \\\n" +
		"  -H 'Accept: application/json' \\\n" +
		"  -d '{\"done\":true}'"

	req, err := tcurl.ConvertCurl(cmd)
	require.NoError(t, err)
	assert.Equal(t, "PUT", req.Method)
	require.Len(t, req.Headers, 1)
	assert.Equal(t, mbody.BodyKindJSON, req.Body.Kind)
}

func TestConvertCurlInvalid(t *testing.T) {
	_, err := tcurl.ConvertCurl("wget https://example.com")
	require.Error(t, err)

	_, err = tcurl.ConvertCurl("curl")
	require.Error(t, err)
}
