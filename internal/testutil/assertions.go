package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowupgrow/terrarium-api/internal/api/respond"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code for %s", describe(resp))
}

// AssertJSONResponse decodes JSON response into v
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body := ReadBody(t, resp)
	err := json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies the JSON error body and status
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code for %s", describe(resp))

	var body respond.ErrorBody
	AssertJSONResponse(t, resp, &body)
	assert.Equal(t, expectedMessage, body.Message, "error message mismatch")
	assert.False(t, body.Success)
}

// AssertNoPassword fails if any object in the JSON body carries a Password
// key.
func AssertNoPassword(t *testing.T, body []byte) {
	t.Helper()

	var doc interface{}
	require.NoError(t, json.Unmarshal(body, &doc), "response is not JSON: %s", string(body))
	assert.False(t, hasKey(doc, "Password"), "response leaks Password: %s", string(body))
}

// ReadBody reads and closes the response body.
func ReadBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	return body
}

func hasKey(doc interface{}, key string) bool {
	switch v := doc.(type) {
	case map[string]interface{}:
		if _, ok := v[key]; ok {
			return true
		}
		for _, child := range v {
			if hasKey(child, key) {
				return true
			}
		}
	case []interface{}:
		for _, child := range v {
			if hasKey(child, key) {
				return true
			}
		}
	}
	return false
}
