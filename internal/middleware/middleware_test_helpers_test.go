package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dpweb/dpweb/pkg/response"
)

func decodeEnvelope[T any](t *testing.T, w *httptest.ResponseRecorder) response.Response[T] {
	t.Helper()
	var payload response.Response[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload), w.Body.String())
	return payload
}
