package s3dev

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.Nil(t, err)
	res, err := srv.Client().Do(req)
	require.Nil(t, err)
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	require.Nil(t, err)
	return res, string(resBody)
}

func TestHandler(t *testing.T) {
	dir := t.TempDir()
	srv := httptest.NewServer(NewHandler(dir))
	defer srv.Close()

	res, body := do(t, srv, http.MethodPut, "/pngs/abc/cat.png", "meow")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, body, "<Code>NoSuchBucket</Code>")

	res, _ = do(t, srv, http.MethodPut, "/pngs", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = do(t, srv, http.MethodPut, "/pngs/abc/cat.png", "meow")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	stored, err := os.ReadFile(filepath.Join(dir, "pngs", "abc~cat.png"))
	require.Nil(t, err)
	assert.Equal(t, "meow", string(stored))

	res, body = do(t, srv, http.MethodGet, "/pngs/abc/cat.png", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "meow", body)

	res, body = do(t, srv, http.MethodGet, "/pngs/nope", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, body, "NoSuchKey")

	res, _ = do(t, srv, http.MethodDelete, "/pngs/abc/cat.png", "")
	assert.Equal(t, http.StatusNotImplemented, res.StatusCode)
}
