package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fuzzymatch/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Match: config.MatchConfig{
			MemoryPct:    98,
			StrThreshold: 0.9,
			NumThreshold: 1,
			Weight:       1,
		},
		Server: config.ServerConfig{
			Port:          8080,
			MaxUploadMB:   10,
			RatePerSecond: 1000,
			RateBurst:     1000,
		},
	}
}

const personSpecYAML = `
id_field: id
exact: [zip]
no_mismatch: [last_name]
fuzzy:
  - name: first_name
str_threshold: 0.85
`

// multipartBody builds a multipart request body from named file uploads and
// plain form fields.
func multipartBody(t *testing.T, files map[string]string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for field, value := range fields {
		require.NoError(t, mw.WriteField(field, value))
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(New(testConfig()).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestMatchEndpoint(t *testing.T) {
	srv := httptest.NewServer(New(testConfig()).Router())
	defer srv.Close()

	body, contentType := multipartBody(t,
		map[string]string{
			"tomatch": "id,zip,last_name,first_name\na1,84601,Smith,Jon\na2,84601,Nguyen,Mai\n",
			"pool":    "id,zip,last_name,first_name\np1,84601,Smith,John\np2,84601,Jones,Mai\n",
		},
		map[string]string{"spec": personSpecYAML},
	)

	resp, err := http.Post(srv.URL+"/api/v1/match", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out matchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "a1", out.Rows[0].ID)
	assert.Equal(t, []string{"p1"}, out.Rows[0].Matches)
	assert.Equal(t, "a2", out.Rows[1].ID)
	assert.Equal(t, []string{}, out.Rows[1].Matches)
}

func TestDedupEndpoint(t *testing.T) {
	srv := httptest.NewServer(New(testConfig()).Router())
	defer srv.Close()

	body, contentType := multipartBody(t,
		map[string]string{
			"records": "id,zip,last_name,first_name\n1,84601,Smith,Jon\n2,84601,Smith,John\n3,90210,Smith,Jon\n",
		},
		map[string]string{"spec": personSpecYAML},
	)

	resp, err := http.Post(srv.URL+"/api/v1/dedup", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dedupResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Rows, 3)
	assert.Equal(t, []string{"1", "2"}, out.Rows[0].Duplicates)
	assert.Equal(t, []string{"3"}, out.Rows[2].Duplicates)
}

func TestMatchMissingSpecField(t *testing.T) {
	srv := httptest.NewServer(New(testConfig()).Router())
	defer srv.Close()

	body, contentType := multipartBody(t,
		map[string]string{"tomatch": "id\n1\n", "pool": "id\n2\n"},
		nil,
	)

	resp, err := http.Post(srv.URL+"/api/v1/match", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMatchMissingUpload(t *testing.T) {
	srv := httptest.NewServer(New(testConfig()).Router())
	defer srv.Close()

	body, contentType := multipartBody(t,
		map[string]string{"tomatch": "id\n1\n"},
		map[string]string{"spec": personSpecYAML},
	)

	resp, err := http.Post(srv.URL+"/api/v1/match", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDedupInvalidSpecIsUnprocessable(t *testing.T) {
	srv := httptest.NewServer(New(testConfig()).Router())
	defer srv.Close()

	// Parses as YAML but fails engine validation: no exact fields.
	body, contentType := multipartBody(t,
		map[string]string{"records": "id,name\n1,a\n"},
		map[string]string{"spec": "id_field: id\n"},
	)

	resp, err := http.Post(srv.URL+"/api/v1/dedup", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RatePerSecond = 0.001
	cfg.Server.RateBurst = 1

	srv := httptest.NewServer(New(cfg).Router())
	defer srv.Close()

	first, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	first.Body.Close()
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	second.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}
