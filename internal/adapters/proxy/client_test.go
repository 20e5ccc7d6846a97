package proxy

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const geojsonBody = `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[1,2,3],[4,5,6]]]},"properties":{"name":"Zone 1"}}]}`

func TestFetchPayloadSuccess(t *testing.T) {
	t.Parallel()

	var gotBody []byte
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var err error
		gotBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, err = w.Write([]byte(`{"success":true,"data":` + geojsonBody + `}`))
		require.NoError(t, err)
	}))
	defer relay.Close()

	client := NewClient(relay.URL, 5*time.Second)
	fc, err := client.FetchPayload(context.Background(), "https://x/y")
	require.NoError(t, err)

	var req map[string]string
	require.NoError(t, json.Unmarshal(gotBody, &req))
	assert.Equal(t, "https://x/y", req["signedURL"])

	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Zone 1", fc.Features[0].Properties.Name)
}

func TestFetchPayloadRelayErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		status  int
		body    string
		wantErr string
	}{
		"structured error body": {
			status:  http.StatusNotFound,
			body:    `{"error":"Failed to fetch GeoJSON: 404 Not Found"}`,
			wantErr: "Failed to fetch GeoJSON: 404 Not Found",
		},
		"missing signed URL": {
			status:  http.StatusBadRequest,
			body:    `{"error":"signedURL is required"}`,
			wantErr: "signedURL is required",
		},
		"unstructured failure": {
			status:  http.StatusBadGateway,
			body:    "gateway exploded",
			wantErr: "relay returned 502",
		},
		"success status with malformed envelope": {
			status:  http.StatusOK,
			body:    `{"success":true}`,
			wantErr: "malformed relay response",
		},
		"success status without success flag": {
			status:  http.StatusOK,
			body:    `{"data":{}}`,
			wantErr: "malformed relay response",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer relay.Close()

			client := NewClient(relay.URL, 5*time.Second)
			_, err := client.FetchPayload(context.Background(), "https://x/y")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestFetchPayloadUnreachableRelay(t *testing.T) {
	t.Parallel()

	client := NewClient("http://127.0.0.1:1", 500*time.Millisecond)
	_, err := client.FetchPayload(context.Background(), "https://x/y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay unreachable")
}

func TestFetchPayloadInvalidData(t *testing.T) {
	t.Parallel()

	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":"not a collection"}`))
	}))
	defer relay.Close()

	client := NewClient(relay.URL, 5*time.Second)
	_, err := client.FetchPayload(context.Background(), "https://x/y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode GeoJSON")
}
