package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitovidale/video-recognition-service/domain"
)

func TestHTTPUploadClient(t *testing.T) {
	var got uploadRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, UploadEndpointPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"path":"/user/files/video_1.mp4"}`))
	}))
	defer server.Close()

	client := NewHTTPUploadClient(server.URL+"/", time.Second)
	ref, err := client.Upload(context.Background(), "video_1.mp4", "AAAA")

	require.NoError(t, err)
	assert.Equal(t, "/user/files/video_1.mp4", ref)
	assert.Equal(t, uploadRequest{Name: "video_1.mp4", Data: "AAAA"}, got)
}

func TestHTTPUploadClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"json error body", http.StatusInternalServerError, `{"error":"disk quota exceeded"}`, "500: disk quota exceeded"},
		{"json message body", http.StatusBadRequest, `{"message":"bad name"}`, "400: bad name"},
		{"plain text body", http.StatusBadGateway, "upstream down\n", "502: upstream down"},
		{"empty body", http.StatusServiceUnavailable, "", "503: empty response"},
		{"missing path", http.StatusOK, `{}`, "no path"},
		{"garbage", http.StatusOK, `not json`, "decode upload response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewHTTPUploadClient(server.URL, time.Second).Upload(context.Background(), "a.mp4", "AA==")
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestHTTPUploadClientUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewHTTPUploadClient(url, time.Second).Upload(context.Background(), "a.mp4", "AA==")
	assert.ErrorContains(t, err, "request to")
}

func TestHTTPGenerateClient(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, GenerateEndpointPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`"A man walks a dog."`))
	}))
	defer server.Close()

	req := domain.RecognitionRequest{
		Reference: "/user/videos/a.mp4",
		Prompt:    "describe",
		Injects:   []domain.Injection{{Role: "system", Content: "describe", Position: "in_chat", ShouldScan: true}},
	}
	text, err := NewHTTPGenerateClient(server.URL, time.Second).Recognize(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "A man walks a dog.", text)
	assert.Equal(t, "/user/videos/a.mp4", got["video"])
	assert.Equal(t, "describe", got["prompt"])
	assert.Equal(t, false, got["should_stream"])
	injects := got["injects"].([]any)
	require.Len(t, injects, 1)
	inject := injects[0].(map[string]any)
	assert.Equal(t, "system", inject["role"])
	assert.Equal(t, "in_chat", inject["position"])
	assert.Equal(t, float64(0), inject["depth"])
	assert.Equal(t, true, inject["should_scan"])
}

func TestGeneratedText(t *testing.T) {
	assert.Equal(t, "plain", generatedText([]byte(`"plain"`)))
	assert.Equal(t, "from text", generatedText([]byte(`{"text":"from text"}`)))
	assert.Equal(t, "from output", generatedText([]byte(`{"output":"from output"}`)))
	assert.Equal(t, "", generatedText([]byte(`{"other":1}`)))
	assert.Equal(t, "raw words", generatedText([]byte(" raw words \n")))
}

func TestErrorMessageTruncatesOnRuneBoundary(t *testing.T) {
	body := []byte("xy" + strings.Repeat("错", maxErrorBody))
	msg := errorMessage(body)

	assert.True(t, utf8.ValidString(msg))
	assert.LessOrEqual(t, len(msg), maxErrorBody)
	assert.Equal(t, maxErrorBody-2, len(msg))
}
