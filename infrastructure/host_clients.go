// infrastructure/host_clients.go
package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vitovidale/video-recognition-service/domain"
)

const (
	UploadEndpointPath   = "/api/files/upload"
	GenerateEndpointPath = "/api/backends/generate"

	maxErrorBody = 4096
)

type uploadRequest struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

type uploadResponse struct {
	Path string `json:"path"`
}

// HTTPUploadClient is the generic upload endpoint capability.
type HTTPUploadClient struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPUploadClient(baseURL string, timeout time.Duration) *HTTPUploadClient {
	return &HTTPUploadClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPUploadClient) Upload(ctx context.Context, name, segment string) (string, error) {
	body, err := json.Marshal(uploadRequest{Name: name, Data: segment})
	if err != nil {
		return "", fmt.Errorf("failed to marshal upload request: %w", err)
	}
	respBody, err := postJSON(ctx, c.Client, c.BaseURL+UploadEndpointPath, body)
	if err != nil {
		return "", err
	}
	var out uploadResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if out.Path == "" {
		return "", errors.New("upload response has no path")
	}
	return out.Path, nil
}

// HTTPGenerateClient is the recognition capability backed by the host's
// generate endpoint.
type HTTPGenerateClient struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPGenerateClient(baseURL string, timeout time.Duration) *HTTPGenerateClient {
	return &HTTPGenerateClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPGenerateClient) Recognize(ctx context.Context, req domain.RecognitionRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal recognition request: %w", err)
	}
	respBody, err := postJSON(ctx, c.Client, c.BaseURL+GenerateEndpointPath, body)
	if err != nil {
		return "", err
	}
	return generatedText(respBody), nil
}

// generatedText accepts a JSON string, an object with a text field, or plain text.
func generatedText(body []byte) string {
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return s
	}
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err == nil {
		for _, key := range []string{"text", "content", "description", "output"} {
			if v, ok := obj[key].(string); ok {
				return v
			}
		}
		return ""
	}
	return strings.TrimSpace(string(body))
}

func postJSON(ctx context.Context, client *http.Client, url string, body []byte) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned %d: %s", url, resp.StatusCode, errorMessage(respBody))
	}
	return respBody, nil
}

// errorMessage extracts a message from a JSON or plain-text error body.
func errorMessage(body []byte) string {
	var obj struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &obj); err == nil {
		if obj.Error != "" {
			return obj.Error
		}
		if obj.Message != "" {
			return obj.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		n := maxErrorBody
		for n > 0 && !utf8.RuneStart(msg[n]) {
			n--
		}
		msg = msg[:n]
	}
	if msg == "" {
		return "empty response"
	}
	return msg
}
