package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Client uploads justification documents to the generic upload endpoint.
type Client struct {
	UploadURL string
	HTTP      *http.Client
}

// NewClient creates an upload client.
func NewClient(uploadURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		UploadURL: uploadURL,
		HTTP:      &http.Client{Timeout: timeout},
	}
}

// UploadFile posts one file as multipart form data and returns the remote
// URL the backend stored it under.
func (c *Client) UploadFile(ctx context.Context, token, filename string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("upload: create form file failed: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("upload: write file failed: %w", err)
	}
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.UploadURL, &buf)
	if err != nil {
		return "", fmt.Errorf("upload: create request failed: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("upload: failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("upload: decode response failed: %w", err)
	}
	if result.URL == "" {
		return "", fmt.Errorf("upload: response missing file url")
	}
	return result.URL, nil
}
