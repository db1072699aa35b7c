package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// DownloadFile fetches a stored justification document. The URL comes from a
// descriptor's content_url; the same bearer token scheme applies. Returns the
// raw bytes and the reported content type.
func (c *Client) DownloadFile(ctx context.Context, token, fileURL string) ([]byte, string, error) {
	if fileURL == "" {
		return nil, "", fmt.Errorf("file url required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("download failed: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("download read failed: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
