package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client calls the institutional portal API on behalf of a student. The
// bearer token is supplied per call — it belongs to the student session, not
// to this process.
type Client struct {
	BaseURL     string
	HTTP        *http.Client
	DefaultType string

	log *zap.Logger
}

// New creates a portal client. defaultType is the category tag applied to
// every mapped absence until the backend reports real categories.
func New(baseURL, defaultType string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL:     baseURL,
		DefaultType: defaultType,
		HTTP:        &http.Client{Timeout: timeout},
		log:         logger,
	}
}

// ListAbsences fetches the student's absences matching the filter and
// normalizes whichever envelope shape the backend returned.
func (c *Client) ListAbsences(ctx context.Context, token string, filter AbsenceFilter) ([]AbsenceRecord, error) {
	endpoint := c.BaseURL + "/absences"
	if q := filter.Query(); q != "" {
		endpoint += "?" + q
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("portal request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("portal read response failed: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := newAPIError(resp.StatusCode, resp.Status, body)
		c.log.Warn("absence listing failed",
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return nil, apiErr
	}

	return decodeAbsenceList(body, c.DefaultType)
}
