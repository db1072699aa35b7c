package justification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"absences/internal/metrics"
	"absences/internal/queue"
	"absences/internal/upload"
)

// SubmitRequest carries one submission attempt: the absences being
// justified, the student's free-text reason, and the attachments.
type SubmitRequest struct {
	AbsenceCodes  []string
	Reason        string
	Main          *upload.Attachment
	Supplementary []upload.Attachment
}

// SubmitResult is the canonical outcome of a successful submission.
type SubmitResult struct {
	JustificationCode string
	Files             []upload.FileDescriptor
}

// Service orchestrates the justification write path: attachment
// coordination, the creation POST, and response normalization. Successful
// submissions are announced on the event queue; cache invalidation and
// journaling happen there, never inline.
type Service struct {
	submitURL string
	http      *http.Client
	coord     *upload.Coordinator
	events    queue.Queue
	log       *zap.Logger
}

// NewService creates a submission service. events may be nil when no worker
// is wired (tests, one-off tools).
func NewService(submitURL string, timeout time.Duration, coord *upload.Coordinator, events queue.Queue, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		submitURL: submitURL,
		http:      &http.Client{Timeout: timeout},
		coord:     coord,
		events:    events,
		log:       logger,
	}
}

// Submit validates preconditions, uploads attachments, posts the
// justification, and returns the canonical identifier. Precondition
// violations fail before any network call.
func (s *Service) Submit(ctx context.Context, token, studentCode string, req SubmitRequest) (SubmitResult, error) {
	if len(req.AbsenceCodes) == 0 {
		metrics.SubmissionsTotal.WithLabelValues("precondition").Inc()
		return SubmitResult{}, ErrNoAbsences
	}

	files, err := s.coord.Process(ctx, token, req.Main, req.Supplementary).Resolve(s.log)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("upload_error").Inc()
		return SubmitResult{}, err
	}
	if len(files) == 0 {
		metrics.SubmissionsTotal.WithLabelValues("precondition").Inc()
		return SubmitResult{}, ErrNoValidFiles
	}

	reason := req.Reason
	if reason == "" {
		reason = defaultReason
	}

	code, err := s.post(ctx, token, payload{
		AbsenceCodes: req.AbsenceCodes,
		Reason:       reason,
		Files:        files,
	})
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		return SubmitResult{}, err
	}

	metrics.SubmissionsTotal.WithLabelValues("ok").Inc()
	s.announce(ctx, code, studentCode, req.AbsenceCodes, len(files))
	return SubmitResult{JustificationCode: code, Files: files}, nil
}

type payload struct {
	AbsenceCodes []string                `json:"absence_codes"`
	Reason       string                  `json:"reason"`
	Files        []upload.FileDescriptor `json:"files"`
}

// post issues the creation call and normalizes the response. The body text
// is read in full first so a non-JSON response (an HTML error page, a proxy
// banner) surfaces as an explicit invalid-response error instead of a silent
// success.
func (s *Service) post(ctx context.Context, token string, p payload) (string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.submitURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("justification request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("justification read response failed: %w", err)
	}

	var parsed map[string]any
	parseErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode >= 300 {
		subErr := newSubmitError(resp.StatusCode, resp.Status, parsed)
		s.log.Warn("justification rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("backend_message", subErr.Backend))
		return "", subErr
	}
	if parseErr != nil {
		s.log.Warn("justification response is not JSON", zap.Error(parseErr))
		return "", ErrInvalidServerResponse
	}

	code, ok := extractCode(parsed)
	if !ok {
		return "", ErrUnexpectedResponse
	}
	return code, nil
}

// announce publishes the submitted event. Publish failures are logged, not
// surfaced — the justification already exists upstream.
func (s *Service) announce(ctx context.Context, code, studentCode string, absenceCodes []string, fileCount int) {
	if s.events == nil {
		return
	}
	msg, err := queue.NewSubmittedMessage(queue.SubmittedEvent{
		EventID:           uuid.NewString(),
		JustificationCode: code,
		StudentCode:       studentCode,
		AbsenceCodes:      absenceCodes,
		FileCount:         fileCount,
		SubmittedAt:       time.Now().UTC(),
	})
	if err != nil {
		s.log.Error("encode submitted event failed", zap.Error(err))
		return
	}
	if err := s.events.Publish(ctx, msg); err != nil {
		s.log.Error("publish submitted event failed", zap.Error(err))
	}
}
