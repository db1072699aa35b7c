package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"absences/internal/metrics"
)

// FileDescriptor is the outgoing attachment shape attached to a
// justification. After coordination every descriptor carries a non-empty
// ContentURL.
type FileDescriptor struct {
	ContentURL string `json:"content_url"`
	Title      string `json:"title"`
	TypeCode   string `json:"type_code"`
}

// Attachment is one inbound attachment: either local content still to be
// uploaded, or an entry that already carries a remote ContentURL.
type Attachment struct {
	Filename   string
	Content    []byte
	ContentURL string
	Title      string
	Type       string
}

// Failure records an attachment that could not produce a descriptor.
type Failure struct {
	Attachment Attachment
	Err        error
	Main       bool
}

// Result is the outcome of coordinating all attachments: the fold over the
// inputs, before any tolerance policy is applied.
type Result struct {
	Succeeded []FileDescriptor
	Failed    []Failure
}

// Uploader sends one local file to the upload endpoint.
type Uploader interface {
	UploadFile(ctx context.Context, token, filename string, content io.Reader) (string, error)
}

// Coordinator turns a main attachment plus supplementary entries into a
// uniform descriptor list, uploading local files one at a time.
type Coordinator struct {
	uploads Uploader
	log     *zap.Logger
}

// NewCoordinator creates a coordinator.
func NewCoordinator(uploads Uploader, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{uploads: uploads, log: logger}
}

// Process uploads the main attachment first, then each supplementary entry
// in order. Entries that already carry a ContentURL skip upload; titles
// default to an index-based placeholder and type codes are normalized.
// Entries with neither content nor a URL are logged and skipped. Uploads are
// sequential; every input is visited so Result holds the complete picture.
func (c *Coordinator) Process(ctx context.Context, token string, main *Attachment, supplementary []Attachment) Result {
	var res Result

	if main != nil && len(main.Content) > 0 {
		c.upload(ctx, token, *main, mainTitle(*main), true, &res)
	}

	for i, att := range supplementary {
		title := att.Title
		if title == "" {
			title = fmt.Sprintf("Justification_%d", i+1)
		}

		switch {
		case att.ContentURL != "":
			res.Succeeded = append(res.Succeeded, FileDescriptor{
				ContentURL: att.ContentURL,
				Title:      title,
				TypeCode:   TypeCode(att.Type),
			})
		case len(att.Content) > 0:
			c.upload(ctx, token, att, title, false, &res)
		default:
			c.log.Warn("attachment has no content and no url, skipping",
				zap.Int("index", i),
				zap.String("title", title))
		}
	}
	return res
}

func (c *Coordinator) upload(ctx context.Context, token string, att Attachment, title string, main bool, res *Result) {
	url, err := c.uploads.UploadFile(ctx, token, att.Filename, bytes.NewReader(att.Content))
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		res.Failed = append(res.Failed, Failure{Attachment: att, Err: err, Main: main})
		return
	}
	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	res.Succeeded = append(res.Succeeded, FileDescriptor{
		ContentURL: url,
		Title:      title,
		TypeCode:   TypeCode(att.Type),
	})
}

// Resolve applies the tolerance policy to a coordination result: failures on
// the main attachment are logged and dropped so one bad document does not
// block the rest, any other failure aborts the submission.
func (r Result) Resolve(logger *zap.Logger) ([]FileDescriptor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, f := range r.Failed {
		if f.Main {
			logger.Warn("main attachment upload failed, continuing with remaining files",
				zap.String("filename", f.Attachment.Filename),
				zap.Error(f.Err))
			continue
		}
		return nil, fmt.Errorf("upload attachment %q: %w", f.Attachment.Filename, f.Err)
	}
	return r.Succeeded, nil
}

func mainTitle(att Attachment) string {
	if att.Title != "" {
		return att.Title
	}
	if att.Filename != "" {
		return att.Filename
	}
	return "Justification"
}
