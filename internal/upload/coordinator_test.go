package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"go.uber.org/zap"
)

type fakeUploader struct {
	fail  map[string]error
	calls []string
}

func (f *fakeUploader) UploadFile(_ context.Context, _, filename string, _ io.Reader) (string, error) {
	f.calls = append(f.calls, filename)
	if err, ok := f.fail[filename]; ok {
		return "", err
	}
	return "https://files.example/" + filename, nil
}

func newTestCoordinator(fail map[string]error) (*Coordinator, *fakeUploader) {
	up := &fakeUploader{fail: fail}
	return NewCoordinator(up, zap.NewNop()), up
}

func TestProcessUploadsMainFirst(t *testing.T) {
	coord, up := newTestCoordinator(nil)

	main := &Attachment{Filename: "main.pdf", Content: []byte("m"), Type: "medical"}
	supp := []Attachment{
		{Filename: "extra.pdf", Content: []byte("e"), Type: "note"},
	}

	res := coord.Process(context.Background(), "tok", main, supp)
	if len(res.Failed) != 0 {
		t.Fatalf("no failures expected: %+v", res.Failed)
	}
	if len(res.Succeeded) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(res.Succeeded))
	}
	if up.calls[0] != "main.pdf" || up.calls[1] != "extra.pdf" {
		t.Errorf("main must upload first, got order %v", up.calls)
	}
	if res.Succeeded[0].TypeCode != "MEDICAL_CERTIFICATE" {
		t.Errorf("main type code: got %q", res.Succeeded[0].TypeCode)
	}
	if res.Succeeded[0].ContentURL == "" || res.Succeeded[1].ContentURL == "" {
		t.Error("every descriptor must carry a content url")
	}
}

func TestProcessPassesExistingURLThrough(t *testing.T) {
	coord, up := newTestCoordinator(nil)

	supp := []Attachment{
		{ContentURL: "https://files.example/old.pdf", Type: "official"},
	}

	res := coord.Process(context.Background(), "tok", nil, supp)
	if len(up.calls) != 0 {
		t.Errorf("no upload expected for existing urls, got %v", up.calls)
	}
	if len(res.Succeeded) != 1 {
		t.Fatalf("expected 1 descriptor, got %d", len(res.Succeeded))
	}
	d := res.Succeeded[0]
	if d.ContentURL != "https://files.example/old.pdf" {
		t.Errorf("content url: got %q", d.ContentURL)
	}
	if d.Title != "Justification_1" {
		t.Errorf("default title: expected Justification_1, got %q", d.Title)
	}
	if d.TypeCode != "OFFICIAL_DOCUMENT" {
		t.Errorf("type code: got %q", d.TypeCode)
	}
}

func TestProcessSkipsEmptyEntries(t *testing.T) {
	coord, _ := newTestCoordinator(nil)

	res := coord.Process(context.Background(), "tok", nil, []Attachment{{Title: "vide"}})
	if len(res.Succeeded) != 0 || len(res.Failed) != 0 {
		t.Errorf("entry without content or url must be silently skipped: %+v", res)
	}
}

func TestResolveToleratesMainFailure(t *testing.T) {
	coord, _ := newTestCoordinator(map[string]error{"main.pdf": errors.New("upstream down")})

	main := &Attachment{Filename: "main.pdf", Content: []byte("m")}
	supp := []Attachment{{ContentURL: "https://files.example/keep.pdf"}}

	files, err := coord.Process(context.Background(), "tok", main, supp).Resolve(zap.NewNop())
	if err != nil {
		t.Fatalf("main failure must be tolerated: %v", err)
	}
	if len(files) != 1 || files[0].ContentURL != "https://files.example/keep.pdf" {
		t.Fatalf("expected the supplementary descriptor to survive, got %+v", files)
	}
}

func TestResolvePropagatesSupplementaryFailure(t *testing.T) {
	coord, _ := newTestCoordinator(map[string]error{"bad.pdf": errors.New("rejected")})

	supp := []Attachment{{Filename: "bad.pdf", Content: []byte("b")}}

	_, err := coord.Process(context.Background(), "tok", nil, supp).Resolve(zap.NewNop())
	if err == nil {
		t.Fatal("supplementary upload failure must propagate")
	}
}

func TestProcessDefaultsSupplementaryTitlesByIndex(t *testing.T) {
	coord, _ := newTestCoordinator(nil)

	supp := []Attachment{
		{ContentURL: "https://files.example/a.pdf"},
		{ContentURL: "https://files.example/b.pdf", Title: "Mon certificat"},
		{ContentURL: "https://files.example/c.pdf"},
	}

	res := coord.Process(context.Background(), "tok", nil, supp)
	want := []string{"Justification_1", "Mon certificat", "Justification_3"}
	for i, title := range want {
		if res.Succeeded[i].Title != title {
			t.Errorf("descriptor %d: expected title %q, got %q", i, title, res.Succeeded[i].Title)
		}
	}
}

func TestProcessVisitsEveryInput(t *testing.T) {
	coord, up := newTestCoordinator(map[string]error{"bad.pdf": fmt.Errorf("rejected")})

	supp := []Attachment{
		{Filename: "bad.pdf", Content: []byte("b")},
		{Filename: "good.pdf", Content: []byte("g")},
	}

	res := coord.Process(context.Background(), "tok", nil, supp)
	if len(up.calls) != 2 {
		t.Errorf("fold must visit every input, got calls %v", up.calls)
	}
	if len(res.Failed) != 1 || len(res.Succeeded) != 1 {
		t.Errorf("expected 1 failure and 1 success, got %+v", res)
	}
}
