package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestUploadFile(t *testing.T) {
	var gotAuth, gotFilename, gotContent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		file, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotFilename = header.Filename
		gotContent = string(data)
		fmt.Fprint(w, `{"url":"https://files.example/doc-1.pdf"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	url, err := client.UploadFile(context.Background(), "tok-up", "certificat.pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("upload should succeed: %v", err)
	}
	if url != "https://files.example/doc-1.pdf" {
		t.Errorf("url: got %q", url)
	}
	if gotAuth != "Bearer tok-up" {
		t.Errorf("Authorization: got %q", gotAuth)
	}
	if gotFilename != "certificat.pdf" {
		t.Errorf("filename: got %q", gotFilename)
	}
	if gotContent != "pdf-bytes" {
		t.Errorf("content: got %q", gotContent)
	}
}

func TestUploadFileHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "boom")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	if _, err := client.UploadFile(context.Background(), "tok", "f.pdf", strings.NewReader("x")); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestUploadFileMissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.UploadFile(context.Background(), "tok", "f.pdf", strings.NewReader("x"))
	if err == nil || !strings.Contains(err.Error(), "missing file url") {
		t.Fatalf("expected missing-url error, got %v", err)
	}
}
