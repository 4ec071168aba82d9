package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newUploadTestServer(t *testing.T) *Server {
	t.Helper()
	return &Server{
		cfg: &Config{UploadDir: t.TempDir()},
		log: slog.Default(),
	}
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHandleUploadStoresPDF(t *testing.T) {
	t.Parallel()

	s := newUploadTestServer(t)
	body, contentType := multipartUpload(t, "report.pdf", []byte("%PDF-1.4 fake"))

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	s.handleUpload(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp uploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Name != "report.pdf" {
		t.Errorf("name = %q", resp.Name)
	}
	if resp.Size != int64(len("%PDF-1.4 fake")) {
		t.Errorf("size = %d", resp.Size)
	}
	data, err := os.ReadFile(resp.Path)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "%PDF-1.4 fake" {
		t.Error("stored content differs from upload")
	}
}

func TestHandleUploadRejectsNonPDF(t *testing.T) {
	t.Parallel()

	s := newUploadTestServer(t)
	body, contentType := multipartUpload(t, "notes.txt", []byte("plain text"))

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	s.handleUpload(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", w.Code)
	}
}

func TestHandleUploadStripsDirectoryComponents(t *testing.T) {
	t.Parallel()

	s := newUploadTestServer(t)
	body, contentType := multipartUpload(t, "../../etc/evil.pdf", []byte("%PDF"))

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	s.handleUpload(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp uploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Name != "evil.pdf" {
		t.Errorf("name = %q, want evil.pdf", resp.Name)
	}
	if filepath.Dir(resp.Path) != s.cfg.UploadDir {
		t.Errorf("stored outside upload dir: %q", resp.Path)
	}
}

func TestHandleUploadMissingFileField(t *testing.T) {
	t.Parallel()

	s := newUploadTestServer(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("other", "value")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()

	s.handleUpload(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleDocumentsListsPDFs(t *testing.T) {
	t.Parallel()

	s := newUploadTestServer(t)
	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(s.cfg.UploadDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("b.pdf", "%PDF b")
	mustWrite("a.pdf", "%PDF a")
	mustWrite("skip.txt", "not a pdf")

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	w := httptest.NewRecorder()

	s.handleDocuments(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp documentsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Documents) != 2 {
		t.Fatalf("documents = %d, want 2", len(resp.Documents))
	}
	if resp.Documents[0].Name != "a.pdf" || resp.Documents[1].Name != "b.pdf" {
		t.Errorf("documents not sorted by name: %+v", resp.Documents)
	}
}

func TestHandleDocumentsEmptyDirIsEmptyList(t *testing.T) {
	t.Parallel()

	s := &Server{cfg: &Config{UploadDir: filepath.Join(t.TempDir(), "missing")}, log: slog.Default()}
	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	w := httptest.NewRecorder()

	s.handleDocuments(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp documentsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Documents) != 0 {
		t.Errorf("documents = %d, want 0", len(resp.Documents))
	}
}
