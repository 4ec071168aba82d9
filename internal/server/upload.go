package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/avolut/sidekick-go/internal/logging"
)

// maxUploadBytes caps the size of an uploaded document (32 MiB).
const maxUploadBytes = 32 << 20

// handleUpload handles POST /api/upload. It accepts a multipart form with a
// "file" field holding a PDF, stores it under the configured upload
// directory and returns the stored path for use as documentPath in chat
// requests.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// Strip any client-supplied directory components.
	name := filepath.Base(header.Filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		http.Error(w, "invalid filename", http.StatusBadRequest)
		return
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		http.Error(w, "only .pdf files are accepted", http.StatusUnsupportedMediaType)
		return
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		log.Error("upload: create upload dir", slog.Any("error", err))
		http.Error(w, "failed to store document", http.StatusInternalServerError)
		return
	}

	path := filepath.Join(s.cfg.UploadDir, name)
	dst, err := os.Create(path)
	if err != nil {
		log.Error("upload: create file", slog.Any("error", err))
		http.Error(w, "failed to store document", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		log.Error("upload: write file", slog.Any("error", err))
		http.Error(w, "failed to store document", http.StatusInternalServerError)
		return
	}

	log.Info("document uploaded",
		slog.String("name", name),
		slog.Int64("size", size),
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(uploadResponse{
		Path: path,
		Name: name,
		Size: size,
	})
}

// handleDocuments handles GET /api/documents and lists the PDF files in the
// upload directory, sorted by name.
func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	resp := documentsResponse{Documents: []documentInfo{}}

	entries, err := os.ReadDir(s.cfg.UploadDir)
	if err != nil && !os.IsNotExist(err) {
		logging.FromContext(r.Context()).Error("documents: read upload dir", slog.Any("error", err))
		http.Error(w, "failed to list documents", http.StatusInternalServerError)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		resp.Documents = append(resp.Documents, documentInfo{
			Path: filepath.Join(s.cfg.UploadDir, entry.Name()),
			Name: entry.Name(),
			Size: info.Size(),
		})
	}

	sort.Slice(resp.Documents, func(i, j int) bool {
		return resp.Documents[i].Name < resp.Documents[j].Name
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
