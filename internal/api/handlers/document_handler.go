package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	appMiddleware "github.com/markdave123-py/newsprint/internal/api/middlewares"
)

// maxUploadBytes bounds the multipart body of one upload.
const maxUploadBytes = 200 << 20

// DocumentQueue accepts PDF paths for background ingestion.
type DocumentQueue interface {
	Enqueue(pdfPath string)
}

type DocumentHandler struct {
	inboxDir string
	queue    DocumentQueue
	log      logrus.FieldLogger
}

func NewDocumentHandler(inboxDir string, queue DocumentQueue, log logrus.FieldLogger) *DocumentHandler {
	return &DocumentHandler{inboxDir: inboxDir, queue: queue, log: log}
}

type uploadResponse struct {
	JobID  string `json:"job_id"`
	File   string `json:"file"`
	Status string `json:"status"`
}

// UploadDocument stores the PDF under inbox/<job id>/<original name> and
// queues it. The original name is kept because the metadata heuristics read it.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// Removes any path components
	cleanFilename := filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(cleanFilename), ".pdf") {
		http.Error(w, "only .pdf files are accepted", http.StatusUnsupportedMediaType)
		return
	}

	jobID := uuid.NewString()
	path, err := h.save(jobID, cleanFilename, file)
	if err != nil {
		h.log.WithError(err).WithField("job", jobID).Error("upload: save file")
		http.Error(w, "failed to store upload", http.StatusInternalServerError)
		return
	}

	userID, _ := appMiddleware.UserID(r.Context())
	h.log.WithFields(logrus.Fields{"job": jobID, "file": cleanFilename, "user": userID}).Info("document queued")

	h.queue.Enqueue(path)
	writeJSON(w, http.StatusAccepted, uploadResponse{JobID: jobID, File: cleanFilename, Status: "queued"})
}

func (h *DocumentHandler) save(jobID, name string, src io.Reader) (string, error) {
	dir := filepath.Join(h.inboxDir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create inbox dir: %w", err)
	}
	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	return path, dst.Close()
}
