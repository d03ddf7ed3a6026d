package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/nlowen/captiond/internal/config"
	"github.com/nlowen/captiond/internal/jobs"
	"github.com/nlowen/captiond/internal/logger"
	"github.com/nlowen/captiond/internal/service"
)

// Handler provides HTTP API handlers
type Handler struct {
	svc   *service.Service
	store *jobs.Store
	cfg   *config.Config
}

// NewHandler creates a new API handler
func NewHandler(svc *service.Service, store *jobs.Store, cfg *config.Config) *Handler {
	return &Handler{
		svc:   svc,
		store: store,
		cfg:   cfg,
	}
}

// response helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// saveUpload receives the multipart "audio" part and stores it under the
// upload directory as <uuid><ext>. A missing part or empty filename is an
// invalid submission: the request is rejected before any job exists.
func (h *Handler) saveUpload(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadMB<<20)

	file, header, err := r.FormFile("audio")
	if err != nil {
		return "", errors.New("no audio file provided")
	}
	defer file.Close()

	if header.Filename == "" {
		return "", errors.New("no selected file")
	}

	dstPath := filepath.Join(h.cfg.UploadPath, uuid.NewString()+filepath.Ext(header.Filename))
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(dstPath)
		return "", fmt.Errorf("store upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("store upload: %w", err)
	}

	return dstPath, nil
}

// CreateTask handles POST /api/tasks: accept a recording and a language
// hint, submit an asynchronous job, and return its id immediately.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	sourcePath, err := h.saveUpload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	language := r.FormValue("language")
	id := h.svc.SubmitAsync(sourcePath, language)

	logger.Info("Task submitted", "task_id", id, "language", language)

	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": id})
}

// GetTask handles GET /api/tasks/{id}: status for in-flight jobs, the
// SRT document as a downloadable attachment once completed, the failure
// message once failed.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "task ID required")
		return
	}

	res, err := h.svc.PollResult(id)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch res.Status {
	case jobs.StatusCompleted:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".srt"))
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, res.Text)
	case jobs.StatusFailed:
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  string(res.Status),
			"message": res.Message,
		})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": string(res.Status)})
	}
}

// Transcribe handles POST /api/transcribe: run transcription inline and
// return the subtitle text directly, for callers who will wait.
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	sourcePath, err := h.saveUpload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	text, err := h.svc.TranscribeSync(r.Context(), sourcePath, r.FormValue("language"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, text)
}

// ListJobs handles GET /api/jobs
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  h.store.All(),
		"stats": h.store.Stats(),
	})
}

// Health handles GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
