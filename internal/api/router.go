package api

import (
	"net/http"
)

// NewRouter creates a new HTTP router with all API endpoints
func NewRouter(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()

	// Asynchronous transcription tasks
	mux.HandleFunc("POST /api/tasks", h.CreateTask)
	mux.HandleFunc("GET /api/tasks/{id}", h.GetTask)

	// Synchronous transcription
	mux.HandleFunc("POST /api/transcribe", h.Transcribe)

	// Job observability
	mux.HandleFunc("GET /api/jobs", h.ListJobs)
	mux.HandleFunc("GET /api/jobs/stream", h.JobStream)

	// Misc
	mux.HandleFunc("GET /api/health", h.Health)

	return mux
}
