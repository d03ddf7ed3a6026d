package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlowen/captiond/internal/api"
	"github.com/nlowen/captiond/internal/config"
	"github.com/nlowen/captiond/internal/jobs"
	"github.com/nlowen/captiond/internal/service"
	"github.com/nlowen/captiond/internal/srt"
)

// stubTranscriber returns a fixed outcome, optionally blocking until
// release is closed.
type stubTranscriber struct {
	release  chan struct{}
	segments []srt.Segment
	err      error
}

func (s *stubTranscriber) Transcribe(ctx context.Context, path, language string) ([]srt.Segment, error) {
	if s.release != nil {
		<-s.release
	}
	return s.segments, s.err
}

func newTestRouter(t *testing.T, tr jobs.Transcriber) *http.ServeMux {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.UploadPath = t.TempDir()

	store := jobs.NewStore()
	runner := jobs.NewRunner(store, tr)
	svc := service.New(store, runner, tr, cfg.DefaultLanguage)

	return api.NewRouter(api.NewHandler(svc, store, cfg))
}

// audioRequest builds a multipart submission with an "audio" file part
// and an optional language field.
func audioRequest(t *testing.T, url, language string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("audio", "speech.wav")
	require.NoError(t, err)
	_, err = fw.Write([]byte("RIFF fake audio payload"))
	require.NoError(t, err)

	if language != "" {
		require.NoError(t, mw.WriteField("language", language))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pollTask(t *testing.T, router *http.ServeMux, id string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/"+id, nil))
	return rec
}

// pollUntilDone polls the task endpoint until it stops reporting a
// not-yet-done status.
func pollUntilDone(t *testing.T, router *http.ServeMux, id string) *httptest.ResponseRecorder {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		rec := pollTask(t, router, id)

		if rec.Header().Get("Content-Type") != "application/json" {
			return rec // completed: raw SRT attachment
		}
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		if s := body["status"]; s != "pending" && s != "processing" {
			return rec
		}

		select {
		case <-deadline:
			t.Fatalf("task %s never finished", id)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func submitTask(t *testing.T, router *http.ServeMux, language string) string {
	t.Helper()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, audioRequest(t, "/api/tasks", language))
	require.Equal(t, http.StatusAccepted, rec.Code, "body: %s", rec.Body.String())

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["task_id"])
	return body["task_id"]
}

func TestCreateTaskAndDownloadResult(t *testing.T) {
	segments := []srt.Segment{{Start: 5.0, End: 7.25, Text: "  hello  "}}
	router := newTestRouter(t, &stubTranscriber{segments: segments})

	id := submitTask(t, router, "en")

	rec := pollUntilDone(t, router, id)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="`+id+`.srt"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "1\n00:00:05,000 --> 00:00:07,250\nhello\n\n", rec.Body.String())
}

func TestCreateTaskObservablePending(t *testing.T) {
	tr := &stubTranscriber{
		release:  make(chan struct{}),
		segments: []srt.Segment{{Start: 0, End: 1, Text: "hi"}},
	}
	router := newTestRouter(t, tr)

	id := submitTask(t, router, "")

	// Before the transcriber returns, the task reports a not-yet-done
	// status with no result payload.
	rec := pollTask(t, router, id)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, []string{"pending", "processing"}, body["status"])

	close(tr.release)

	rec = pollUntilDone(t, router, id)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateTaskFailure(t *testing.T) {
	router := newTestRouter(t, &stubTranscriber{err: errors.New("recognizer crashed")})

	id := submitTask(t, router, "en")

	rec := pollUntilDone(t, router, id)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "failed", body["status"])
	assert.Equal(t, "recognizer crashed", body["message"])
}

func TestCreateTaskNoAudio(t *testing.T) {
	router := newTestRouter(t, &stubTranscriber{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("language", "en"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// No job was created for the rejected submission.
	listRec := httptest.NewRecorder()
	router.ServeHTTP(listRec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))

	var list struct {
		Stats jobs.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &list))
	assert.Equal(t, 0, list.Stats.Total)
}

func TestGetTaskUnknown(t *testing.T) {
	router := newTestRouter(t, &stubTranscriber{})

	rec := pollTask(t, router, "never-created")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTranscribeSync(t *testing.T) {
	segments := []srt.Segment{
		{Start: 0, End: 2, Text: "one"},
		{Start: 2, End: 4, Text: "two"},
	}
	router := newTestRouter(t, &stubTranscriber{segments: segments})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, audioRequest(t, "/api/transcribe", "de"))

	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, srt.Encode(segments), rec.Body.String())
}

func TestTranscribeSyncFailure(t *testing.T) {
	router := newTestRouter(t, &stubTranscriber{err: errors.New("bad audio")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, audioRequest(t, "/api/transcribe", ""))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "bad audio")
}

func TestListJobs(t *testing.T) {
	router := newTestRouter(t, &stubTranscriber{segments: []srt.Segment{{Start: 0, End: 1, Text: "x"}}})

	first := submitTask(t, router, "en")
	second := submitTask(t, router, "fr")
	require.NotEqual(t, first, second)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Jobs  []jobs.Job `json:"jobs"`
		Stats jobs.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Stats.Total)
	require.Len(t, list.Jobs, 2)
	assert.Equal(t, first, list.Jobs[0].ID)
	assert.Equal(t, second, list.Jobs[1].ID)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, &stubTranscriber{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
