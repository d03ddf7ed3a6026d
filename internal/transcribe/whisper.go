package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/nlowen/captiond/internal/srt"
)

// Whisper transcribes audio by shelling out to a whisper.cpp binary.
// The recording is first normalized to 16 kHz mono PCM WAV with ffmpeg,
// which is what the whisper models expect regardless of input format.
type Whisper struct {
	binPath    string
	modelPath  string
	ffmpegPath string
}

var _ Transcriber = (*Whisper)(nil)

// NewWhisper creates a whisper.cpp backed transcriber.
func NewWhisper(binPath, modelPath, ffmpegPath string) *Whisper {
	return &Whisper{
		binPath:    binPath,
		modelPath:  modelPath,
		ffmpegPath: ffmpegPath,
	}
}

// Transcribe runs the recognizer and returns its segments. All
// intermediate files live in a private temp directory that is removed
// before returning.
func (w *Whisper) Transcribe(ctx context.Context, path, language string) ([]srt.Segment, error) {
	dir, err := os.MkdirTemp("", "captiond-whisper")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	wavPath := filepath.Join(dir, "converted.wav")
	if err := w.toWav(ctx, path, wavPath); err != nil {
		return nil, err
	}

	if language == "" {
		language = "auto"
	}

	outPrefix := filepath.Join(dir, "transcript")
	args := []string{
		"-m", w.modelPath,
		"-f", wavPath,
		"-l", language,
		"--output-json",
		"--output-file", outPrefix,
		"--no-prints",
	}

	cmd := exec.CommandContext(ctx, w.binPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("whisper failed: %w: %s", err, out)
	}

	data, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	return parseWhisperJSON(data)
}

// toWav converts arbitrary input audio to 16 kHz mono 16-bit PCM WAV.
func (w *Whisper) toWav(ctx context.Context, src, dst string) error {
	args := []string{"-i", src, "-ar", "16000", "-ac", "1", "-acodec", "pcm_s16le", "-y", dst}
	cmd := exec.CommandContext(ctx, w.ffmpegPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w: %s", err, out)
	}
	return nil
}

// whisperOutput mirrors the --output-json document emitted by
// whisper.cpp. Offsets are milliseconds from the start of the recording.
type whisperOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// parseWhisperJSON extracts ordered segments from a whisper.cpp JSON
// transcript. Structurally unusable output is an error, not an empty
// result: a recognizer that produced no transcription array at all is a
// transcription failure.
func parseWhisperJSON(data []byte) ([]srt.Segment, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	if out.Transcription == nil {
		return nil, ErrNoSegments
	}

	segments := make([]srt.Segment, 0, len(out.Transcription))
	for _, t := range out.Transcription {
		segments = append(segments, srt.Segment{
			Start: float64(t.Offsets.From) / 1000.0,
			End:   float64(t.Offsets.To) / 1000.0,
			Text:  t.Text,
		})
	}
	return segments, nil
}
