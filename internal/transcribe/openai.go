package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/nlowen/captiond/internal/srt"
)

// DefaultOpenAIModel is the hosted transcription model used when the
// config does not name one.
const DefaultOpenAIModel = "whisper-1"

// ErrAPIKeyNotSet is returned when the OpenAI backend is selected but no
// API key is configured.
var ErrAPIKeyNotSet = errors.New("OpenAI API key not set: please set OPENAI_API_KEY environment variable")

// OpenAI transcribes audio through the hosted OpenAI transcription API.
type OpenAI struct {
	client openai.Client
	model  string
}

var _ Transcriber = (*OpenAI)(nil)

// NewOpenAI creates a hosted transcriber. The API key is read from the
// OPENAI_API_KEY environment variable.
func NewOpenAI(model string) (*OpenAI, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAI{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// verboseTranscription is the verbose_json response shape. Segment-level
// timings are only present in this format, so the response body is
// decoded directly instead of through the SDK's plain-text result type.
type verboseTranscription struct {
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe uploads the audio file and returns the recognized segments.
func (o *OpenAI) Transcribe(ctx context.Context, path, language string) ([]srt.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	params := openai.AudioTranscriptionNewParams{
		Model:          openai.AudioModel(o.model),
		File:           f,
		ResponseFormat: openai.AudioResponseFormatVerboseJSON,
	}
	if language != "" {
		params.Language = openai.String(language)
	}

	var verbose verboseTranscription
	_, err = o.client.Audio.Transcriptions.New(ctx, params, option.WithResponseBodyInto(&verbose))
	if err != nil {
		return nil, fmt.Errorf("OpenAI transcription failed: %w", err)
	}

	if verbose.Segments == nil {
		return nil, ErrNoSegments
	}

	segments := make([]srt.Segment, 0, len(verbose.Segments))
	for _, s := range verbose.Segments {
		segments = append(segments, srt.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}
	return segments, nil
}
