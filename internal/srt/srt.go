// Package srt encodes timed transcript segments into the SubRip (SRT)
// subtitle format.
package srt

import (
	"fmt"
	"math"
	"strings"
)

// Segment is one recognized utterance: start and end offsets in seconds
// from the beginning of the recording, plus the recognized text. Segments
// arrive from the transcriber already in playback order; that order is
// significant and is never re-derived here.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Encode renders segments as SRT text. Sequence numbers start at 1 in
// input order. Each segment becomes a four-line block: number, timestamp
// range, trimmed text, blank line. An empty input yields an empty string.
//
// Encode is pure and deterministic: identical input always produces
// byte-identical output.
func Encode(segments []Segment) string {
	if len(segments) == 0 {
		return ""
	}

	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1,
			Timestamp(seg.Start),
			Timestamp(seg.End),
			strings.TrimSpace(seg.Text),
		)
	}
	return b.String()
}

// Timestamp formats a seconds offset as HH:MM:SS,mmm. The fractional
// component is truncated, not rounded, to milliseconds. Negative and NaN
// offsets are treated as zero, matching how missing timestamps from the
// recognizer are handled.
func Timestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}

	m := int64(seconds * 1000)

	return fmt.Sprintf("%02d:%02d:%02d,%03d",
		m/3600000,
		(m/60000)%60,
		(m/1000)%60,
		m%1000,
	)
}
