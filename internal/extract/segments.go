package extract

import (
	"math"
	"strings"

	"github.com/callsight/callsight/internal/model"
)

// TranscriptSegments derives the ordered segment records for a call.
// Text is lower-cased here, exactly once, so downstream embedding sees
// normalized input. Entries that are empty after trimming are expected
// transcription noise and dropped without error. Output order follows
// input order minus the dropped entries.
func TranscriptSegments(callID int64, raw *model.RawCall) []model.TranscriptSegmentRecord {
	if raw == nil || raw.Paragraphs == nil {
		return nil
	}
	segments := make([]model.TranscriptSegmentRecord, 0, len(raw.Paragraphs.Transcripts))
	for _, entry := range raw.Paragraphs.Transcripts {
		if entry.Trans == nil {
			continue
		}
		text := strings.ToLower(strings.TrimSpace(*entry.Trans))
		if text == "" {
			continue
		}
		speaker := model.SpeakerCustomer
		if entry.Speaker == 1 {
			speaker = model.SpeakerAgent
		}
		segments = append(segments, model.TranscriptSegmentRecord{
			CallID:    callID,
			Text:      text,
			Speaker:   speaker,
			StartTime: roundTenth(entry.StartTime),
			EndTime:   roundTenth(entry.TillTime),
		})
	}
	return segments
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
