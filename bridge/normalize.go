package bridge

import (
	"fmt"

	"github.com/prajwal-kadam12/ReqGen/errors"
)

// The normalizer maps a loosely-typed backend result into exactly one typed
// result per operation. A mandatory field absent from the raw result is a
// contract violation and fails normalization; it is never replaced by an
// empty value. Absent optional fields get the zero value.

func normalizeTranscription(raw map[string]any) (*Transcription, error) {
	transcript, err := requireString(raw, "transcript")
	if err != nil {
		return nil, err
	}
	return &Transcription{
		Transcript: transcript,
		Language:   optString(raw, "language"),
		WordCount:  optInt(raw, "word_count"),
	}, nil
}

func normalizeSummary(raw map[string]any) (*Summary, error) {
	summary, err := requireString(raw, "summary")
	if err != nil {
		return nil, err
	}
	return &Summary{
		Summary:          summary,
		WordCount:        optInt(raw, "word_count"),
		SummaryWordCount: optInt(raw, "summary_word_count"),
	}, nil
}

func normalizeProcessedAudio(raw map[string]any) (*ProcessedAudio, error) {
	transcript, err := requireString(raw, "transcript")
	if err != nil {
		return nil, err
	}
	summary, err := requireString(raw, "summary")
	if err != nil {
		return nil, err
	}
	return &ProcessedAudio{
		Transcript:   transcript,
		Summary:      summary,
		Language:     optString(raw, "language"),
		LanguageName: optString(raw, "language_name"),
		WordCount:    optInt(raw, "word_count"),
	}, nil
}

func normalizeDocument(raw map[string]any) (*Document, error) {
	document, err := requireString(raw, "document")
	if err != nil {
		return nil, err
	}
	return &Document{
		Document:     document,
		DocumentType: optString(raw, "document_type"),
		Filename:     optString(raw, "filename"),
		WordCount:    optInt(raw, "word_count"),
	}, nil
}

// requireString extracts a mandatory string field.
func requireString(raw map[string]any, key string) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", errors.BadUpstream(0, "result missing mandatory field "+key)
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.BadUpstream(0, fmt.Sprintf("field %s has type %T, want string", key, v))
	}
	return s, nil
}

// optString extracts an optional string field, defaulting to "".
func optString(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

// optInt extracts an optional numeric field, defaulting to 0. JSON decoding
// yields float64 for numbers, but results assembled in-process may carry int.
func optInt(raw map[string]any, key string) int {
	switch v := raw[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
