package bridge

// Transcription is the result of a transcribe operation.
type Transcription struct {
	// Transcript is the recognized text. Mandatory.
	Transcript string `json:"transcript"`
	// Language is the detected language code.
	Language string `json:"language"`
	// WordCount is the transcript word count.
	WordCount int `json:"word_count"`
}

// Summary is the result of a summarize operation.
type Summary struct {
	// Summary is the condensed text. Mandatory.
	Summary string `json:"summary"`
	// WordCount is the input word count.
	WordCount int `json:"word_count"`
	// SummaryWordCount is the summary word count.
	SummaryWordCount int `json:"summary_word_count"`
}

// ProcessedAudio is the result of a combined transcribe-and-summarize
// operation.
type ProcessedAudio struct {
	// Transcript is the recognized text. Mandatory.
	Transcript string `json:"transcript"`
	// Summary is the condensed transcript. Mandatory.
	Summary string `json:"summary"`
	// Language is the detected language code.
	Language string `json:"language"`
	// LanguageName is the human-readable language name.
	LanguageName string `json:"language_name"`
	// WordCount is the transcript word count.
	WordCount int `json:"word_count"`
}

// Document is the result of a generate-document operation.
type Document struct {
	// Document is the generated text. Mandatory.
	Document string `json:"document"`
	// DocumentType identifies the document kind, e.g. "brd" or "po".
	DocumentType string `json:"document_type"`
	// Filename is the suggested download file name.
	Filename string `json:"filename"`
	// WordCount is the generated document's word count.
	WordCount int `json:"word_count"`
}
