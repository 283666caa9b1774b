package stt

// Result represents the result of a speech-to-text transcription
type Result struct {
	Paragraphs []Paragraph // In spoken order
	Provider   string      // The provider used (e.g., "deepgram", "openai")
}

// Paragraph groups consecutive sentences
type Paragraph struct {
	Sentences []Sentence
}

// Sentence is a timed span of recognized text. Times are seconds from the
// start of the audio.
type Sentence struct {
	Text  string
	Start float64
	End   float64
}
