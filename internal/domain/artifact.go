package domain

// Artifact is a stored binary file (an uploaded recording or a synthesized
// voice reply) addressed by an opaque identifier. Its creation time is the
// stored file's modification timestamp.
type Artifact struct {
	ID     string
	Path   string
	Format string
}

// Emotion is the assessed emotional state for one transcript. Degraded marks
// a neutral default substituted after a classifier failure, so logs and tests
// can tell it apart from a genuinely neutral reading.
type Emotion struct {
	Label      string
	Confidence float64
	Degraded   bool
}

// NeutralEmotion is the default used for empty transcripts and degraded
// classifications.
func NeutralEmotion(degraded bool) Emotion {
	return Emotion{Label: "neutral", Confidence: 0.0, Degraded: degraded}
}

// Analysis is the full result of one pipeline run.
type Analysis struct {
	Transcript string
	Emotion    Emotion
	Reply      string
}
