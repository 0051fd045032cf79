package application

import "context"

// SpeechToText is the external speech-recognition capability. The format hint
// is the container extension of the submitted bytes ("webm", "wav", ...).
// A call may fail, or succeed with empty text; the Transcriber decides what
// either outcome means.
type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte, format string) (string, error)
}
