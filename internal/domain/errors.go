package domain

import "errors"

// User-correctable conditions. These are surfaced to the caller with their
// message as-is and never logged as system errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported audio format, use webm, wav, mp3 or ogg")
	ErrRecordingTooShort = errors.New("recording too short - please speak for at least 1 second")
	ErrEmptyTranscript   = errors.New("could not understand the audio - please try speaking again")
	ErrNoText            = errors.New("no text provided")
)

// ErrNotFound means the referenced artifact identifier has no file behind it.
var ErrNotFound = errors.New("audio file not found")

// Upstream failures. Wrapped diagnostics are for logs only; callers get a
// generic message.
var (
	ErrConversionFailed    = errors.New("audio conversion failed")
	ErrTranscriptionFailed = errors.New("transcription failed")
	ErrReplyGeneration     = errors.New("reply generation failed")
)

// IsUserCorrectable reports whether err is something the caller can fix by
// changing their input, as opposed to an internal or upstream fault.
func IsUserCorrectable(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrRecordingTooShort) ||
		errors.Is(err, ErrEmptyTranscript) ||
		errors.Is(err, ErrNoText)
}
