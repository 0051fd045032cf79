package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"calmmate/internal/domain"
)

// sttStrategy is one way of presenting a recording to the speech-to-text
// capability. Strategies run in order; the first non-empty transcript wins.
type sttStrategy struct {
	name string
	// prepare returns the file to submit and its container format hint.
	prepare func(ctx context.Context) (path, format string, err error)
}

// Transcriber drives the speech-to-text capability with a primary-then-
// fallback strategy: first the uploaded container as-is, then the canonical
// waveform produced on demand. The fallback runs at most once, so a request
// costs at most two transcription calls and one conversion.
type Transcriber struct {
	stt        SpeechToText
	normalizer *Normalizer
	logger     *slog.Logger
}

func NewTranscriber(stt SpeechToText, normalizer *Normalizer, logger *slog.Logger) *Transcriber {
	return &Transcriber{stt: stt, normalizer: normalizer, logger: logger}
}

func (t *Transcriber) Transcribe(ctx context.Context, artifact domain.Artifact) (string, error) {
	strategies := []sttStrategy{
		{
			name: "direct",
			prepare: func(_ context.Context) (string, string, error) {
				return artifact.Path, artifact.Format, nil
			},
		},
		{
			name: "converted",
			prepare: func(ctx context.Context) (string, string, error) {
				wavPath, err := t.normalizer.Convert(ctx, artifact.Path)
				return wavPath, "wav", err
			},
		},
	}

	var lastErr error
	gotEmpty := false

	for _, strategy := range strategies {
		path, format, err := strategy.prepare(ctx)
		if err != nil {
			// Conversion failure is fatal to the request, not worth
			// a further transcription attempt.
			return "", err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%w: %s", domain.ErrNotFound, artifact.ID)
			}
			return "", fmt.Errorf("reading %s: %w", path, err)
		}

		text, err := t.stt.Transcribe(ctx, data, format)
		if err != nil {
			t.logger.Warn("transcription attempt failed",
				"strategy", strategy.name,
				"artifact", artifact.ID,
				"error", err,
			)
			lastErr = err
			continue
		}

		text = strings.TrimSpace(text)
		if text != "" {
			t.logger.Info("transcription succeeded",
				"strategy", strategy.name,
				"artifact", artifact.ID,
			)
			return text, nil
		}
		gotEmpty = true
	}

	// A technically successful call with nothing recognized is the caller's
	// problem to fix, not an internal fault.
	if gotEmpty {
		return "", domain.ErrEmptyTranscript
	}
	return "", fmt.Errorf("%w: %v", domain.ErrTranscriptionFailed, lastErr)
}
