package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"calmmate/internal/domain"
)

// AudioProber measures a recording's duration via an external utility.
type AudioProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// AudioTranscoder converts a recording to the canonical waveform (mono,
// 16 kHz wav) and returns the sibling file's path.
type AudioTranscoder interface {
	Transcode(ctx context.Context, path string) (string, error)
}

// Normalizer validates stored recordings and converts them on demand.
// Conversion is deliberately not part of validation: the direct transcription
// strategy is tried first, and only its failure pays the transcoding cost.
type Normalizer struct {
	prober      AudioProber
	transcoder  AudioTranscoder
	minDuration float64
	logger      *slog.Logger
}

func NewNormalizer(prober AudioProber, transcoder AudioTranscoder, minDuration float64, logger *slog.Logger) *Normalizer {
	if minDuration <= 0 {
		minDuration = 1.0
	}
	return &Normalizer{
		prober:      prober,
		transcoder:  transcoder,
		minDuration: minDuration,
		logger:      logger,
	}
}

// Validate enforces the minimum recording duration. An unmeasurable duration
// is treated as "unknown, allow".
func (n *Normalizer) Validate(ctx context.Context, path string) error {
	duration, err := n.prober.Duration(ctx, path)
	if err != nil {
		n.logger.Warn("duration check unavailable, allowing", "path", path, "error", err)
		return nil
	}
	if duration < n.minDuration {
		return fmt.Errorf("%w (got %.2fs)", domain.ErrRecordingTooShort, duration)
	}
	return nil
}

// Convert produces the canonical waveform sibling for path.
func (n *Normalizer) Convert(ctx context.Context, path string) (string, error) {
	wavPath, err := n.transcoder.Transcode(ctx, path)
	if err != nil {
		if errors.Is(err, domain.ErrConversionFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrConversionFailed, err)
	}
	return wavPath, nil
}
