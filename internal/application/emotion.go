package application

import (
	"context"
	"log/slog"
	"strings"

	"calmmate/internal/domain"
)

// EmotionInferencer is the external emotion-classification capability.
type EmotionInferencer interface {
	Infer(ctx context.Context, text string) (label string, score float64, err error)
}

// EmotionAnalyzer wraps the inference capability so the pipeline never has to
// care whether it is up: failures degrade to a neutral default instead of
// propagating.
type EmotionAnalyzer struct {
	model  EmotionInferencer
	logger *slog.Logger
}

func NewEmotionAnalyzer(model EmotionInferencer, logger *slog.Logger) *EmotionAnalyzer {
	return &EmotionAnalyzer{model: model, logger: logger}
}

// Assess classifies the transcript. Empty text short-circuits to neutral
// without calling the model. A model failure also yields neutral, but with
// Degraded set so observability can tell the two apart.
func (a *EmotionAnalyzer) Assess(ctx context.Context, text string) domain.Emotion {
	if strings.TrimSpace(text) == "" {
		return domain.NeutralEmotion(false)
	}

	label, score, err := a.model.Infer(ctx, text)
	if err != nil {
		a.logger.Warn("emotion inference failed, defaulting to neutral", "error", err)
		return domain.NeutralEmotion(true)
	}

	return domain.Emotion{Label: label, Confidence: score}
}
