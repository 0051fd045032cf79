package application

import (
	"context"
	"fmt"
	"log/slog"

	"calmmate/internal/domain"
)

// ArtifactSource resolves uploaded recordings by identifier.
type ArtifactSource interface {
	PathFor(id string) string
	Exists(id string) bool
	Format() string
}

// Therapist runs the full analysis pipeline for one uploaded recording:
// validate, transcribe, assess emotion, compose a reply. Stages run strictly
// in that order; a hard failure stops the chain, while emotion assessment
// degrades internally and can never block the reply stage.
type Therapist struct {
	uploads     ArtifactSource
	normalizer  *Normalizer
	transcriber *Transcriber
	emotions    *EmotionAnalyzer
	replies     *ReplyComposer
	logger      *slog.Logger
}

func NewTherapist(
	uploads ArtifactSource,
	normalizer *Normalizer,
	transcriber *Transcriber,
	emotions *EmotionAnalyzer,
	replies *ReplyComposer,
	logger *slog.Logger,
) *Therapist {
	return &Therapist{
		uploads:     uploads,
		normalizer:  normalizer,
		transcriber: transcriber,
		emotions:    emotions,
		replies:     replies,
		logger:      logger,
	}
}

func (t *Therapist) Analyze(ctx context.Context, id string) (domain.Analysis, error) {
	if !t.uploads.Exists(id) {
		return domain.Analysis{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	artifact := domain.Artifact{
		ID:     id,
		Path:   t.uploads.PathFor(id),
		Format: t.uploads.Format(),
	}

	if err := t.normalizer.Validate(ctx, artifact.Path); err != nil {
		return domain.Analysis{}, err
	}

	transcript, err := t.transcriber.Transcribe(ctx, artifact)
	if err != nil {
		return domain.Analysis{}, err
	}

	emotion := t.emotions.Assess(ctx, transcript)

	t.logger.Info("analysis",
		"artifact", id,
		"emotion", emotion.Label,
		"confidence", emotion.Confidence,
		"degraded", emotion.Degraded,
	)

	reply, err := t.replies.Compose(ctx, transcript, emotion)
	if err != nil {
		return domain.Analysis{}, err
	}

	return domain.Analysis{
		Transcript: transcript,
		Emotion:    emotion,
		Reply:      reply,
	}, nil
}
