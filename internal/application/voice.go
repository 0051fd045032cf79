package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"calmmate/internal/domain"
)

// SpeechSynthesizer is the external text-to-speech capability.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// ArtifactSink stores generated media and hands back its identifier.
type ArtifactSink interface {
	Put(data []byte, declaredExt string) (string, error)
}

// VoiceReplies turns reply text into a stored voice artifact.
type VoiceReplies struct {
	tts     SpeechSynthesizer
	replies ArtifactSink
	logger  *slog.Logger
}

func NewVoiceReplies(tts SpeechSynthesizer, replies ArtifactSink, logger *slog.Logger) *VoiceReplies {
	return &VoiceReplies{tts: tts, replies: replies, logger: logger}
}

// Speak synthesizes text and stores the resulting mp3, returning its
// identifier.
func (v *VoiceReplies) Speak(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrNoText
	}

	audio, err := v.tts.Synthesize(ctx, text)
	if err != nil {
		return "", fmt.Errorf("synthesizing reply: %w", err)
	}

	id, err := v.replies.Put(audio, "mp3")
	if err != nil {
		return "", fmt.Errorf("storing voice reply: %w", err)
	}

	v.logger.Info("voice reply stored", "id", id, "bytes", len(audio))
	return id, nil
}
