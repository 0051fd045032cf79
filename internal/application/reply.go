package application

import (
	"context"
	"fmt"
	"strings"

	"calmmate/internal/domain"
)

// ReplyModel is the external conversational capability.
type ReplyModel interface {
	Generate(ctx context.Context, transcript, emotion string) (string, error)
}

// listeningReply invites the user to speak when there is nothing to respond
// to yet.
const listeningReply = "I'm here and listening. Take your time, and tell me what's on your mind whenever you're ready."

// ReplyComposer produces the therapist reply for one request. A model failure
// is a hard failure: in a support context, reporting the problem and letting
// the caller retry beats a silently generic reply.
type ReplyComposer struct {
	model ReplyModel
}

func NewReplyComposer(model ReplyModel) *ReplyComposer {
	return &ReplyComposer{model: model}
}

func (c *ReplyComposer) Compose(ctx context.Context, transcript string, emotion domain.Emotion) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return listeningReply, nil
	}

	reply, err := c.model.Generate(ctx, transcript, emotion.Label)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrReplyGeneration, err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("%w: model returned empty reply", domain.ErrReplyGeneration)
	}
	return reply, nil
}
