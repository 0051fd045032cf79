package groq

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const therapistPrompt = `You are CalmMate, a warm, supportive voice companion.
The user has just spoken to you; you receive their transcript and the emotion
detected in it.

GUIDELINES:
- Acknowledge the detected emotion by name, gently.
- Reflect back what you heard in one short sentence.
- Offer one open question that invites the user to explore what might help.
- Stay under 80 words. Speak plainly and kindly.
- Never diagnose, never prescribe, never claim to be a therapist.
- If the transcript mentions self-harm, encourage reaching out to a local
  crisis line in addition to your reply.`

// ChatClient generates the therapist reply through Groq's OpenAI-compatible
// chat completions endpoint.
type ChatClient struct {
	client openai.Client
	model  string
}

func NewChatClient(apiKey, model string) *ChatClient {
	return NewChatClientWithURL(apiKey, model, "https://api.groq.com/openai/v1")
}

func NewChatClientWithURL(apiKey, model, baseURL string) *ChatClient {
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	return &ChatClient{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
		),
		model: model,
	}
}

func (c *ChatClient) Generate(ctx context.Context, transcript, emotion string) (string, error) {
	prompt := fmt.Sprintf("Detected emotion: %s\nTranscript: %s", emotion, transcript)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(therapistPrompt),
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(c.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty message content")
	}

	return content, nil
}
