package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"calmmate/internal/infra"
)

// Client synthesizes speech through the ElevenLabs text-to-speech API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	voiceID    string
	model      string
}

func NewClient(apiKey, voiceID, model string) *Client {
	return NewClientWithURL(apiKey, voiceID, model, "https://api.elevenlabs.io/v1")
}

func NewClientWithURL(apiKey, voiceID, model, baseURL string) *Client {
	if voiceID == "" {
		// "Rachel": calm, warm, professional.
		voiceID = "21m00Tcm4TlvDq8ikWAM"
	}
	if model == "" {
		model = "eleven_turbo_v2"
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		voiceID:    voiceID,
		model:      model,
	}
}

type synthesizeRequest struct {
	Text         string `json:"text"`
	ModelID      string `json:"model_id"`
	OutputFormat string `json:"output_format,omitempty"`
}

// Synthesize returns the spoken text as mp3 bytes.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	bodyBytes, err := json.Marshal(synthesizeRequest{
		Text:         text,
		ModelID:      c.model,
		OutputFormat: "mp3_44100_128",
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var audio []byte

	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/text-to-speech/"+c.voiceID, bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("xi-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("elevenlabs API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("elevenlabs API error %d: %s", resp.StatusCode, string(respBody))
		}

		audio, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading audio: %w", err)
		}

		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	if len(audio) == 0 {
		return nil, fmt.Errorf("elevenlabs returned no audio")
	}

	return audio, nil
}
