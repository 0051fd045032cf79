package huggingface

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

// Classifier calls the Hugging Face inference API for text emotion
// classification.
type Classifier struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewClassifier(apiKey, model string) *Classifier {
	return NewClassifierWithURL(apiKey, model, "https://api-inference.huggingface.co")
}

func NewClassifierWithURL(apiKey, model, baseURL string) *Classifier {
	if model == "" {
		model = "j-hartmann/emotion-english-distilroberta-base"
	}
	return &Classifier{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		model:      model,
	}
}

type inferRequest struct {
	Inputs string `json:"inputs"`
}

type scoredLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Infer returns the top predicted emotion and its score.
func (c *Classifier) Infer(ctx context.Context, text string) (string, float64, error) {
	bodyBytes, err := json.Marshal(inferRequest{Inputs: text})
	if err != nil {
		return "", 0, fmt.Errorf("marshaling request: %w", err)
	}

	// The API answers one ranked label list per input.
	var result [][]scoredLabel

	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/models/"+c.model, bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("inference API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("inference API error %d: %s", resp.StatusCode, string(respBody))
		}

		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		return nil
	})

	if retryErr != nil {
		return "", 0, retryErr
	}

	if len(result) == 0 || len(result[0]) == 0 {
		return "", 0, fmt.Errorf("empty classification result")
	}

	top := result[0][0]
	for _, candidate := range result[0][1:] {
		if candidate.Score > top.Score {
			top = candidate
		}
	}

	return top.Label, top.Score, nil
}
