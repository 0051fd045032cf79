package groq

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

// WhisperClient calls Groq's OpenAI-compatible audio transcription endpoint.
// There is deliberately no retry loop here: the Transcriber owns the
// two-calls-per-request budget.
type WhisperClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewWhisperClient(apiKey, model string) *WhisperClient {
	return NewWhisperClientWithURL(apiKey, model, "https://api.groq.com/openai/v1")
}

func NewWhisperClientWithURL(apiKey, model, baseURL string) *WhisperClient {
	if model == "" {
		model = "whisper-large-v3-turbo"
	}
	return &WhisperClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		model:      model,
	}
}

func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	// Carry the container hint in both the filename and the part's content
	// type, the way the original upload left the browser.
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="audio.%s"`, format))
	header.Set("Content-Type", "audio/"+format)

	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}

	if _, err = part.Write(audio); err != nil {
		return "", fmt.Errorf("writing audio: %w", err)
	}

	if err = writer.WriteField("model", c.model); err != nil {
		return "", fmt.Errorf("writing model field: %w", err)
	}

	if err = writer.WriteField("response_format", "text"); err != nil {
		return "", fmt.Errorf("writing response_format field: %w", err)
	}

	if err = writer.Close(); err != nil {
		return "", fmt.Errorf("closing writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whisper API error %d: %s", resp.StatusCode, string(respBody))
	}

	// response_format=text returns the transcript verbatim, no JSON envelope.
	return string(respBody), nil
}
