// CLAUDE:SUMMARY OpenAI-compatible vision client — sends images as base64 data URIs, parses {"text","confidence"} replies.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Renopop/RAG-v7/safeio"
)

// maxResponseBytes caps recognition response reads (4 MiB).
const maxResponseBytes int64 = 4 << 20

// visionPrompt asks the model for a machine-readable reply. The confidence
// score drives the acceptance threshold in RecognizeBatch.
const visionPrompt = `Extract every piece of readable text from this image, preserving reading order.
Reply with a single JSON object: {"text": "<extracted text>", "confidence": <0.0-1.0>}.
Use an empty string and a low confidence when the image carries no legible text.`

// Client implements Recognizer using the OpenAI /v1/chat/completions API
// format. This covers vLLM, Ollama, Mistral-compatible gateways and OpenAI
// itself. One Client is built per document and reused for every image.
type Client struct {
	cfg    Config
	base   string
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a recognition client. The returned client reuses
// cfg.HTTPClient when provided, so connections are shared across the batch.
func NewClient(cfg Config) *Client {
	cfg.defaults()
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:    cfg,
		base:   strings.TrimRight(cfg.APIBase, "/"),
		client: httpClient,
		logger: cfg.Logger,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// visionPayload is the JSON object the model is instructed to reply with.
type visionPayload struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Recognize sends one image to the vision model and returns the recognized
// text with its confidence. A misconfigured client fails with ErrUnavailable.
func (c *Client) Recognize(ctx context.Context, img Image) (Result, error) {
	if !c.cfg.Available() {
		return Result{}, ErrUnavailable
	}

	format := img.Format
	if format == "" {
		format = "png"
	}
	dataURL := fmt.Sprintf("data:image/%s;base64,%s",
		format, base64.StdEncoding.EncodeToString(img.Data))

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: visionPrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		}},
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal request: %w", err)
	}

	url := c.base + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("HTTP POST %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, string(respBody))
	}

	// Recognition replies are small; anything bigger is a misbehaving
	// gateway, not text.
	respBody, err := safeio.LimitedReadAll(resp.Body, maxResponseBytes)
	if err != nil {
		return Result{}, fmt.Errorf("read response from %s: %w", url, err)
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return Result{}, fmt.Errorf("no choices returned from %s", url)
	}

	payload, err := parseVisionReply(chat.Choices[0].Message.Content)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Text:       strings.TrimSpace(payload.Text),
		Confidence: clamp01(payload.Confidence),
	}, nil
}

// parseVisionReply decodes the model reply, tolerating markdown code fences
// around the JSON object.
func parseVisionReply(content string) (visionPayload, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}

	var p visionPayload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return visionPayload{}, fmt.Errorf("decode recognition payload: %w", err)
	}
	return p, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
