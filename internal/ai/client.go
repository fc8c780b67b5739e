package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Sentinel errors classifying generative API failures. The fallback chain
// advances past ErrModelNotFound and generic failures, and aborts on
// ErrAuthFailed and ErrQuotaExceeded.
var (
	ErrModelNotFound  = errors.New("model not found")
	ErrAuthFailed     = errors.New("authentication failed")
	ErrQuotaExceeded  = errors.New("quota exceeded")
	ErrEmptyResponse  = errors.New("empty model response")
	ErrChainExhausted = errors.New("all model candidates failed")
)

// Generator produces text for a prompt against a specific model identifier.
type Generator interface {
	Generate(ctx context.Context, model string, prompt Prompt) (string, error)
}

// ClientConfig parameterizes the REST client.
type ClientConfig struct {
	BaseURL         string
	APIKey          string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
}

// Client calls a generateContent-style REST endpoint. It is stateless with
// respect to tickets; each Generate call is one model attempt.
type Client struct {
	cfg  ClientConfig
	http *http.Client
}

// NewClient constructs the REST client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

type apiPart struct {
	Text       string         `json:"text,omitempty"`
	InlineData *apiInlineData `json:"inline_data,omitempty"`
}

type apiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type apiContent struct {
	Role  string    `json:"role,omitempty"`
	Parts []apiPart `json:"parts"`
}

type apiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	SystemInstruction *apiContent         `json:"system_instruction,omitempty"`
	Contents          []apiContent        `json:"contents"`
	GenerationConfig  apiGenerationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content apiContent `json:"content"`
	} `json:"candidates"`
}

// Generate performs one blocking call against the named model and returns the
// generated text. Errors are wrapped with the classification sentinels above.
func (c *Client) Generate(ctx context.Context, model string, prompt Prompt) (string, error) {
	parts := []apiPart{{Text: prompt.User}}
	if prompt.Image != nil {
		parts = append(parts, apiPart{
			InlineData: &apiInlineData{
				MIMEType: prompt.Image.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(prompt.Image.Data),
			},
		})
	}

	reqBody := generateRequest{
		Contents: []apiContent{{Role: "user", Parts: parts}},
		GenerationConfig: apiGenerationConfig{
			Temperature:     c.cfg.Temperature,
			MaxOutputTokens: c.cfg.MaxOutputTokens,
		},
	}
	if prompt.System != "" {
		reqBody.SystemInstruction = &apiContent{Parts: []apiPart{{Text: prompt.System}}}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), model, c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("model post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", classifyStatus(resp.StatusCode, model, body)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	text := extractText(genResp)
	if text == "" {
		return "", fmt.Errorf("model %s: %w", model, ErrEmptyResponse)
	}
	return text, nil
}

func classifyStatus(status int, model string, body []byte) error {
	detail := strings.TrimSpace(string(body))
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("model %s: %w: %s", model, ErrModelNotFound, detail)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("model %s: %w: %s", model, ErrAuthFailed, detail)
	case http.StatusTooManyRequests:
		return fmt.Errorf("model %s: %w: %s", model, ErrQuotaExceeded, detail)
	default:
		return fmt.Errorf("model %s: api error %d: %s", model, status, detail)
	}
}

func extractText(resp generateResponse) string {
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			b.WriteString(part.Text)
		}
		break
	}
	return strings.TrimSpace(b.String())
}
