package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultOpenAISpeechURL = "https://api.openai.com/v1"

// OpenAIProvider implements Provider using the OpenAI speech API.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	model   string
	voice   string
	client  *http.Client
}

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*OpenAIProvider)

// WithBaseURL sets the base URL for an OpenAI-compatible speech API.
func WithBaseURL(url string) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.baseURL = url
	}
}

// WithModel sets the speech model.
func WithModel(model string) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.model = model
	}
}

// WithDefaultVoice sets the voice used when a request names none.
func WithDefaultVoice(voice string) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.voice = voice
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.client = client
	}
}

// NewOpenAIProvider creates a provider for the OpenAI speech API.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) *OpenAIProvider {
	p := &OpenAIProvider{
		apiKey:  apiKey,
		baseURL: defaultOpenAISpeechURL,
		model:   "tts-1",
		voice:   "nova",
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// openaiSpeechRequest is the request body for the speech endpoint.
type openaiSpeechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed,omitempty"`
	ResponseFormat string  `json:"response_format,omitempty"`
}

func (p *OpenAIProvider) Synthesize(ctx context.Context, req SynthesisRequest) (SynthesisResult, error) {
	if req.Text == "" {
		return SynthesisResult{}, fmt.Errorf("text is required")
	}
	voice := req.Voice
	if voice == "" {
		voice = p.voice
	}

	body, err := json.Marshal(openaiSpeechRequest{
		Model:          p.model,
		Input:          req.Text,
		Voice:          voice,
		Speed:          req.Speed,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("openai speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return SynthesisResult{}, fmt.Errorf("openai speech API status %d: %s", resp.StatusCode, data)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("read audio: %w", err)
	}

	return SynthesisResult{
		Audio:    audio,
		MIMEType: "audio/mpeg",
		Provider: "openai",
		Voice:    voice,
	}, nil
}

func (p *OpenAIProvider) Voices() []VoiceInfo {
	return []VoiceInfo{
		{ID: "nova", Name: "Nova", Description: "Bright, friendly"},
		{ID: "shimmer", Name: "Shimmer", Description: "Soft, warm"},
		{ID: "alloy", Name: "Alloy", Description: "Neutral"},
		{ID: "fable", Name: "Fable", Description: "Expressive storyteller"},
	}
}

func (p *OpenAIProvider) HealthCheck(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("openai health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openai health check status %d", resp.StatusCode)
	}
	return nil
}
