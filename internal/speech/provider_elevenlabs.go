package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultElevenLabsBaseURL = "https://api.elevenlabs.io/v1"

// ElevenLabsProvider implements Provider using the ElevenLabs API.
type ElevenLabsProvider struct {
	apiKey  string
	baseURL string
	voice   string
	client  *http.Client
}

// ElevenLabsOption configures an ElevenLabsProvider.
type ElevenLabsOption func(*ElevenLabsProvider)

// WithElevenLabsBaseURL sets the API base URL.
func WithElevenLabsBaseURL(url string) ElevenLabsOption {
	return func(p *ElevenLabsProvider) {
		p.baseURL = url
	}
}

// WithElevenLabsVoice sets the default voice id.
func WithElevenLabsVoice(voice string) ElevenLabsOption {
	return func(p *ElevenLabsProvider) {
		p.voice = voice
	}
}

// WithElevenLabsHTTPClient sets a custom HTTP client.
func WithElevenLabsHTTPClient(client *http.Client) ElevenLabsOption {
	return func(p *ElevenLabsProvider) {
		p.client = client
	}
}

// NewElevenLabsProvider creates a provider for the ElevenLabs API.
func NewElevenLabsProvider(apiKey string, opts ...ElevenLabsOption) *ElevenLabsProvider {
	p := &ElevenLabsProvider{
		apiKey:  apiKey,
		baseURL: defaultElevenLabsBaseURL,
		voice:   "21m00Tcm4TlvDq8ikWAM", // "Rachel", the service default
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type elevenLabsRequest struct {
	Text          string            `json:"text"`
	ModelID       string            `json:"model_id,omitempty"`
	VoiceSettings *elevenLabsTuning `json:"voice_settings,omitempty"`
}

type elevenLabsTuning struct {
	Speed float64 `json:"speed,omitempty"`
}

func (p *ElevenLabsProvider) Synthesize(ctx context.Context, req SynthesisRequest) (SynthesisResult, error) {
	if req.Text == "" {
		return SynthesisResult{}, fmt.Errorf("text is required")
	}
	voice := req.Voice
	if voice == "" {
		voice = p.voice
	}

	elReq := elevenLabsRequest{Text: req.Text, ModelID: "eleven_turbo_v2_5"}
	if req.Speed != 0 {
		elReq.VoiceSettings = &elevenLabsTuning{Speed: req.Speed}
	}
	body, err := json.Marshal(elReq)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", p.baseURL, voice)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return SynthesisResult{}, fmt.Errorf("elevenlabs API status %d: %s", resp.StatusCode, data)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return SynthesisResult{}, fmt.Errorf("read audio: %w", err)
	}

	return SynthesisResult{
		Audio:    audio,
		MIMEType: "audio/mpeg",
		Provider: "elevenlabs",
		Voice:    voice,
	}, nil
}

func (p *ElevenLabsProvider) Voices() []VoiceInfo {
	return []VoiceInfo{
		{ID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel", Description: "Calm narrator"},
	}
}

func (p *ElevenLabsProvider) HealthCheck(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/voices", nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("xi-api-key", p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("elevenlabs health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("elevenlabs health check status %d", resp.StatusCode)
	}
	return nil
}
