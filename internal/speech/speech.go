// Package speech provides a provider-agnostic text-to-speech gateway for
// the reading games.
package speech

import "context"

// SynthesisRequest is the input to a speech synthesis call.
type SynthesisRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"` // provider voice id; empty uses the provider default
	Speed float64 `json:"speed,omitempty"` // 1.0 is normal; young readers often want slower
}

// SynthesisResult is the synthesized audio plus metadata.
type SynthesisResult struct {
	Audio    []byte `json:"-"`
	MIMEType string `json:"mime_type"`
	Provider string `json:"provider"`
	Voice    string `json:"voice"`
}

// VoiceInfo describes an available voice.
type VoiceInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Provider is the interface all text-to-speech providers must implement.
type Provider interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (SynthesisResult, error)
	Voices() []VoiceInfo
	HealthCheck(ctx context.Context) error
}
