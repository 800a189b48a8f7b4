package speech

import "context"

// MockProvider is a test double for speech providers.
type MockProvider struct {
	Audio       []byte
	Err         error
	LastRequest *SynthesisRequest // captures the last request for inspection
}

// NewMockProvider creates a MockProvider that returns the given audio.
func NewMockProvider(audio []byte) *MockProvider {
	return &MockProvider{Audio: audio}
}

func (m *MockProvider) Synthesize(_ context.Context, req SynthesisRequest) (SynthesisResult, error) {
	m.LastRequest = &req
	if m.Err != nil {
		return SynthesisResult{}, m.Err
	}
	return SynthesisResult{
		Audio:    m.Audio,
		MIMEType: "audio/mpeg",
		Provider: "mock",
		Voice:    "mock",
	}, nil
}

func (m *MockProvider) Voices() []VoiceInfo {
	return []VoiceInfo{
		{ID: "mock", Name: "Mock Voice", Description: "Test mock"},
	}
}

func (m *MockProvider) HealthCheck(_ context.Context) error {
	return m.Err
}
