package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestElevenLabsProvider_Synthesize(t *testing.T) {
	audio := []byte("mp3-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/text-to-speech/21m00Tcm4TlvDq8ikWAM" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "test-key" {
			t.Errorf("unexpected api key header: %s", r.Header.Get("xi-api-key"))
		}

		var req elevenLabsRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Text != "The cat sat on the mat" {
			t.Errorf("text = %q", req.Text)
		}
		if req.ModelID != "eleven_turbo_v2_5" {
			t.Errorf("model_id = %q", req.ModelID)
		}
		if req.VoiceSettings == nil || req.VoiceSettings.Speed != 0.8 {
			t.Errorf("voice_settings = %+v, want speed 0.8", req.VoiceSettings)
		}

		w.Write(audio)
	}))
	defer server.Close()

	provider := NewElevenLabsProvider("test-key", WithElevenLabsBaseURL(server.URL))

	result, err := provider.Synthesize(context.Background(), SynthesisRequest{
		Text:  "The cat sat on the mat",
		Speed: 0.8,
	})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if !bytes.Equal(result.Audio, audio) {
		t.Errorf("audio = %q, want %q", result.Audio, audio)
	}
	if result.Provider != "elevenlabs" {
		t.Errorf("provider = %q, want elevenlabs", result.Provider)
	}
}

func TestElevenLabsProvider_Synthesize_VoiceInPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/text-to-speech/custom-voice" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req elevenLabsRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.VoiceSettings != nil {
			t.Errorf("voice_settings = %+v, want omitted at normal speed", req.VoiceSettings)
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	provider := NewElevenLabsProvider("test-key", WithElevenLabsBaseURL(server.URL))
	result, err := provider.Synthesize(context.Background(), SynthesisRequest{Text: "hi", Voice: "custom-voice"})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if result.Voice != "custom-voice" {
		t.Errorf("voice = %q, want custom-voice", result.Voice)
	}
}

func TestElevenLabsProvider_Synthesize_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "invalid api key"}`))
	}))
	defer server.Close()

	provider := NewElevenLabsProvider("bad-key", WithElevenLabsBaseURL(server.URL))
	if _, err := provider.Synthesize(context.Background(), SynthesisRequest{Text: "hi"}); err == nil {
		t.Fatal("Synthesize() error = nil, want API error")
	}
}

func TestElevenLabsProvider_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voices" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider := NewElevenLabsProvider("test-key", WithElevenLabsBaseURL(server.URL))
	if err := provider.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}
