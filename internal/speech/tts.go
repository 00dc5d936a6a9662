package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultTTSURL  = "https://api.elevenlabs.io/v1/text-to-speech"
	defaultVoiceID = "21m00Tcm4TlvDq8ikWAM"
	defaultModelID = "eleven_multilingual_v2"
)

type ElevenLabsClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewElevenLabsClient(apiKey, baseURL string) *ElevenLabsClient {
	if baseURL == "" {
		baseURL = DefaultTTSURL
	}
	return &ElevenLabsClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Synthesize returns MPEG audio for text. An empty voiceID selects the
// default voice.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string, voiceID string) ([]byte, error) {
	if voiceID == "" {
		voiceID = defaultVoiceID
	}

	jsonBody, err := json.Marshal(ttsRequest{
		Text:          text,
		ModelID:       defaultModelID,
		VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.75},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("TTS API error: %s - %s", resp.Status, string(body))
	}
	return io.ReadAll(resp.Body)
}
