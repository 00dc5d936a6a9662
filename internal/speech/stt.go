package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"time"
)

const (
	// DefaultSTTURL is the local Whisper service endpoint used by the compose setup.
	DefaultSTTURL = "http://stt:8000/transcribe"

	// DefaultLanguage matches the language of the built-in intake script.
	DefaultLanguage = "en"

	fallbackFileName    = "recording.wav"
	fallbackContentType = "application/octet-stream"
)

// Recording is one uploaded patient answer.
type Recording struct {
	Data        []byte
	FileName    string
	ContentType string
}

// Transcript is what the recogniser heard.
type Transcript struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// WhisperClient talks to a Whisper-compatible transcription service that
// accepts a multipart "file" and an optional "language" hint.
type WhisperClient struct {
	url        string
	language   string
	httpClient *http.Client
}

func NewWhisperClient(url, language string) *WhisperClient {
	if url == "" {
		url = DefaultSTTURL
	}
	if language == "" {
		language = DefaultLanguage
	}
	return &WhisperClient{
		url:        url,
		language:   language,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *WhisperClient) Transcribe(ctx context.Context, rec Recording) (Transcript, error) {
	body, contentType, err := c.encode(rec)
	if err != nil {
		return Transcript{}, fmt.Errorf("encode recording: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return Transcript{}, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Transcript{}, fmt.Errorf("stt request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return Transcript{}, fmt.Errorf("stt: %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	var out Transcript
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Transcript{}, fmt.Errorf("decode stt response: %w", err)
	}
	return out, nil
}

// encode builds the multipart body. The part keeps the client's file name and
// content type so the service can pick the right decoder.
func (c *WhisperClient) encode(rec Recording) (*bytes.Buffer, string, error) {
	name := filepath.Base(rec.FileName)
	if name == "." || name == string(filepath.Separator) {
		name = fallbackFileName
	}
	ctype := rec.ContentType
	if ctype == "" {
		ctype = mime.TypeByExtension(filepath.Ext(name))
	}
	if ctype == "" {
		ctype = fallbackContentType
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "file",
		"filename": name,
	}))
	h.Set("Content-Type", ctype)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(rec.Data); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("language", c.language); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return body, mw.FormDataContentType(), nil
}
