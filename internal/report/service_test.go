package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medical-intake/internal/consultation"
	"medical-intake/internal/intake"
)

type fakeTelegram struct {
	messages  []string
	documents map[string][]byte
	msgErr    error
}

func (f *fakeTelegram) SendMessage(_ context.Context, _ int64, text string) error {
	if f.msgErr != nil {
		return f.msgErr
	}
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeTelegram) SendDocument(_ context.Context, _ int64, data []byte, name string) error {
	if f.documents == nil {
		f.documents = map[string][]byte{}
	}
	f.documents[name] = data
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleConsultation() consultation.Consultation {
	return consultation.Consultation{
		ID:          uuid.MustParse("6f1c2a4e-4d1b-4b8e-9a57-1a2b3c4d5e6f"),
		PatientID:   uuid.MustParse("0a0b0c0d-0000-4000-8000-000000000001"),
		CurrentMood: consultation.StateAnxious,
		Asked: []intake.Question{
			{Question: "Has anyone used tobacco products in the past year?", Module: intake.TopicLifestyle},
			{Question: "Has anyone consumed alcohol in the past year?", Module: intake.TopicLifestyle},
			{Question: "Is there anything else about your health you'd like to share?", Module: intake.TopicFinalConfirmation},
		},
	}
}

func TestSummary(t *testing.T) {
	got := Summary(sampleConsultation())

	assert.Contains(t, got, "Intake completed: 6f1c2a4e-4d1b-4b8e-9a57-1a2b3c4d5e6f")
	assert.Contains(t, got, "Mood: Anxious")
	assert.Contains(t, got, "- Lifestyle (2 questions)\n- Final confirmation (1 questions)")
}

func TestSummary_NothingAsked(t *testing.T) {
	got := Summary(consultation.Consultation{CurrentMood: consultation.StateNeutral})
	assert.Contains(t, got, "No topics covered.")
	assert.Contains(t, got, "Mood: Neutral")
}

func TestSendDoctorReport_MissingFont(t *testing.T) {
	tg := &fakeTelegram{}
	svc := NewService(tg, 7, []string{"/nonexistent/font.ttf"}, quietLogger())

	err := svc.SendDoctorReport(context.Background(), sampleConsultation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load font")
	// the text summary still reaches the doctor
	assert.Len(t, tg.messages, 1)
	assert.Empty(t, tg.documents)
}

func TestSendDoctorReport_MessageError(t *testing.T) {
	tg := &fakeTelegram{msgErr: errors.New("blocked")}
	svc := NewService(tg, 7, nil, quietLogger())

	err := svc.SendDoctorReport(context.Background(), sampleConsultation())
	assert.ErrorContains(t, err, "blocked")
}

func TestSendDoctorReport_PDF(t *testing.T) {
	var font string
	for _, p := range DefaultFontPaths {
		if _, err := os.Stat(p); err == nil {
			font = p
			break
		}
	}
	if font == "" {
		t.Skip("DejaVuSans not installed")
	}

	tg := &fakeTelegram{}
	svc := NewService(tg, 7, []string{font}, quietLogger())

	c := sampleConsultation()
	require.NoError(t, svc.SendDoctorReport(context.Background(), c))

	doc, ok := tg.documents["intake_"+c.ID.String()+".pdf"]
	require.True(t, ok)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestTopicTitle(t *testing.T) {
	assert.Equal(t, "Medical history", topicTitle("medical_history"))
	assert.Equal(t, "X", topicTitle("x"))
	assert.Equal(t, "", topicTitle(""))
}
