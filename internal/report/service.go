package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/signintech/gopdf"

	"medical-intake/internal/consultation"
)

// DefaultFontPaths are the usual DejaVuSans locations on Alpine and Debian.
var DefaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

const (
	pageBottom = 780.0
	textWidth  = 500.0
)

type TelegramClient interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName string) error
}

type Service struct {
	tgClient     TelegramClient
	doctorChatID int64
	fontPaths    []string
	logger       *slog.Logger
	now          func() time.Time
}

func NewService(tg TelegramClient, doctorChatID int64, fontPaths []string, logger *slog.Logger) *Service {
	if len(fontPaths) == 0 {
		fontPaths = DefaultFontPaths
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tgClient:     tg,
		doctorChatID: doctorChatID,
		fontPaths:    fontPaths,
		logger:       logger,
		now:          time.Now,
	}
}

// SendDoctorReport posts a short text summary followed by the PDF report.
func (s *Service) SendDoctorReport(ctx context.Context, c consultation.Consultation) error {
	if err := s.tgClient.SendMessage(ctx, s.doctorChatID, Summary(c)); err != nil {
		return fmt.Errorf("send summary: %w", err)
	}

	s.logger.Info("generating PDF report", "consultation_id", c.ID)
	pdfData, err := s.BuildPDF(c)
	if err != nil {
		return err
	}

	fileName := fmt.Sprintf("intake_%s.pdf", c.ID.String())
	if err := s.tgClient.SendDocument(ctx, s.doctorChatID, pdfData, fileName); err != nil {
		return fmt.Errorf("send report document: %w", err)
	}
	s.logger.Info("PDF report sent", "consultation_id", c.ID, "chat_id", s.doctorChatID)
	return nil
}

// Summary renders the plain-text digest sent ahead of the PDF.
func Summary(c consultation.Consultation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Intake completed: %s\n", c.ID)
	fmt.Fprintf(&b, "Patient: %s\n", c.PatientID)
	fmt.Fprintf(&b, "Mood: %s\n", translateMood(c.CurrentMood))

	order, grouped := c.AskedByTopic()
	if len(order) == 0 {
		b.WriteString("No topics covered.\n")
		return b.String()
	}
	b.WriteString("Topics covered:\n")
	for _, topic := range order {
		fmt.Fprintf(&b, "- %s (%d questions)\n", topicTitle(topic), len(grouped[topic]))
	}
	return b.String()
}

func (s *Service) BuildPDF(c consultation.Consultation) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range s.fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			s.logger.Debug("loaded report font", "path", path)
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, fmt.Errorf("failed to load font for PDF. Please ensure ttf-dejavu is installed. Last error: %w", fontErr)
	}

	w := &writer{pdf: &pdf}

	w.font(20)
	w.line("Medical intake report")
	pdf.Br(30)

	w.font(12)
	w.line(fmt.Sprintf("Date: %s", s.now().Format("02.01.2006 15:04")))
	w.line(fmt.Sprintf("Patient ID: %s", c.PatientID))
	w.line(fmt.Sprintf("Consultation ID: %s", c.ID))
	w.line(fmt.Sprintf("Emotional state: %s", translateMood(c.CurrentMood)))
	pdf.Br(10)

	order, grouped := c.AskedByTopic()
	if len(order) == 0 {
		w.font(11)
		w.line("- No topics were covered.")
	}
	for _, topic := range order {
		w.font(14)
		w.line(topicTitle(topic))
		w.font(11)
		for _, q := range grouped[topic] {
			w.wrapped("- " + q)
		}
		pdf.Br(8)
	}

	if w.err != nil {
		return nil, w.err
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// writer keeps the first error and breaks pages before the bottom margin.
type writer struct {
	pdf  *gopdf.GoPdf
	size float64
	err  error
}

func (w *writer) font(size float64) {
	if w.err != nil {
		return
	}
	w.size = size
	w.err = w.pdf.SetFont("DejaVu", "", size)
}

func (w *writer) line(text string) {
	if w.err != nil {
		return
	}
	if w.pdf.GetY() > pageBottom {
		w.pdf.AddPage()
	}
	w.err = w.pdf.Cell(nil, text)
	w.pdf.Br(w.size + 4)
}

func (w *writer) wrapped(text string) {
	if w.err != nil {
		return
	}
	lines, err := w.pdf.SplitText(text, textWidth)
	if err != nil {
		w.err = err
		return
	}
	for _, l := range lines {
		w.line(l)
	}
}

func translateMood(mood consultation.EmotionalState) string {
	switch mood {
	case consultation.StateAnxious:
		return "Anxious"
	case consultation.StateNeutral:
		return "Neutral"
	default:
		return string(mood)
	}
}

// topicTitle turns "medical_history" into "Medical history".
func topicTitle(topic string) string {
	t := strings.ReplaceAll(topic, "_", " ")
	if t == "" {
		return t
	}
	return strings.ToUpper(t[:1]) + t[1:]
}
