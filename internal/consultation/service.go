package consultation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"medical-intake/internal/intake"
	"medical-intake/internal/speech"
)

// ReportService delivers the finished intake to the doctor.
type ReportService interface {
	SendDoctorReport(ctx context.Context, c Consultation) error
}

// Transcriber turns recorded patient speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, rec speech.Recording) (speech.Transcript, error)
}

// Synthesizer turns question text into speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voiceID string) ([]byte, error)
}

// Turn is the outcome of one patient utterance.
type Turn struct {
	Text      string            `json:"text,omitempty"`
	Questions []intake.Question `json:"questions"`
	Complete  bool              `json:"complete"`
}

type Service interface {
	CreateConsultation(ctx context.Context, patientID uuid.UUID) (*Consultation, error)
	GetConsultation(ctx context.Context, id uuid.UUID) (*Consultation, error)
	ProcessPatientMessage(ctx context.Context, id uuid.UUID, text, checklistStep string) (*Turn, error)
	ProcessPatientAudio(ctx context.Context, id uuid.UUID, rec speech.Recording, checklistStep string) (*Turn, error)
	ResetSession(ctx context.Context, id uuid.UUID) error
	CloseSession(ctx context.Context, id uuid.UUID) (*Consultation, error)
	SynthesizeSpeech(ctx context.Context, text string) ([]byte, error)
	Catalog() intake.Catalog
}

type service struct {
	repo        Repository
	engines     *intake.Pool
	transcriber Transcriber
	synthesizer Synthesizer
	reportSvc   ReportService
	voiceID     string
	logger      *slog.Logger

	// reportTimeout bounds the detached report delivery.
	reportTimeout time.Duration
}

type Options struct {
	Transcriber Transcriber
	Synthesizer Synthesizer
	Reports     ReportService
	VoiceID     string
	Logger      *slog.Logger
}

func NewService(repo Repository, engines *intake.Pool, opts Options) Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:          repo,
		engines:       engines,
		transcriber:   opts.Transcriber,
		synthesizer:   opts.Synthesizer,
		reportSvc:     opts.Reports,
		voiceID:       opts.VoiceID,
		logger:        logger,
		reportTimeout: 2 * time.Minute,
	}
}

func (s *service) Catalog() intake.Catalog { return s.engines.Catalog() }

func (s *service) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	if s.synthesizer == nil {
		return nil, fmt.Errorf("speech synthesis is not configured")
	}
	return s.synthesizer.Synthesize(ctx, text, s.voiceID)
}

func (s *service) CreateConsultation(ctx context.Context, patientID uuid.UUID) (*Consultation, error) {
	c := &Consultation{
		ID:          uuid.New(),
		PatientID:   patientID,
		History:     []intake.Entry{},
		Asked:       []intake.Question{},
		CurrentMood: StateNeutral,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.engines.Reset(c.ID.String())
	s.logger.Info("consultation created", "consultation_id", c.ID, "patient_id", patientID)
	return c, nil
}

func (s *service) GetConsultation(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return s.repo.GetByID(ctx, id)
}

// ProcessPatientMessage records the utterance, asks the session engine for
// the next block of questions and records those as assistant turns. The whole
// turn runs while holding the session, and a failed save leaves the surfaced
// topic uncovered.
func (s *service) ProcessPatientMessage(ctx context.Context, id uuid.UUID, text, checklistStep string) (*Turn, error) {
	var (
		turn         *Turn
		completed    Consultation
		completedNow bool
	)
	err := s.engines.Do(id.String(), func(e *intake.Engine) error {
		c, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		c.History = append(c.History, intake.Entry{
			Speaker: intake.SpeakerPatient, Text: text, Timestamp: time.Now(),
		})

		var questions []intake.Question
		if !c.IsComplete {
			questions = e.GenerateQuestion(c.History, checklistStep)
		}

		if len(questions) > 0 {
			now := time.Now()
			for _, q := range questions {
				c.History = append(c.History, intake.Entry{
					Speaker: SpeakerAssistant, Text: q.Question, Timestamp: now,
				})
			}
			c.Asked = append(c.Asked, questions...)
			c.CurrentMood = moodFor(questions[0].Sentiment)

			if questions[0].Module == intake.TopicFinalConfirmation ||
				len(e.CoveredTopics()) == e.Catalog().Len() {
				c.IsComplete = true
				completedNow = true
			}
		}

		if err := s.repo.Save(ctx, c); err != nil {
			completedNow = false
			return err
		}

		if len(questions) > 0 {
			s.logger.Debug("topic surfaced",
				"consultation_id", id,
				"topic", questions[0].Module,
				"sentiment", questions[0].Sentiment,
				"questions", len(questions))
		}
		if questions == nil {
			questions = []intake.Question{}
		}
		if completedNow {
			completed = *c
		}
		turn = &Turn{Text: text, Questions: questions, Complete: c.IsComplete}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.engines.Drop(id.String())
		}
		return nil, err
	}

	if turn.Complete {
		s.engines.Drop(id.String())
	}
	if completedNow {
		s.logger.Info("consultation complete", "consultation_id", id, "asked", len(completed.Asked))
		go s.sendReport(completed)
	}
	return turn, nil
}

func (s *service) ProcessPatientAudio(ctx context.Context, id uuid.UUID, rec speech.Recording, checklistStep string) (*Turn, error) {
	if s.transcriber == nil {
		return nil, fmt.Errorf("speech transcription is not configured")
	}
	heard, err := s.transcriber.Transcribe(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	s.logger.Debug("audio transcribed",
		"consultation_id", id,
		"file", rec.FileName,
		"language", heard.Language,
		"chars", len(heard.Text))

	text := strings.TrimSpace(heard.Text)
	if text == "" {
		c, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &Turn{Questions: []intake.Question{}, Complete: c.IsComplete}, nil
	}
	return s.ProcessPatientMessage(ctx, id, text, checklistStep)
}

// ResetSession makes every topic eligible again. The transcript is kept. A
// completed consultation stays closed.
func (s *service) ResetSession(ctx context.Context, id uuid.UUID) error {
	var complete bool
	err := s.engines.Do(id.String(), func(e *intake.Engine) error {
		c, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		complete = c.IsComplete
		if !complete {
			e.ResetSession()
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) || complete {
		s.engines.Drop(id.String())
	}
	if err != nil || complete {
		return err
	}
	s.logger.Info("session reset", "consultation_id", id)
	return nil
}

// CloseSession ends the interview early: the consultation is marked complete,
// the doctor report is queued once and the session engine is released.
func (s *service) CloseSession(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	var (
		out          *Consultation
		completedNow bool
	)
	err := s.engines.Do(id.String(), func(*intake.Engine) error {
		c, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !c.IsComplete {
			c.IsComplete = true
			if err := s.repo.Save(ctx, c); err != nil {
				return err
			}
			completedNow = true
		}
		out = c
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.engines.Drop(id.String())
		}
		return nil, err
	}

	s.engines.Drop(id.String())
	if completedNow {
		s.logger.Info("consultation closed", "consultation_id", id, "asked", len(out.Asked))
		go s.sendReport(*out)
	}
	return out, nil
}

func (s *service) sendReport(c Consultation) {
	if s.reportSvc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.reportTimeout)
	defer cancel()

	if err := s.reportSvc.SendDoctorReport(ctx, c); err != nil {
		s.logger.Error("failed to send report", "consultation_id", c.ID, "error", err)
		return
	}
	s.logger.Info("report sent", "consultation_id", c.ID)
}
