package consultation

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"medical-intake/internal/intake"
)

var ErrNotFound = errors.New("consultation not found")

type EmotionalState string

const (
	StateNeutral EmotionalState = "neutral"
	StateAnxious EmotionalState = "anxious"
)

const SpeakerAssistant = "Assistant"

// moodFor maps the tone of the latest patient utterance onto the
// consultation's emotional state.
func moodFor(t intake.Tone) EmotionalState {
	if t == intake.ToneDistress {
		return StateAnxious
	}
	return StateNeutral
}

// Consultation is one intake interview.
type Consultation struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PatientID uuid.UUID `json:"patient_id" db:"patient_id"`

	History []intake.Entry `json:"history" db:"history"`

	// Questions surfaced so far, in the order they were asked.
	Asked []intake.Question `json:"asked" db:"asked"`

	CurrentMood EmotionalState `json:"mood" db:"mood"`

	IsComplete bool      `json:"is_complete" db:"is_complete"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// AskedByTopic groups asked questions by topic, keeping first-asked order.
func (c *Consultation) AskedByTopic() ([]string, map[string][]string) {
	var order []string
	grouped := make(map[string][]string)
	for _, q := range c.Asked {
		if _, ok := grouped[q.Module]; !ok {
			order = append(order, q.Module)
		}
		grouped[q.Module] = append(grouped[q.Module], q.Question)
	}
	return order, grouped
}
