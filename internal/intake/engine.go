package intake

import (
	"strings"
	"time"
)

const SpeakerPatient = "Patient"

// Entry is one line of the conversation transcript.
type Entry struct {
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Question is a single follow-up question surfaced to the patient.
type Question struct {
	Question  string `json:"question"`
	Module    string `json:"module"`
	Sentiment Tone   `json:"sentiment"`
}

// Engine picks the next block of questions for one interview session.
// It is not safe for concurrent use; see Pool.
type Engine struct {
	catalog Catalog
	index   Index
	covered map[string]struct{}
}

func NewEngine(c Catalog) *Engine {
	return newEngine(c, BuildIndex(c))
}

func newEngine(c Catalog, idx Index) *Engine {
	return &Engine{
		catalog: c,
		index:   idx,
		covered: make(map[string]struct{}),
	}
}

// GenerateQuestion returns every question of the first uncovered topic whose
// keyword appears in the latest patient utterance, or nil when nothing
// qualifies. checklistStep is accepted but does not influence the result.
func (e *Engine) GenerateQuestion(history []Entry, checklistStep string) []Question {
	text := lastPatientText(history)
	if text == "" {
		return nil
	}

	tone := DetectTone(text)
	for _, tok := range Tokenize(text) {
		topic, ok := e.index.Lookup(tok)
		if !ok {
			continue
		}
		if _, done := e.covered[topic]; done {
			continue
		}
		e.covered[topic] = struct{}{}

		qs := e.catalog.Questions(topic)
		out := make([]Question, len(qs))
		for i, q := range qs {
			out[i] = Question{Question: q, Module: topic, Sentiment: tone}
		}
		return out
	}
	return nil
}

// ResetSession forgets every covered topic.
func (e *Engine) ResetSession() {
	clear(e.covered)
}

func (e *Engine) Covered(topic string) bool {
	_, ok := e.covered[topic]
	return ok
}

// CoveredTopics lists covered topics in catalog order.
func (e *Engine) CoveredTopics() []string {
	var out []string
	for _, name := range e.catalog.Names() {
		if e.Covered(name) {
			out = append(out, name)
		}
	}
	return out
}

func (e *Engine) Catalog() Catalog { return e.catalog }

func (e *Engine) Index() Index { return e.index }

func lastPatientText(history []Entry) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Speaker == SpeakerPatient {
			return strings.ToLower(history[i].Text)
		}
	}
	return ""
}
