package intake_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medical-intake/internal/intake"
)

func patient(text string) intake.Entry {
	return intake.Entry{Speaker: intake.SpeakerPatient, Text: text}
}

func TestGenerateQuestion_DiagnosedAndScared(t *testing.T) {
	e := intake.NewEngine(intake.DefaultCatalog())

	got := e.GenerateQuestion([]intake.Entry{
		patient("I have been diagnosed with diabetes and I am scared"),
	}, "")

	want := intake.DefaultCatalog().Questions(intake.TopicMedicalHistory)
	require.Len(t, got, 9)
	for i, q := range got {
		assert.Equal(t, want[i], q.Question)
		assert.Equal(t, intake.TopicMedicalHistory, q.Module)
		assert.Equal(t, intake.ToneDistress, q.Sentiment)
	}
	assert.True(t, e.Covered(intake.TopicMedicalHistory))
}

func TestGenerateQuestion_CoveredTopicNotRepeated(t *testing.T) {
	e := intake.NewEngine(intake.DefaultCatalog())

	first := e.GenerateQuestion([]intake.Entry{
		patient("I have been diagnosed with diabetes and I am scared"),
	}, "")
	require.NotEmpty(t, first)

	second := e.GenerateQuestion([]intake.Entry{
		patient("any more diagnosed conditions?"),
	}, "")
	assert.Empty(t, second)
}

func TestGenerateQuestion_NoPatientEntry(t *testing.T) {
	tests := []struct {
		name    string
		history []intake.Entry
	}{
		{"nil history", nil},
		{"empty history", []intake.Entry{}},
		{"doctor only", []intake.Entry{{Speaker: "Doctor", Text: "How are you feeling?"}}},
		{"lowercase speaker", []intake.Entry{{Speaker: "patient", Text: "I smoke tobacco"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := intake.NewEngine(intake.DefaultCatalog())
			assert.Empty(t, e.GenerateQuestion(tt.history, "intro"))
			assert.Empty(t, e.CoveredTopics())
		})
	}
}

func TestGenerateQuestion_MissingTextIsEmpty(t *testing.T) {
	e := intake.NewEngine(intake.DefaultCatalog())

	got := e.GenerateQuestion([]intake.Entry{{Speaker: intake.SpeakerPatient}}, "")
	assert.Empty(t, got)
	assert.Empty(t, e.CoveredTopics())
}

func TestGenerateQuestion_UsesLatestPatientEntry(t *testing.T) {
	e := intake.NewEngine(intake.DefaultCatalog())

	got := e.GenerateQuestion([]intake.Entry{
		patient("I smoke tobacco"),
		{Speaker: "Assistant", Text: "Is anyone currently pregnant?"},
		patient("My wife is pregnant"),
		{Speaker: "Assistant", Text: "Thank you."},
	}, "")

	require.NotEmpty(t, got)
	assert.Equal(t, intake.TopicFemaleHealth, got[0].Module)
	assert.False(t, e.Covered(intake.TopicLifestyle))
}

func TestGenerateQuestion_FirstUncoveredTokenWins(t *testing.T) {
	e := intake.NewEngine(intake.DefaultCatalog())

	got := e.GenerateQuestion([]intake.Entry{patient("I smoke tobacco and drink alcohol")}, "")
	require.NotEmpty(t, got)
	assert.Equal(t, intake.TopicLifestyle, got[0].Module)

	// lifestyle is covered, so scanning moves on to the next topic's keyword
	got = e.GenerateQuestion([]intake.Entry{patient("tobacco, alcohol and some fatigue")}, "")
	require.NotEmpty(t, got)
	assert.Equal(t, intake.TopicRecentHealthStatus, got[0].Module)
	assert.Len(t, got, 2)
}

func TestGenerateQuestion_KeywordCollisionFavoursEarlierTopic(t *testing.T) {
	e := intake.NewEngine(intake.DefaultCatalog())

	got := e.GenerateQuestion([]intake.Entry{patient("hospitalization")}, "")
	require.NotEmpty(t, got)
	assert.Equal(t, intake.TopicMedicalHistory, got[0].Module)

	assert.Empty(t, e.GenerateQuestion([]intake.Entry{patient("hospitalization again")}, ""))

	got = e.GenerateQuestion([]intake.Entry{patient("I needed surgery")}, "")
	require.NotEmpty(t, got)
	assert.Equal(t, intake.TopicHospitalization, got[0].Module)
}

func TestGenerateQuestion_NeutralTone(t *testing.T) {
	e := intake.NewEngine(intake.DefaultCatalog())

	got := e.GenerateQuestion([]intake.Entry{patient("Do I need insurance claims history?")}, "")
	require.Len(t, got, 3)
	for _, q := range got {
		assert.Equal(t, intake.TopicInsuranceHistory, q.Module)
		assert.Equal(t, intake.ToneNeutral, q.Sentiment)
	}
}

func TestGenerateQuestion_NoKeywordLeavesStateUnchanged(t *testing.T) {
	e := intake.NewEngine(intake.DefaultCatalog())

	assert.Empty(t, e.GenerateQuestion([]intake.Entry{patient("ok fine")}, ""))
	assert.Empty(t, e.CoveredTopics())
}

func TestGenerateQuestion_ChecklistStepIsInert(t *testing.T) {
	history := []intake.Entry{patient("I am worried my weight changed")}

	a := intake.NewEngine(intake.DefaultCatalog()).GenerateQuestion(history, "")
	b := intake.NewEngine(intake.DefaultCatalog()).GenerateQuestion(history, "medical_history")
	assert.Equal(t, a, b)
	require.NotEmpty(t, a)
	assert.Equal(t, intake.TopicBasicInformation, a[0].Module)
	assert.Equal(t, intake.ToneDistress, a[0].Sentiment)
}

func TestResetSession(t *testing.T) {
	e := intake.NewEngine(intake.DefaultCatalog())
	history := []intake.Entry{patient("I smoke tobacco")}

	require.NotEmpty(t, e.GenerateQuestion(history, ""))
	require.Empty(t, e.GenerateQuestion(history, ""))

	e.ResetSession()
	assert.Empty(t, e.CoveredTopics())
	assert.NotEmpty(t, e.GenerateQuestion(history, ""))

	e.ResetSession()
	e.ResetSession()
	assert.Empty(t, e.CoveredTopics())
}

func TestEveryTopicSurfacesAtMostOnce(t *testing.T) {
	c := intake.DefaultCatalog()
	e := intake.NewEngine(c)

	utterances := []string{
		"name", "tobacco", "diagnosed", "fatigue", "surgery",
		"pregnant", "insurance", "anything", "name tobacco diagnosed fatigue",
		"surgery pregnant insurance anything",
	}
	seen := map[string]int{}
	for _, u := range utterances {
		got := e.GenerateQuestion([]intake.Entry{patient(u)}, "")
		if len(got) > 0 {
			seen[got[0].Module]++
		}
	}

	assert.Len(t, seen, c.Len())
	for topic, n := range seen {
		assert.Equal(t, 1, n, topic)
	}
	assert.Equal(t, c.Names(), e.CoveredTopics())
}
