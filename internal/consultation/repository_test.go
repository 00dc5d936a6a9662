//go:build integration

package consultation

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"medical-intake/internal/intake"
	"medical-intake/migrations"
)

var testDB *sql.DB

// TestMain starts a Postgres container and applies the schema once for all
// repository tests.
func TestMain(m *testing.M) {
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "intake",
				"POSTGRES_PASSWORD": "intake",
				"POSTGRES_DB":       "intake",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start Postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://intake:intake@%s:%s/intake?sslmode=disable", host, port.Port())

	if err := migrations.Up(dsn); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}
	// second run must be a no-op
	if err := migrations.Up(dsn); err != nil {
		log.Fatalf("Failed to re-run migrations: %v", err)
	}

	testDB, err = sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	code := m.Run()

	_ = testDB.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(testDB)

	c := &Consultation{
		ID:          uuid.New(),
		PatientID:   uuid.New(),
		CurrentMood: StateNeutral,
		History: []intake.Entry{
			{Speaker: intake.SpeakerPatient, Text: "I smoke tobacco", Timestamp: time.Now().UTC().Truncate(time.Millisecond)},
		},
		Asked: []intake.Question{
			{Question: "Has anyone used tobacco products in the past year?", Module: intake.TopicLifestyle, Sentiment: intake.ToneNeutral},
		},
	}
	require.NoError(t, repo.Save(ctx, c))
	assert.False(t, c.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.PatientID, got.PatientID)
	assert.Equal(t, StateNeutral, got.CurrentMood)
	require.Len(t, got.History, 1)
	assert.Equal(t, "I smoke tobacco", got.History[0].Text)
	assert.True(t, c.History[0].Timestamp.Equal(got.History[0].Timestamp))
	assert.Equal(t, c.Asked, got.Asked)
}

func TestRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(testDB)

	c := &Consultation{ID: uuid.New(), PatientID: uuid.New(), CurrentMood: StateNeutral}
	require.NoError(t, repo.Save(ctx, c))

	c.CurrentMood = StateAnxious
	c.IsComplete = true
	c.History = append(c.History, intake.Entry{Speaker: intake.SpeakerPatient, Text: "scared"})
	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, StateAnxious, got.CurrentMood)
	assert.True(t, got.IsComplete)
	assert.Len(t, got.History, 1)
}

func TestRepository_NotFound(t *testing.T) {
	_, err := NewRepository(testDB).GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
