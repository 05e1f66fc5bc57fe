package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Laisky/openrouter-mcp/catalog"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migrateDB(db))
	return db
}

func sampleSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		FetchedAt: time.Now().Truncate(time.Millisecond),
		Records: []catalog.ModelRecord{
			{
				ID:            "openai/gpt-4o",
				Provider:      "openai",
				Model:         "gpt-4o",
				CanonicalSlug: "openai/gpt-4o",
				Name:          "OpenAI: GPT-4o",
				Created:       1715558400,
				Description:   "flagship multimodal model",
				ContextLength: 128000,
				Architecture: catalog.Architecture{
					Modality:         "text+image->text",
					Tokenizer:        "GPT",
					InputModalities:  []string{"text", "image"},
					OutputModalities: []string{"text"},
				},
				Pricing: catalog.Pricing{Prompt: 0.0000025, Completion: 0.00001, Image: 0.003613},
				TopProvider: &catalog.TopProvider{
					ContextLength:       128000,
					MaxCompletionTokens: 16384,
					IsModerated:         true,
				},
				PerRequestLimits:    map[string]string{"prompt_tokens": "120000"},
				SupportedParameters: []string{"temperature", "top_p"},
			},
			{
				ID:            "mistralai/mistral-7b-instruct:free",
				Provider:      "mistralai",
				Model:         "mistral-7b-instruct:free",
				Name:          "Mistral 7B (free)",
				ContextLength: 4000,
			},
		},
	}
}

func TestSaveAndLoadSnapshotRoundTrip(t *testing.T) {
	db := newTestDB(t)
	snap := sampleSnapshot()

	require.NoError(t, SaveSnapshot(db, snap))

	loaded, err := LoadSnapshot(db)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, snap.FetchedAt.UnixMilli(), loaded.FetchedAt.UnixMilli())
	require.Len(t, loaded.Records, 2)

	// Rows come back ordered by id; locate by identifier.
	byID := map[string]catalog.ModelRecord{}
	for _, rec := range loaded.Records {
		byID[rec.ID] = rec
	}
	gpt := byID["openai/gpt-4o"]
	assert.Equal(t, snap.Records[0], gpt)

	free := byID["mistralai/mistral-7b-instruct:free"]
	assert.Nil(t, free.TopProvider)
	assert.Empty(t, free.PerRequestLimits)
	assert.Empty(t, free.SupportedParameters)
}

func TestSaveSnapshotReplacesPreviousRows(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, SaveSnapshot(db, sampleSnapshot()))

	replacement := &catalog.Snapshot{
		FetchedAt: time.Now(),
		Records:   []catalog.ModelRecord{{ID: "anthropic/claude-3.5-sonnet", Provider: "anthropic"}},
	}
	require.NoError(t, SaveSnapshot(db, replacement))

	loaded, err := LoadSnapshot(db)
	require.NoError(t, err)
	require.Len(t, loaded.Records, 1, "old rows must be fully replaced")
	assert.Equal(t, "anthropic/claude-3.5-sonnet", loaded.Records[0].ID)
}

func TestSaveSnapshotRejectsEmpty(t *testing.T) {
	db := newTestDB(t)
	require.Error(t, SaveSnapshot(db, &catalog.Snapshot{}))
	require.Error(t, SaveSnapshot(db, nil))
}

func TestLoadSnapshotWithoutData(t *testing.T) {
	db := newTestDB(t)

	loaded, err := LoadSnapshot(db)
	require.NoError(t, err, "missing warm-start data is not an error")
	assert.Nil(t, loaded)
}
