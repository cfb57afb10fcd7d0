package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/sift-profiler/internal/entity"
)

func strPtr(s string) *string { return &s }

func sampleRecord() *entity.ProfileRecord {
	analyzed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &entity.ProfileRecord{
		UserID:      uuid.New(),
		CompanyName: "Acme",
		Overview:    &entity.CompanyOverview{Industry: strPtr("Software")},
		TechStack:   []string{"Go", "Postgres"},
		RecentNewsSignals: []entity.NewsSignal{
			{Title: strPtr("Acme raises Series B"), URL: "https://news.test/a", SignalType: strPtr(entity.SignalFunding)},
		},
		KeyContacts:      []entity.KeyContact{{Name: "Jane Doe", Title: strPtr("CTO"), Email: strPtr("jane@acme.test")}},
		ExecutiveSummary: strPtr("Acme builds tools."),
		PainPoints: []entity.PainPoint{
			{Title: "Scaling", Description: "Growing infra", Confidence: entity.ConfidenceHigh, Source: strPtr("Series B")},
		},
		OpeningLines: map[string]entity.OpeningLine{
			entity.RoleDevOpsManager: {Role: entity.RoleDevOpsManager, Message: "Hi", Context: "funding"},
		},
		DataSources:    []string{"https://news.test/a"},
		LastAnalyzedAt: &analyzed,
	}
}

func TestProfileCodec_RoundTrip(t *testing.T) {
	rec := sampleRecord()

	cols, err := encodeProfileColumns(rec)
	require.NoError(t, err)
	assert.Equal(t, sql.NullString{String: `["Go","Postgres"]`, Valid: true}, cols.TechStack)
	assert.Equal(t, sql.NullString{String: "Acme builds tools.", Valid: true}, cols.ExecutiveSummary)

	var decoded entity.ProfileRecord
	require.NoError(t, decodeProfileColumns(cols, &decoded))
	assert.Equal(t, rec.Overview, decoded.Overview)
	assert.Equal(t, rec.TechStack, decoded.TechStack)
	assert.Equal(t, rec.RecentNewsSignals, decoded.RecentNewsSignals)
	assert.Equal(t, rec.KeyContacts, decoded.KeyContacts)
	assert.Equal(t, rec.ExecutiveSummary, decoded.ExecutiveSummary)
	assert.Equal(t, rec.PainPoints, decoded.PainPoints)
	assert.Equal(t, rec.OpeningLines, decoded.OpeningLines)
	assert.Equal(t, rec.DataSources, decoded.DataSources)
}

func TestProfileCodec_NullVersusEmpty(t *testing.T) {
	rec := &entity.ProfileRecord{
		CompanyName:  "Acme",
		TechStack:    []string{},
		KeyContacts:  []entity.KeyContact{},
		PainPoints:   nil,
		OpeningLines: map[string]entity.OpeningLine{},
	}

	cols, err := encodeProfileColumns(rec)
	require.NoError(t, err)
	assert.Equal(t, sql.NullString{String: "[]", Valid: true}, cols.TechStack)
	assert.Equal(t, sql.NullString{String: "[]", Valid: true}, cols.KeyContacts)
	assert.Equal(t, sql.NullString{String: "{}", Valid: true}, cols.OpeningLines)
	assert.False(t, cols.Overview.Valid)
	assert.False(t, cols.PainPoints.Valid)
	assert.False(t, cols.RecentNewsSignals.Valid)
	assert.False(t, cols.ExecutiveSummary.Valid)

	var decoded entity.ProfileRecord
	require.NoError(t, decodeProfileColumns(cols, &decoded))
	assert.NotNil(t, decoded.TechStack)
	assert.Empty(t, decoded.TechStack)
	assert.NotNil(t, decoded.KeyContacts)
	assert.NotNil(t, decoded.OpeningLines)
	assert.Nil(t, decoded.Overview)
	assert.Nil(t, decoded.PainPoints)
	assert.Nil(t, decoded.RecentNewsSignals)
	assert.Nil(t, decoded.ExecutiveSummary)
}

func TestProfileCodec_ExtendedContactFields(t *testing.T) {
	cols := profileColumns{KeyContacts: sql.NullString{String: `[{"name":"Jane","title":null}]`, Valid: true}}

	var decoded entity.ProfileRecord
	require.NoError(t, decodeProfileColumns(cols, &decoded))
	require.Len(t, decoded.KeyContacts, 1)
	assert.Nil(t, decoded.KeyContacts[0].LinkedIn)
	assert.Nil(t, decoded.KeyContacts[0].Phone)

	rec := &entity.ProfileRecord{KeyContacts: decoded.KeyContacts}
	encoded, err := encodeProfileColumns(rec)
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Jane","title":null}]`, encoded.KeyContacts.String)
}

func TestProfileCodec_CorruptColumn(t *testing.T) {
	cols := profileColumns{TechStack: sql.NullString{String: "not json", Valid: true}}

	var decoded entity.ProfileRecord
	err := decodeProfileColumns(cols, &decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tech_stack")
}
