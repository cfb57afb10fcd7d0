package entity

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyProfile_UnmarshalDefaults(t *testing.T) {
	tests := map[string]string{
		"minimal":        `{"company_name":"X"}`,
		"explicit nulls": `{"company_name":"X","overview":null,"tech_stack":null,"recent_news_signals":null,"key_contacts":null}`,
	}

	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			var p CompanyProfile
			require.NoError(t, json.Unmarshal([]byte(payload), &p))

			assert.Equal(t, "X", p.CompanyName)
			assert.Equal(t, CompanyOverview{}, p.Overview)
			assert.NotNil(t, p.TechStack)
			assert.Empty(t, p.TechStack)
			assert.NotNil(t, p.RecentNewsSignals)
			assert.Empty(t, p.RecentNewsSignals)
			assert.NotNil(t, p.KeyContacts)
			assert.Empty(t, p.KeyContacts)
		})
	}
}

func TestCompanyProfile_MarshalEmitsEmptyCollections(t *testing.T) {
	p := NewCompanyProfile("X")
	data, err := json.Marshal(p)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"tech_stack":[]`)
	assert.Contains(t, out, `"recent_news_signals":[]`)
	assert.Contains(t, out, `"key_contacts":[]`)
	assert.Contains(t, out, `"industry":null`)
}

func TestCompanyProfile_ExtendedContactFields(t *testing.T) {
	var p CompanyProfile
	payload := `{"company_name":"Acme","key_contacts":[{"name":"Jane","linkedin":"https://linkedin.com/in/jane","email":"jane@acme.io"},{"name":"Joe"}]}`
	require.NoError(t, json.Unmarshal([]byte(payload), &p))
	require.NoError(t, p.Validate())

	require.Len(t, p.KeyContacts, 2)
	require.NotNil(t, p.KeyContacts[0].LinkedIn)
	assert.Equal(t, "jane@acme.io", *p.KeyContacts[0].Email)
	assert.Nil(t, p.KeyContacts[0].Phone)
	assert.Nil(t, p.KeyContacts[1].Title)
}

func TestCompanyProfile_Validate(t *testing.T) {
	tests := map[string]struct {
		payload string
		field   string
	}{
		"missing company name": {payload: `{"tech_stack":["Go"]}`, field: "company_name"},
		"news without url":     {payload: `{"company_name":"X","recent_news_signals":[{"title":"t"}]}`, field: "recent_news_signals[0].url"},
		"contact without name": {payload: `{"company_name":"X","key_contacts":[{"title":"CTO"}]}`, field: "key_contacts[0].name"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var p CompanyProfile
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &p))
			err := p.Validate()
			require.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), tt.field), err.Error())
		})
	}
}

func TestConfidence(t *testing.T) {
	var pp PainPoint
	require.NoError(t, json.Unmarshal([]byte(`{"title":"t","description":"d","confidence":"high"}`), &pp))
	assert.Equal(t, ConfidenceHigh, pp.Confidence)
	assert.Nil(t, pp.Source)

	err := json.Unmarshal([]byte(`{"title":"t","description":"d","confidence":"certain"}`), &pp)
	assert.Error(t, err)
}

func TestNewProfileRecord(t *testing.T) {
	owner := uuid.New()
	industry := "Software"
	profile := NewCompanyProfile("Acme")
	profile.Overview.Industry = &industry
	profile.TechStack = []string{"Go"}
	summary := "Acme builds software."
	intel := CompanyIntelligence{
		ExecutiveSummary: &summary,
		PainPoints:       []PainPoint{},
		OpeningLines:     map[string]OpeningLine{},
		DataSources:      []string{},
	}

	rec := NewProfileRecord(owner, profile, intel)
	assert.Equal(t, owner, rec.UserID)
	assert.Equal(t, "Acme", rec.CompanyName)
	require.NotNil(t, rec.Overview)
	assert.Equal(t, "Software", *rec.Overview.Industry)
	assert.Equal(t, []string{"Go"}, rec.TechStack)
	assert.Equal(t, &summary, rec.ExecutiveSummary)
	assert.Equal(t, uuid.Nil, rec.ID)
}
