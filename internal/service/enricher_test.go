package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/octobees/sift-profiler/internal/entity"
	"github.com/octobees/sift-profiler/internal/llm"
)

type stubLLM struct {
	response string
	err      error
	requests []llm.Request
}

func (s *stubLLM) Generate(ctx context.Context, req llm.Request) (string, error) {
	s.requests = append(s.requests, req)
	return s.response, s.err
}

func acmeProfile() entity.CompanyProfile {
	p := entity.NewCompanyProfile("Acme")
	p.Overview.Industry = ptr("Software")
	p.TechStack = []string{"Go"}
	p.RecentNewsSignals = []entity.NewsSignal{{URL: "https://x.com/a"}, {URL: "https://x.com/b"}, {URL: "https://x.com/a"}}
	p.KeyContacts = []entity.KeyContact{{Name: "Jane Doe"}}
	return p
}

func fixedNow(e *IntelligenceEnricher) time.Time {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }
	return now
}

func TestIntelligenceEnricher_Enrich(t *testing.T) {
	client := &stubLLM{response: "```json\n" + `{
		"executive_summary": "Acme builds developer tools.",
		"pain_points": [
			{"title": "Scale", "description": "d", "confidence": "high", "source": "news"},
			{"title": "Cost", "description": "d", "confidence": "Medium", "source": null},
			{"title": "Hiring", "description": "d", "confidence": "Low", "source": "jobs"},
			{"title": "Security", "description": "d", "confidence": "Low", "source": "jobs"},
			{"title": "Extra", "description": "d", "confidence": "Low", "source": "jobs"}
		],
		"opening_lines": {
			"devops_manager": {"role": "For DevOps", "message": "Hi", "context": "c"},
			"head_of_engineering": {"role": "For CTO", "message": "Hello", "context": "c"},
			"ceo": {"role": "For CEO", "message": "Hey", "context": "c"}
		}
	}` + "\n```"}
	e := NewIntelligenceEnricher(client, 0.7, zap.NewNop())
	now := fixedNow(e)

	intel := e.Enrich(context.Background(), acmeProfile())

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.True(t, req.JSON)
	assert.Equal(t, float32(0.7), req.Temperature)
	assert.Contains(t, req.Prompt, "COMPANY: Acme")
	assert.Contains(t, req.Prompt, "- Industry: Software")
	assert.Contains(t, req.Prompt, "- Location: N/A")

	require.NotNil(t, intel.ExecutiveSummary)
	assert.Equal(t, "Acme builds developer tools.", *intel.ExecutiveSummary)
	require.Len(t, intel.PainPoints, 4)
	assert.Equal(t, entity.ConfidenceHigh, intel.PainPoints[0].Confidence)
	assert.Nil(t, intel.PainPoints[1].Source)
	assert.Len(t, intel.OpeningLines, 2)
	assert.Contains(t, intel.OpeningLines, entity.RoleDevOpsManager)
	assert.Contains(t, intel.OpeningLines, entity.RoleHeadOfEngineering)

	assert.Equal(t, []string{"https://x.com/a", "https://x.com/b"}, intel.DataSources)
	assert.Equal(t, "Software", *intel.Industry)
	assert.Equal(t, []string{"Go"}, intel.TechStack)
	require.NotNil(t, intel.LastAnalyzedAt)
	assert.Equal(t, now, *intel.LastAnalyzedAt)
}

func TestIntelligenceEnricher_Degrades(t *testing.T) {
	tests := map[string]struct {
		client   llm.Client
		industry *string
		summary  string
	}{
		"generation error": {
			client:   &stubLLM{err: errors.New("quota exceeded")},
			industry: ptr("Software"),
			summary:  "Acme is a company in the Software industry.",
		},
		"no json": {
			client:  &stubLLM{response: "I cannot help with that"},
			summary: "Acme is a company in the technology industry.",
		},
		"invalid confidence": {
			client:  &stubLLM{response: `{"executive_summary":"x","pain_points":[{"title":"t","description":"d","confidence":"Certain"}]}`},
			summary: "Acme is a company in the technology industry.",
		},
		"nil client": {
			summary: "Acme is a company in the technology industry.",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			e := NewIntelligenceEnricher(tt.client, 0.7, zap.New(core))

			profile := acmeProfile()
			profile.Overview.Industry = tt.industry
			intel := e.Enrich(context.Background(), profile)

			require.NotNil(t, intel.ExecutiveSummary)
			assert.Equal(t, tt.summary, *intel.ExecutiveSummary)
			assert.NotNil(t, intel.PainPoints)
			assert.Empty(t, intel.PainPoints)
			assert.NotNil(t, intel.OpeningLines)
			assert.Empty(t, intel.OpeningLines)
			assert.Equal(t, []string{"https://x.com/a", "https://x.com/b"}, intel.DataSources)
			assert.Equal(t, 1, logs.FilterMessage("enrichment degraded").Len())
		})
	}
}

func TestIntelligenceEnricher_EmptySummaryGetsFallback(t *testing.T) {
	e := NewIntelligenceEnricher(&stubLLM{response: `{"executive_summary":"  ","pain_points":[],"opening_lines":{}}`}, 0.7, nil)

	intel := e.Enrich(context.Background(), acmeProfile())
	require.NotNil(t, intel.ExecutiveSummary)
	assert.Equal(t, "Acme is a company in the Software industry.", *intel.ExecutiveSummary)
}

func TestBuildEnrichmentContext_Bounded(t *testing.T) {
	p := entity.NewCompanyProfile("Acme")
	for i := 0; i < 30; i++ {
		p.TechStack = append(p.TechStack, "tech-"+string(rune('a'+i%26)))
		p.RecentNewsSignals = append(p.RecentNewsSignals, entity.NewsSignal{URL: "https://news.test/" + string(rune('a'+i%26)), Title: ptr("A very long headline about Acme doing things again and again")})
		p.KeyContacts = append(p.KeyContacts, entity.KeyContact{Name: "Person", Title: ptr("Engineer")})
	}

	ctx := buildEnrichmentContext(p)
	assert.LessOrEqual(t, len(ctx), maxContextBytes)
	assert.Contains(t, ctx, "tech-j")
	assert.NotContains(t, ctx, "tech-k")
	assert.NotContains(t, ctx, "https://news.test/f")

	empty := buildEnrichmentContext(entity.NewCompanyProfile("Solo"))
	assert.Contains(t, empty, "No tech stack data available")
	assert.Contains(t, empty, "No recent news available")
	assert.Contains(t, empty, "No contacts available")
}

func TestTruncateUTF8(t *testing.T) {
	assert.Equal(t, "abc", truncateUTF8("abc", 10))
	assert.Equal(t, "h", truncateUTF8("hé", 2))
}

func TestIntelligenceEnricher_PromptUsesNormalizedView(t *testing.T) {
	client := &stubLLM{err: errors.New("offline")}
	e := NewIntelligenceEnricher(client, 0.7, zap.NewNop()).WithSanitizer(NewProfileSanitizer("US"))

	p := acmeProfile()
	p.TechStack = []string{"Go", "GO", " "}
	p.RecentNewsSignals = []entity.NewsSignal{{URL: "https://news.test/a?utm_source=agent"}}
	p.KeyContacts = []entity.KeyContact{{Name: "Jane Doe", Phone: ptr("(650) 253-0000")}}

	intel := e.Enrich(context.Background(), p)

	require.Len(t, client.requests, 1)
	prompt := client.requests[0].Prompt
	assert.Contains(t, prompt, "TECH STACK:\nGo\n")
	assert.NotContains(t, prompt, "utm_source")
	assert.Contains(t, prompt, "+16502530000")

	assert.Equal(t, []string{"Go", "GO", " "}, intel.TechStack)
	assert.Equal(t, []string{"https://news.test/a?utm_source=agent"}, intel.DataSources)
	assert.Equal(t, "(650) 253-0000", *intel.KeyContacts[0].Phone)
}
