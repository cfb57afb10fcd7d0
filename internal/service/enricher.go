package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/octobees/sift-profiler/internal/entity"
	"github.com/octobees/sift-profiler/internal/llm"
)

const (
	maxContextTech     = 10
	maxContextNews     = 5
	maxContextContacts = 5
	maxContextBytes    = 6000
	maxPainPoints      = 4
	enrichMaxTokens    = 2048
)

// Enricher overlays generated insights on a completed profile.
type Enricher interface {
	Enrich(ctx context.Context, profile entity.CompanyProfile) entity.CompanyIntelligence
}

// IntelligenceEnricher asks a generative model for an executive summary, pain
// points and opening lines. Failures degrade to a fallback summary.
type IntelligenceEnricher struct {
	client      llm.Client
	temperature float32
	logger      *zap.Logger
	normalizer  *ProfileSanitizer
	now         func() time.Time
}

// NewIntelligenceEnricher wires an enricher. A nil client always degrades.
func NewIntelligenceEnricher(client llm.Client, temperature float32, logger *zap.Logger) *IntelligenceEnricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntelligenceEnricher{
		client:      client,
		temperature: temperature,
		logger:      logger.Named("enricher"),
		normalizer:  NewProfileSanitizer(defaultPhoneRegion),
		now:         time.Now,
	}
}

// WithSanitizer sets the sanitizer whose normalized view feeds the prompt.
func (e *IntelligenceEnricher) WithSanitizer(s *ProfileSanitizer) *IntelligenceEnricher {
	if s != nil {
		e.normalizer = s
	}
	return e
}

type generatedIntelligence struct {
	ExecutiveSummary string                        `json:"executive_summary"`
	PainPoints       []entity.PainPoint            `json:"pain_points"`
	OpeningLines     map[string]entity.OpeningLine `json:"opening_lines"`
}

// Enrich never fails. Generation errors and undecodable output produce the
// fallback summary with no pain points or opening lines.
func (e *IntelligenceEnricher) Enrich(ctx context.Context, profile entity.CompanyProfile) entity.CompanyIntelligence {
	analyzedAt := e.now().UTC()
	intel := entity.CompanyIntelligence{
		CompanyName:       profile.CompanyName,
		Industry:          profile.Overview.Industry,
		Location:          profile.Overview.Location,
		EmployeeCount:     profile.Overview.EmployeeCount,
		PainPoints:        []entity.PainPoint{},
		OpeningLines:      map[string]entity.OpeningLine{},
		TechStack:         nonNilStrings(profile.TechStack),
		RecentNewsSignals: profile.RecentNewsSignals,
		KeyContacts:       profile.KeyContacts,
		DataSources:       dataSources(profile.RecentNewsSignals),
		LastAnalyzedAt:    &analyzedAt,
	}
	if intel.RecentNewsSignals == nil {
		intel.RecentNewsSignals = []entity.NewsSignal{}
	}
	if intel.KeyContacts == nil {
		intel.KeyContacts = []entity.KeyContact{}
	}

	generated, err := e.generate(ctx, profile)
	if err != nil {
		e.logger.Warn("enrichment degraded", zap.String("company", profile.CompanyName), zap.Error(err))
		summary := fallbackSummary(profile)
		intel.ExecutiveSummary = &summary
		return intel
	}

	summary := strings.TrimSpace(generated.ExecutiveSummary)
	if summary == "" {
		summary = fallbackSummary(profile)
	}
	intel.ExecutiveSummary = &summary

	if len(generated.PainPoints) > maxPainPoints {
		generated.PainPoints = generated.PainPoints[:maxPainPoints]
	}
	if generated.PainPoints != nil {
		intel.PainPoints = generated.PainPoints
	}
	for _, role := range []string{entity.RoleDevOpsManager, entity.RoleHeadOfEngineering} {
		if line, ok := generated.OpeningLines[role]; ok {
			intel.OpeningLines[role] = line
		}
	}
	return intel
}

func (e *IntelligenceEnricher) generate(ctx context.Context, profile entity.CompanyProfile) (generatedIntelligence, error) {
	if e.client == nil {
		return generatedIntelligence{}, fmt.Errorf("no generative client configured")
	}
	raw, err := e.client.Generate(ctx, llm.Request{
		Prompt:      buildEnrichmentPrompt(e.normalizer.Normalize(profile)),
		Temperature: e.temperature,
		JSON:        true,
		MaxTokens:   enrichMaxTokens,
	})
	if err != nil {
		return generatedIntelligence{}, err
	}
	return llm.DecodeJSON[generatedIntelligence](raw)
}

func fallbackSummary(profile entity.CompanyProfile) string {
	industry := "technology"
	if profile.Overview.Industry != nil && strings.TrimSpace(*profile.Overview.Industry) != "" {
		industry = strings.TrimSpace(*profile.Overview.Industry)
	}
	return fmt.Sprintf("%s is a company in the %s industry.", profile.CompanyName, industry)
}

func dataSources(news []entity.NewsSignal) []string {
	sources := make([]string, 0, len(news))
	seen := make(map[string]struct{}, len(news))
	for _, n := range news {
		if n.URL == "" {
			continue
		}
		if _, dup := seen[n.URL]; dup {
			continue
		}
		seen[n.URL] = struct{}{}
		sources = append(sources, n.URL)
	}
	return sources
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func buildEnrichmentPrompt(profile entity.CompanyProfile) string {
	return fmt.Sprintf(`You are a B2B sales intelligence analyst. Analyze the following company data and generate actionable insights.

%s

Generate an intelligence report with:

1. EXECUTIVE SUMMARY (2-3 sentences): what they do and their market position, recent strategic moves or signals, overall business context.

2. PAIN POINTS (3-4 key challenges they likely face). For each provide:
   - title: short, specific title (e.g. "High Cloud Infrastructure Costs")
   - description: why this is a pain point based on the data (1-2 sentences)
   - confidence: "High", "Medium" or "Low" based on the evidence
   - source: what data led to this insight

3. OPENING LINES (2 personalized outreach messages), one for a DevOps/Infrastructure leader and one for engineering leadership (CTO/VP Engineering). Each must reference specific company context, mention a relevant pain point or opportunity, stay within 2-3 sentences, and explain why it would resonate.

Return ONLY valid JSON in this exact format:
{
  "executive_summary": "...",
  "pain_points": [
    {"title": "...", "description": "...", "confidence": "High|Medium|Low", "source": "..."}
  ],
  "opening_lines": {
    "%s": {"role": "For DevOps/Infrastructure Manager", "message": "...", "context": "..."},
    "%s": {"role": "For Head of Engineering/CTO", "message": "...", "context": "..."}
  }
}

Base insights on the data provided. If data is limited, lower the confidence levels.`,
		buildEnrichmentContext(profile), entity.RoleDevOpsManager, entity.RoleHeadOfEngineering)
}

// buildEnrichmentContext renders a bounded summary of the profile.
func buildEnrichmentContext(profile entity.CompanyProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "COMPANY: %s\n\nOVERVIEW:\n", profile.CompanyName)
	fmt.Fprintf(&b, "- Industry: %s\n", orNA(profile.Overview.Industry))
	fmt.Fprintf(&b, "- Location: %s\n", orNA(profile.Overview.Location))
	fmt.Fprintf(&b, "- Employee Count: %s\n\n", orNA(profile.Overview.EmployeeCount))

	b.WriteString("TECH STACK:\n")
	if tech := head(profile.TechStack, maxContextTech); len(tech) > 0 {
		b.WriteString(strings.Join(tech, ", "))
	} else {
		b.WriteString("No tech stack data available")
	}

	b.WriteString("\n\nRECENT NEWS/SIGNALS:\n")
	if news := head(profile.RecentNewsSignals, maxContextNews); len(news) > 0 {
		writeIndentedJSON(&b, news)
	} else {
		b.WriteString("No recent news available")
	}

	b.WriteString("\n\nKEY CONTACTS:\n")
	if contacts := head(profile.KeyContacts, maxContextContacts); len(contacts) > 0 {
		writeIndentedJSON(&b, contacts)
	} else {
		b.WriteString("No contacts available")
	}

	return truncateUTF8(b.String(), maxContextBytes)
}

func writeIndentedJSON(b *strings.Builder, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		b.WriteString("unavailable")
		return
	}
	b.Write(data)
}

func head[T any](values []T, n int) []T {
	if len(values) > n {
		return values[:n]
	}
	return values
}

func orNA(value *string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return "N/A"
	}
	return *value
}

func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	s = s[:limit]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

var _ Enricher = (*IntelligenceEnricher)(nil)
