package entity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Confidence grades how well the evidence supports a pain point.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// ParseConfidence maps a case-insensitive label onto a Confidence.
func ParseConfidence(raw string) (Confidence, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return ConfidenceHigh, nil
	case "medium":
		return ConfidenceMedium, nil
	case "low":
		return ConfidenceLow, nil
	}
	return "", fmt.Errorf("invalid confidence %q", raw)
}

// UnmarshalJSON accepts any casing of High, Medium or Low.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseConfidence(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Opening line role keys.
const (
	RoleDevOpsManager     = "devops_manager"
	RoleHeadOfEngineering = "head_of_engineering"
)

// PainPoint is a challenge the company likely faces.
type PainPoint struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Confidence  Confidence `json:"confidence"`
	Source      *string    `json:"source"`
}

// OpeningLine is a personalised outreach message for one role.
type OpeningLine struct {
	Role    string `json:"role"`
	Message string `json:"message"`
	Context string `json:"context"`
}

// CompanyIntelligence overlays generated insights on a completed profile.
// It is built once per run and never modified afterwards.
type CompanyIntelligence struct {
	CompanyName       string                 `json:"company_name"`
	Industry          *string                `json:"industry"`
	Location          *string                `json:"location"`
	EmployeeCount     *string                `json:"employee_count"`
	ExecutiveSummary  *string                `json:"executive_summary"`
	PainPoints        []PainPoint            `json:"pain_points"`
	OpeningLines      map[string]OpeningLine `json:"opening_lines"`
	TechStack         []string               `json:"tech_stack"`
	RecentNewsSignals []NewsSignal           `json:"recent_news_signals"`
	KeyContacts       []KeyContact           `json:"key_contacts"`
	DataSources       []string               `json:"data_sources"`
	LastAnalyzedAt    *time.Time             `json:"last_analyzed_at"`
}
