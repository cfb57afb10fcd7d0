package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProfileRecord is a persisted profile owned by one user.
//
// Nil pointers, slices and maps stand for NULL columns; empty slices and maps
// stand for stored empty collections. Records are never updated in place.
type ProfileRecord struct {
	ID                uuid.UUID              `json:"profile_id"`
	UserID            uuid.UUID              `json:"user_id"`
	CompanyName       string                 `json:"company_name"`
	Overview          *CompanyOverview       `json:"overview"`
	TechStack         []string               `json:"tech_stack"`
	RecentNewsSignals []NewsSignal           `json:"recent_news_signals"`
	KeyContacts       []KeyContact           `json:"key_contacts"`
	ExecutiveSummary  *string                `json:"executive_summary"`
	PainPoints        []PainPoint            `json:"pain_points"`
	OpeningLines      map[string]OpeningLine `json:"opening_lines"`
	DataSources       []string               `json:"data_sources"`
	LastAnalyzedAt    *time.Time             `json:"last_analyzed_at"`
	CreatedAt         time.Time              `json:"created_at"`
}

// NewProfileRecord combines a completed profile and its intelligence into an
// unsaved record for the given owner.
func NewProfileRecord(owner uuid.UUID, profile CompanyProfile, intel CompanyIntelligence) *ProfileRecord {
	overview := profile.Overview
	return &ProfileRecord{
		UserID:            owner,
		CompanyName:       profile.CompanyName,
		Overview:          &overview,
		TechStack:         profile.TechStack,
		RecentNewsSignals: profile.RecentNewsSignals,
		KeyContacts:       profile.KeyContacts,
		ExecutiveSummary:  intel.ExecutiveSummary,
		PainPoints:        intel.PainPoints,
		OpeningLines:      intel.OpeningLines,
		DataSources:       intel.DataSources,
		LastAnalyzedAt:    intel.LastAnalyzedAt,
	}
}
