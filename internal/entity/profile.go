package entity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Known buying-signal categories. SignalType is free text; these are hints only.
const (
	SignalHiring      = "Hiring"
	SignalFunding     = "Funding"
	SignalExpansion   = "Expansion"
	SignalProduct     = "Product"
	SignalPartnership = "Partnership"
)

// SignalTypes lists the categories the agent is asked to choose from.
var SignalTypes = []string{SignalHiring, SignalFunding, SignalExpansion, SignalProduct, SignalPartnership}

// CompanyOverview holds firmographic facts. Every field may be absent.
type CompanyOverview struct {
	Industry      *string `json:"industry"`
	Location      *string `json:"location"`
	EmployeeCount *string `json:"employee_count"`
	Website       *string `json:"website"`
	FoundedYear   *string `json:"founded_year"`
}

// NewsSignal is a recent article or post that hints at buying intent.
type NewsSignal struct {
	Title      *string `json:"title"`
	URL        string  `json:"url"`
	SignalType *string `json:"signal_type"`
}

// KeyContact is a person worth reaching out to. Only Name is required.
type KeyContact struct {
	Name     string  `json:"name"`
	Title    *string `json:"title"`
	LinkedIn *string `json:"linkedin,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// CompanyProfile is the structured output of one automation run.
//
// Decoding never leaves a collection nil: a missing or null overview becomes an
// all-null CompanyOverview and missing or null lists become empty lists.
type CompanyProfile struct {
	CompanyName       string          `json:"company_name"`
	Overview          CompanyOverview `json:"overview"`
	TechStack         []string        `json:"tech_stack"`
	RecentNewsSignals []NewsSignal    `json:"recent_news_signals"`
	KeyContacts       []KeyContact    `json:"key_contacts"`
}

// NewCompanyProfile returns a profile with every collection initialised.
func NewCompanyProfile(name string) CompanyProfile {
	p := CompanyProfile{CompanyName: name}
	p.ensureDefaults()
	return p
}

// UnmarshalJSON decodes a profile and applies collection defaults.
func (p *CompanyProfile) UnmarshalJSON(data []byte) error {
	type alias struct {
		CompanyName       string           `json:"company_name"`
		Overview          *CompanyOverview `json:"overview"`
		TechStack         []string         `json:"tech_stack"`
		RecentNewsSignals []NewsSignal     `json:"recent_news_signals"`
		KeyContacts       []KeyContact     `json:"key_contacts"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	p.CompanyName = a.CompanyName
	p.Overview = CompanyOverview{}
	if a.Overview != nil {
		p.Overview = *a.Overview
	}
	p.TechStack = a.TechStack
	p.RecentNewsSignals = a.RecentNewsSignals
	p.KeyContacts = a.KeyContacts
	p.ensureDefaults()
	return nil
}

func (p *CompanyProfile) ensureDefaults() {
	if p.TechStack == nil {
		p.TechStack = []string{}
	}
	if p.RecentNewsSignals == nil {
		p.RecentNewsSignals = []NewsSignal{}
	}
	if p.KeyContacts == nil {
		p.KeyContacts = []KeyContact{}
	}
}

// Validate checks the fields the schema treats as required.
func (p CompanyProfile) Validate() error {
	if strings.TrimSpace(p.CompanyName) == "" {
		return fmt.Errorf("company_name: field required")
	}
	for i, n := range p.RecentNewsSignals {
		if strings.TrimSpace(n.URL) == "" {
			return fmt.Errorf("recent_news_signals[%d].url: field required", i)
		}
	}
	for i, c := range p.KeyContacts {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("key_contacts[%d].name: field required", i)
		}
	}
	return nil
}
