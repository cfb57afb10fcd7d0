package service

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	"github.com/octobees/sift-profiler/internal/entity"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
	spacePattern = regexp.MustCompile(`\s+`)
)

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "ID"
	linkedInDomain     = "linkedin.com"
)

// ProfileSanitizer tidies agent output before it is stored and builds the
// normalized view used for generation prompts.
type ProfileSanitizer struct {
	DefaultRegion string
}

// NewProfileSanitizer builds a sanitizer that parses local phone numbers in defaultRegion.
func NewProfileSanitizer(defaultRegion string) *ProfileSanitizer {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	return &ProfileSanitizer{DefaultRegion: region}
}

// SanitizeName trims a company name and collapses inner whitespace.
func (s *ProfileSanitizer) SanitizeName(name string) string {
	return spacePattern.ReplaceAllString(strings.TrimSpace(name), " ")
}

// Sanitize returns a copy of profile with surrounding whitespace trimmed from
// non-blank values. Every field and list element is kept, and blank values are
// left exactly as the automation returned them.
func (s *ProfileSanitizer) Sanitize(profile entity.CompanyProfile) entity.CompanyProfile {
	out := entity.CompanyProfile{
		CompanyName: trimKeep(profile.CompanyName),
		Overview: entity.CompanyOverview{
			Industry:      trimKeepPtr(profile.Overview.Industry),
			Location:      trimKeepPtr(profile.Overview.Location),
			EmployeeCount: trimKeepPtr(profile.Overview.EmployeeCount),
			Website:       trimKeepPtr(profile.Overview.Website),
			FoundedYear:   trimKeepPtr(profile.Overview.FoundedYear),
		},
	}

	if profile.TechStack != nil {
		out.TechStack = make([]string, len(profile.TechStack))
		for i, tech := range profile.TechStack {
			out.TechStack[i] = trimKeep(tech)
		}
	}

	if profile.RecentNewsSignals != nil {
		out.RecentNewsSignals = make([]entity.NewsSignal, len(profile.RecentNewsSignals))
		for i, n := range profile.RecentNewsSignals {
			out.RecentNewsSignals[i] = entity.NewsSignal{
				Title:      trimKeepPtr(n.Title),
				URL:        trimKeep(n.URL),
				SignalType: trimKeepPtr(n.SignalType),
			}
		}
	}

	if profile.KeyContacts != nil {
		out.KeyContacts = make([]entity.KeyContact, len(profile.KeyContacts))
		for i, c := range profile.KeyContacts {
			out.KeyContacts[i] = entity.KeyContact{
				Name:     trimKeep(c.Name),
				Title:    trimKeepPtr(c.Title),
				LinkedIn: trimKeepPtr(c.LinkedIn),
				Email:    trimKeepPtr(c.Email),
				Phone:    trimKeepPtr(c.Phone),
			}
		}
	}

	return out
}

// Normalize returns a canonical view of profile for building prompts: blank
// values become nil, the tech stack is deduplicated case-insensitively, URLs
// lose tracking parameters, LinkedIn links take one form, emails are lowercased
// and phones are formatted as E.164. The view is lossy and is never stored.
func (s *ProfileSanitizer) Normalize(profile entity.CompanyProfile) entity.CompanyProfile {
	out := entity.NewCompanyProfile(s.SanitizeName(profile.CompanyName))

	out.Overview = entity.CompanyOverview{
		Industry:      trimPtr(profile.Overview.Industry),
		Location:      trimPtr(profile.Overview.Location),
		EmployeeCount: trimPtr(profile.Overview.EmployeeCount),
		Website:       cleanURLPtr(profile.Overview.Website),
		FoundedYear:   trimPtr(profile.Overview.FoundedYear),
	}

	seen := make(map[string]struct{}, len(profile.TechStack))
	for _, raw := range profile.TechStack {
		tech := strings.TrimSpace(raw)
		if tech == "" {
			continue
		}
		key := strings.ToLower(tech)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out.TechStack = append(out.TechStack, tech)
	}

	for _, n := range profile.RecentNewsSignals {
		out.RecentNewsSignals = append(out.RecentNewsSignals, entity.NewsSignal{
			Title:      trimPtr(n.Title),
			URL:        cleanURL(n.URL),
			SignalType: canonicalSignal(n.SignalType),
		})
	}

	for _, c := range profile.KeyContacts {
		out.KeyContacts = append(out.KeyContacts, entity.KeyContact{
			Name:     spacePattern.ReplaceAllString(strings.TrimSpace(c.Name), " "),
			Title:    trimPtr(c.Title),
			LinkedIn: canonicalLinkedIn(c.LinkedIn),
			Email:    normalizeEmail(c.Email),
			Phone:    s.normalizePhonePtr(c.Phone),
		})
	}

	return out
}

func (s *ProfileSanitizer) normalizePhonePtr(raw *string) *string {
	value := trimPtr(raw)
	if value == nil {
		return nil
	}
	if normalized := normalizePhone(*value, s.DefaultRegion); normalized != "" {
		return &normalized
	}
	return value
}

func trimKeep(raw string) string {
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		return trimmed
	}
	return raw
}

func trimKeepPtr(raw *string) *string {
	if raw == nil {
		return nil
	}
	value := trimKeep(*raw)
	return &value
}

func trimPtr(raw *string) *string {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil
	}
	return &value
}

func canonicalSignal(raw *string) *string {
	value := trimPtr(raw)
	if value == nil {
		return nil
	}
	for _, known := range entity.SignalTypes {
		if strings.EqualFold(*value, known) {
			canonical := known
			return &canonical
		}
	}
	return value
}

func normalizeEmail(raw *string) *string {
	value := trimPtr(raw)
	if value == nil {
		return nil
	}
	email := strings.ToLower(strings.TrimPrefix(*value, "mailto:"))
	if !emailPattern.MatchString(email) {
		return value
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	if !isDomainValid(domain) {
		return value
	}
	if ascii, err := idnaProfile.ToASCII(domain); err != nil || ascii == "" {
		return value
	}
	return &email
}

func canonicalLinkedIn(raw *string) *string {
	value := trimPtr(raw)
	if value == nil {
		return nil
	}
	u, err := sanitizeURL(*value)
	if err != nil || !hostMatches(u.Hostname(), linkedInDomain) {
		return value
	}
	u.Host = "www." + linkedInDomain
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	canonical := u.String()
	return &canonical
}

func cleanURLPtr(raw *string) *string {
	value := trimPtr(raw)
	if value == nil {
		return nil
	}
	cleaned := cleanURL(*value)
	return &cleaned
}

// cleanURL strips tracking parameters. Unparseable values are returned trimmed.
func cleanURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return raw
	}
	u.Host = strings.ToLower(u.Host)
	stripTracking(u)
	return u.String()
}

func hostMatches(host, domain string) bool {
	host = strings.ToLower(strings.Trim(strings.TrimSpace(host), "."))
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.New("invalid url")
	}
	u.Scheme = "https"
	return u, nil
}

func stripTracking(u *url.URL) {
	if u == nil {
		return
	}
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}

func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if region == "" {
		region = defaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	parts := strings.Split(domain, ".")
	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
