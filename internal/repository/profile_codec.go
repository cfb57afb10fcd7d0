package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/octobees/sift-profiler/internal/entity"
)

// profileColumns holds the nullable TEXT columns of company_profiles.
type profileColumns struct {
	Overview          sql.NullString
	TechStack         sql.NullString
	RecentNewsSignals sql.NullString
	KeyContacts       sql.NullString
	ExecutiveSummary  sql.NullString
	PainPoints        sql.NullString
	OpeningLines      sql.NullString
	DataSources       sql.NullString
}

func encodeProfileColumns(rec *entity.ProfileRecord) (profileColumns, error) {
	var (
		cols profileColumns
		err  error
	)
	if cols.Overview, err = encodeJSONText(rec.Overview, rec.Overview == nil); err != nil {
		return cols, fmt.Errorf("encode overview: %w", err)
	}
	if cols.TechStack, err = encodeJSONText(rec.TechStack, rec.TechStack == nil); err != nil {
		return cols, fmt.Errorf("encode tech_stack: %w", err)
	}
	if cols.RecentNewsSignals, err = encodeJSONText(rec.RecentNewsSignals, rec.RecentNewsSignals == nil); err != nil {
		return cols, fmt.Errorf("encode recent_news_signals: %w", err)
	}
	if cols.KeyContacts, err = encodeJSONText(rec.KeyContacts, rec.KeyContacts == nil); err != nil {
		return cols, fmt.Errorf("encode key_contacts: %w", err)
	}
	if cols.PainPoints, err = encodeJSONText(rec.PainPoints, rec.PainPoints == nil); err != nil {
		return cols, fmt.Errorf("encode pain_points: %w", err)
	}
	if cols.OpeningLines, err = encodeJSONText(rec.OpeningLines, rec.OpeningLines == nil); err != nil {
		return cols, fmt.Errorf("encode opening_lines: %w", err)
	}
	if cols.DataSources, err = encodeJSONText(rec.DataSources, rec.DataSources == nil); err != nil {
		return cols, fmt.Errorf("encode data_sources: %w", err)
	}
	if rec.ExecutiveSummary != nil {
		cols.ExecutiveSummary = sql.NullString{String: *rec.ExecutiveSummary, Valid: true}
	}
	return cols, nil
}

func decodeProfileColumns(cols profileColumns, rec *entity.ProfileRecord) error {
	var err error
	if rec.Overview, err = decodeJSONText[*entity.CompanyOverview](cols.Overview); err != nil {
		return fmt.Errorf("decode overview: %w", err)
	}
	if rec.TechStack, err = decodeJSONText[[]string](cols.TechStack); err != nil {
		return fmt.Errorf("decode tech_stack: %w", err)
	}
	if rec.RecentNewsSignals, err = decodeJSONText[[]entity.NewsSignal](cols.RecentNewsSignals); err != nil {
		return fmt.Errorf("decode recent_news_signals: %w", err)
	}
	if rec.KeyContacts, err = decodeJSONText[[]entity.KeyContact](cols.KeyContacts); err != nil {
		return fmt.Errorf("decode key_contacts: %w", err)
	}
	if rec.PainPoints, err = decodeJSONText[[]entity.PainPoint](cols.PainPoints); err != nil {
		return fmt.Errorf("decode pain_points: %w", err)
	}
	if rec.OpeningLines, err = decodeJSONText[map[string]entity.OpeningLine](cols.OpeningLines); err != nil {
		return fmt.Errorf("decode opening_lines: %w", err)
	}
	if rec.DataSources, err = decodeJSONText[[]string](cols.DataSources); err != nil {
		return fmt.Errorf("decode data_sources: %w", err)
	}
	rec.ExecutiveSummary = nil
	if cols.ExecutiveSummary.Valid {
		summary := cols.ExecutiveSummary.String
		rec.ExecutiveSummary = &summary
	}
	return nil
}

// encodeJSONText serialises v as a TEXT column, or NULL when isNil is set.
// Empty collections are stored as "[]" or "{}" and stay distinct from NULL.
func encodeJSONText[T any](v T, isNil bool) (sql.NullString, error) {
	if isNil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// decodeJSONText is the inverse of encodeJSONText. NULL yields the zero value.
func decodeJSONText[T any](col sql.NullString) (T, error) {
	var out T
	if !col.Valid {
		return out, nil
	}
	if err := json.Unmarshal([]byte(col.String), &out); err != nil {
		return out, err
	}
	return out, nil
}
