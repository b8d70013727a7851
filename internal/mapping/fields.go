package mapping

import (
	"github.com/triade-beauty/intake/internal/domain"
)

// fieldKind selects the value formatting for a basic field.
type fieldKind int

const (
	kindText fieldKind = iota
	kindEmail
	kindDate
	kindLabels
	kindCountry
)

// FieldMapping binds one logical submission field to the ordered column
// search terms used to locate its board column. The first term that resolves
// a column wins.
type FieldMapping struct {
	Field       string
	SearchTerms []string

	kind  fieldKind
	value func(domain.Submission) (string, []string)
}

// BasicFieldMappings is the fixed mapping table for the identity fields. The
// order of search terms within an entry is part of the contract.
var BasicFieldMappings = []FieldMapping{
	{Field: "brideName", SearchTerms: []string{"bride", "name"}, kind: kindText,
		value: func(s domain.Submission) (string, []string) { return s.BrideName, nil }},
	{Field: "email", SearchTerms: []string{"email"}, kind: kindEmail,
		value: func(s domain.Submission) (string, []string) { return s.Email, nil }},
	{Field: "weddingDate", SearchTerms: []string{"wedding", "date"}, kind: kindDate,
		value: func(s domain.Submission) (string, []string) { return s.WeddingDate, nil }},
	{Field: "beautyVenue", SearchTerms: []string{"venue", "beauty"}, kind: kindText,
		value: func(s domain.Submission) (string, []string) { return s.BeautyVenue, nil }},
	{Field: "description", SearchTerms: []string{"description", "observation"}, kind: kindText,
		value: func(s domain.Submission) (string, []string) { return s.Description, nil }},
	{Field: "beautyServices", SearchTerms: []string{"service"}, kind: kindLabels,
		value: func(s domain.Submission) (string, []string) { return "", s.BeautyServices }},
	{Field: "country", SearchTerms: []string{"country"}, kind: kindCountry,
		value: func(s domain.Submission) (string, []string) { return s.Country, nil }},
}

// MapBasicFields resolves every basic field against the fetched schema and
// formats its value by column semantics. Fields without a value, or whose
// search terms match no column, are omitted from the payload.
func MapBasicFields(sub domain.Submission, columns []domain.BoardColumn) ColumnValues {
	values := ColumnValues{}
	for _, fm := range BasicFieldMappings {
		columnID, ok := resolveByTerms(columns, fm.SearchTerms)
		if !ok {
			continue
		}
		text, list := fm.value(sub)
		switch fm.kind {
		case kindLabels:
			if len(list) == 0 {
				continue
			}
			values[columnID] = Labels{Values: list}
		case kindEmail:
			if text == "" {
				continue
			}
			values[columnID] = Email{Address: text}
		case kindDate:
			if text == "" {
				continue
			}
			values[columnID] = Date{Value: text}
		case kindCountry:
			if text == "" {
				continue
			}
			values[columnID] = FormatCountry(text)
		default:
			if text == "" {
				continue
			}
			values[columnID] = PlainText(text)
		}
	}
	return values
}

func resolveByTerms(columns []domain.BoardColumn, terms []string) (string, bool) {
	for _, term := range terms {
		if id, ok := FindColumnID(columns, term); ok {
			return id, true
		}
	}
	return "", false
}

// MapOverrideFields maps the explicit decision/status/choice overrides set by
// advanced custom forms onto their static columns. These merge last and win
// over anything derived.
func MapOverrideFields(sub domain.Submission) ColumnValues {
	values := ColumnValues{}

	if sub.MDecision != "" {
		values[ColumnMDecision] = StatusLabel{Label: sub.MDecision}
	}
	if sub.HDecision != "" {
		values[ColumnHDecision] = StatusLabel{Label: sub.HDecision}
	}
	if sub.MStatus != "" {
		values[ColumnMStatus] = StatusLabel{Label: sub.MStatus}
	}
	if sub.HStatus != "" {
		values[ColumnHStatus] = StatusLabel{Label: sub.HStatus}
	}

	if sub.LolaChoice != "" {
		values[ColumnLolaChoice] = StatusLabel{Label: sub.LolaChoice}
	}
	if sub.TeresaChoice != "" {
		values[ColumnTeresaChoice] = StatusLabel{Label: sub.TeresaChoice}
	}
	if sub.MiguelChoice != "" {
		values[ColumnMiguelChoice] = StatusLabel{Label: sub.MiguelChoice}
	}

	if sub.SecondEmail != "" {
		values[ColumnSecondEmail] = Email{Address: sub.SecondEmail}
	}

	return values
}

// BuildPayload assembles the complete column payload for one submission:
// basic fields, then artist relations, derived decisions and explicit
// overrides. Later stages win a shared column id.
func BuildPayload(sub domain.Submission, columns []domain.BoardColumn, registry *ArtistRegistry, decisions *DecisionResolver) ColumnValues {
	payload := MapBasicFields(sub, columns)
	payload.Merge(registry.ArtistSelections(sub))
	payload.Merge(decisions.Decisions(sub))
	payload.Merge(MapOverrideFields(sub))
	return payload
}
