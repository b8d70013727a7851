package mapping

import (
	"github.com/triade-beauty/intake/internal/domain"
)

// Static column ids on the clients board. These columns are addressed by id
// rather than fuzzy title lookup because downstream board automations key off
// them and their titles have been renamed more than once.
const (
	ColumnHDecision    = "status2"
	ColumnHStatus      = "dup_of_mstatus"
	ColumnMDecision    = "status7"
	ColumnMStatus      = "project_status"
	ColumnMUAs         = "connect_boards"
	ColumnHairstylists = "connect_boards0"
	ColumnMiguelChoice = "status5"
	ColumnTeresaChoice = "color7"
	ColumnLolaChoice   = "color0"
	ColumnSecondEmail  = "email__1"
)

// Decision labels written to the per-track decision columns. The trailing
// bang on the undecided labels is asymmetric with the submitted sentinel and
// must be preserved exactly: the board automations match on it.
const (
	LabelUndecidedHairstylist  = "I don't know which hairstylist to choose!"
	LabelUndecidedMakeupArtist = "I don't know which make-up artist to choose!"
	LabelChooseHairstylist     = "let me choose a specific hairstylist"
	LabelChooseMakeupArtist    = "let me choose a specific make-up artist"
)

// Status labels derived from the MUA form's hairstylist sub-choice.
const (
	StatusNotInterested  = "not interested"
	StatusUndecided      = "undecided- inquire availabilities"
	StatusTravellingFee  = "Travelling fee + inquire artist"
	StatusDirectChoice   = "Direct choice"
	StatusNotInterestedH = "(not interested)"
)

// DecisionResolver derives the decision and status column values from a
// client's raw choices. The hair and make-up tracks are independent; an
// unselected track produces no column entries at all.
type DecisionResolver struct {
	registry *ArtistRegistry
}

// NewDecisionResolver builds a resolver backed by the artist registry, which
// it needs to recognise concrete hairstylist names on the MUA form.
func NewDecisionResolver(registry *ArtistRegistry) *DecisionResolver {
	if registry == nil {
		registry = NewArtistRegistry()
	}
	return &DecisionResolver{registry: registry}
}

// Decisions resolves both form variants' rules against one submission. The
// inquiry rules only fire for tracks whose service was selected; the MUA rule
// fires whenever the hairstylist sub-choice is present.
func (d *DecisionResolver) Decisions(sub domain.Submission) ColumnValues {
	values := ColumnValues{}
	values.Merge(d.inquiryDecisions(sub))
	values.Merge(d.muaFormDecisions(sub))
	return values
}

func (d *DecisionResolver) inquiryDecisions(sub domain.Submission) ColumnValues {
	values := ColumnValues{}

	if sub.HasService(domain.ServiceHair) && sub.Hairstylist != "" {
		if sub.Hairstylist == domain.UndecidedHairstylistChoice {
			values[ColumnHDecision] = StatusLabel{Label: LabelUndecidedHairstylist}
		} else {
			values[ColumnHDecision] = StatusLabel{Label: LabelChooseHairstylist}
		}
	}

	if sub.HasService(domain.ServiceMakeup) && sub.MakeupArtist != "" {
		if sub.MakeupArtist == domain.UndecidedMakeupArtistChoice {
			values[ColumnMDecision] = StatusLabel{Label: LabelUndecidedMakeupArtist}
		} else {
			values[ColumnMDecision] = StatusLabel{Label: LabelChooseMakeupArtist}
		}
	}

	return values
}

func (d *DecisionResolver) muaFormDecisions(sub domain.Submission) ColumnValues {
	values := ColumnValues{}
	switch sub.HairstylistChoice {
	case "":
	case domain.DeclinedHairstylistChoice:
		values[ColumnHStatus] = StatusLabel{Label: StatusNotInterested}
	case domain.UndecidedHairstylistChoice:
		values[ColumnHStatus] = StatusLabel{Label: StatusUndecided}
	default:
		if _, ok := d.registry.ResolveID(RoleHairstylist, sub.HairstylistChoice); ok {
			values[ColumnHStatus] = StatusLabel{Label: StatusTravellingFee}
		}
	}
	return values
}

// NormalizeMUASubmission expands a MUA-variant submission into the full field
// set the mapper works from: the service list, status/decision fields and the
// fallback hairstylist selection are derived from the hairstylist sub-choice,
// and the make-up track is pinned to a direct choice. Submissions of other
// variants pass through untouched. Explicit values already present win over
// derived ones.
func (d *DecisionResolver) NormalizeMUASubmission(sub domain.Submission) domain.Submission {
	if sub.Variant() != domain.FormVariantMUA {
		return sub
	}

	switch sub.HairstylistChoice {
	case "":
	case domain.DeclinedHairstylistChoice:
		sub.BeautyServices = []string{domain.ServiceMakeup}
		if sub.HStatus == "" {
			sub.HStatus = StatusNotInterested
		}
		if sub.HDecision == "" {
			sub.HDecision = StatusNotInterestedH
		}
	case domain.UndecidedHairstylistChoice:
		sub.BeautyServices = []string{domain.ServiceMakeup, domain.ServiceHair}
		if sub.HStatus == "" {
			sub.HStatus = StatusUndecided
		}
		if sub.HDecision == "" {
			sub.HDecision = LabelUndecidedHairstylist
		}
	default:
		sub.BeautyServices = []string{domain.ServiceMakeup, domain.ServiceHair}
		if sub.HStatus == "" {
			sub.HStatus = StatusTravellingFee
		}
		if sub.HDecision == "" {
			sub.HDecision = LabelChooseHairstylist
		}
		if sub.Hairstylist == "" {
			sub.Hairstylist = sub.HairstylistChoice
		}
	}

	if sub.MDecision == "" {
		sub.MDecision = LabelChooseMakeupArtist
	}
	if sub.MStatus == "" {
		sub.MStatus = StatusDirectChoice
	}

	// Keep makeupArtist coherent with a numeric muaSelection so validation
	// and decision rules see a display name.
	if sub.MakeupArtist == "" && sub.MUASelection != "" && numericID.MatchString(sub.MUASelection) {
		if id, err := parseArtistID(sub.MUASelection); err == nil {
			if name, ok := d.registry.ResolveName(RoleMakeupArtist, id); ok {
				sub.MakeupArtist = name
			}
		}
	}

	return sub
}
