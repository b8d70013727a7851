package domain

import "strings"

// FormVariant distinguishes the two hosted form flavours. The inquiry form
// collects independent hair/make-up selections; the MUA form is pinned to a
// single make-up artist and only asks about the hairstylist.
type FormVariant string

const (
	FormVariantInquiry FormVariant = "inquiry"
	FormVariantMUA     FormVariant = "mua"
)

// Service track names as they appear on the board's services column.
const (
	ServiceHair   = "Hair"
	ServiceMakeup = "Make-up"
)

// Artist choice sentinels submitted by the forms when the client has not
// settled on a specific artist.
const (
	UndecidedHairstylistChoice  = "I don't know which hairstylist to choose"
	UndecidedMakeupArtistChoice = "I don't know which make-up artist to choose"
	DeclinedHairstylistChoice   = "no, thank you"
)

// Submission is the raw client input of one form post. It is fully transient:
// only the column payload derived from it is sent onward, nothing is stored.
type Submission struct {
	BrideName        string   `json:"brideName,omitempty"`
	Email            string   `json:"email,omitempty"`
	WeddingDate      string   `json:"weddingDate,omitempty"`
	BeautyVenue      string   `json:"beautyVenue,omitempty"`
	Description      string   `json:"description,omitempty"`
	BeautyServices   []string `json:"beautyServices,omitempty"`
	Country          string   `json:"country,omitempty"`
	RecordNamePrefix string   `json:"recordNamePrefix,omitempty"`
	FormType         string   `json:"formType,omitempty"`

	// Artist selections. The field consulted depends on the form variant;
	// see mapping.MakeupSelectionFields and mapping.HairstylistSelectionFields.
	Hairstylist       string `json:"hairstylist,omitempty"`
	MakeupArtist      string `json:"makeupArtist,omitempty"`
	HairstylistChoice string `json:"hairstylistChoice,omitempty"`
	MUASelection      string `json:"muaSelection,omitempty"`

	// Explicit decision/status overrides used by advanced custom forms.
	HStatus   string `json:"HStatus,omitempty"`
	MStatus   string `json:"MStatus,omitempty"`
	MDecision string `json:"Mdecision,omitempty"`
	HDecision string `json:"Hdecision,omitempty"`

	// Founder-artist confirmation labels set by the embedded MUA form.
	MiguelChoice string `json:"Miguelchoice,omitempty"`
	TeresaChoice string `json:"Teresachoice,omitempty"`
	LolaChoice   string `json:"Lolachoice,omitempty"`

	SecondEmail string `json:"2nd e-mail,omitempty"`
}

// Variant normalises the formType field, defaulting to the inquiry form.
func (s Submission) Variant() FormVariant {
	if strings.EqualFold(strings.TrimSpace(s.FormType), string(FormVariantMUA)) {
		return FormVariantMUA
	}
	return FormVariantInquiry
}

// HasService reports whether the given service track was selected.
func (s Submission) HasService(name string) bool {
	for _, svc := range s.BeautyServices {
		if svc == name {
			return true
		}
	}
	return false
}
