package domain

import "time"

// FormConfig is the reusable configuration a hosted form renders from.
type FormConfig struct {
	Title            string   `json:"title"`
	Subtitle         string   `json:"subtitle"`
	RecordNamePrefix string   `json:"recordNamePrefix"`
	Hairstylists     []string `json:"hairstylists"`
	MakeupArtists    []string `json:"makeupArtists"`
}

// SavedFormConfig is a named, persisted form configuration. Names are unique;
// CreatedAt survives overwrites.
type SavedFormConfig struct {
	Name      string     `json:"name"`
	Config    FormConfig `json:"config"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
