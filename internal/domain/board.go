package domain

import "strings"

// BoardColumn is one typed field of an external board. The id is the stable
// key used in payload construction; the title is the only human-readable hook
// available for fuzzy resolution.
type BoardColumn struct {
	ID          string
	Title       string
	Type        string
	SettingsStr string
}

// Column types the service inspects. The external API defines many more; only
// the ones that change formatting behaviour are named here.
const (
	ColumnTypeStatus        = "status"
	ColumnTypeBoardRelation = "board-relation"
)

// BoardItem is a single record summary returned by board listings.
type BoardItem struct {
	ID   string
	Name string
}

// Board is a board's identity together with its item listing.
type Board struct {
	ID    string
	Name  string
	Items []BoardItem
}

// ItemColumnValue is a column value attached to a fetched item, carrying both
// the rendered text and the raw JSON value.
type ItemColumnValue struct {
	ID    string
	Title string
	Type  string
	Text  string
	Value string
}

// Item is one full record fetched from the board, as needed by the triade flow.
type Item struct {
	ID      string
	Name    string
	Columns []ItemColumnValue
}

// ColumnByTitle returns the first column value whose title contains any of
// the keywords, case-insensitively. Lookup mirrors the schema-side column
// resolution: first match wins.
func (it Item) ColumnByTitle(keywords ...string) (ItemColumnValue, bool) {
	for _, col := range it.Columns {
		if titleContainsAny(col.Title, keywords) {
			return col, true
		}
	}
	return ItemColumnValue{}, false
}

func titleContainsAny(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
