package mapping

import (
	"encoding/json"
	"fmt"
)

// ColumnValue is one formatted value destined for a board column. Each column
// semantic the forms write gets its own variant; Encode is the single place
// that knows the wire shape of every variant, so adding a shape is a
// compile-checked change there.
type ColumnValue interface {
	isColumnValue()
}

// PlainText writes the raw string unmodified (text columns).
type PlainText string

// Number writes a numeric value (number columns, e.g. the travel fee).
type Number float64

// Email writes the address into both the email and text slots; the external
// service requires the two to carry identical content.
type Email struct {
	Address string
}

// Date writes an ISO YYYY-MM-DD date. The value must already be in that shape;
// no parsing or reformatting happens at this layer.
type Date struct {
	Value string
}

// Labels writes a multi-select value, label names verbatim.
type Labels struct {
	Values []string
}

// Country writes a country-typed value by ISO code.
type Country struct {
	Code string
}

// LinkedItem references item(s) on another board through a relation column.
type LinkedItem struct {
	BoardID int64
	ItemIDs []int64
}

// StatusLabel writes a status/color column by label text.
type StatusLabel struct {
	Label string
}

func (PlainText) isColumnValue()   {}
func (Number) isColumnValue()      {}
func (Email) isColumnValue()       {}
func (Date) isColumnValue()        {}
func (Labels) isColumnValue()      {}
func (Country) isColumnValue()     {}
func (LinkedItem) isColumnValue()  {}
func (StatusLabel) isColumnValue() {}

// ColumnValues maps resolved column ids to their formatted values.
type ColumnValues map[string]ColumnValue

// Merge overlays other onto v. Later merges win for a shared column id, which
// is how decision/artist values take precedence over generic field values.
func (v ColumnValues) Merge(other ColumnValues) ColumnValues {
	for id, value := range other {
		v[id] = value
	}
	return v
}

// Encode serialises the payload to the JSON document the board API expects as
// its column_values variable. The switch is exhaustive over all variants.
func (v ColumnValues) Encode() ([]byte, error) {
	out := make(map[string]any, len(v))
	for id, value := range v {
		wire, err := encodeColumnValue(value)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", id, err)
		}
		out[id] = wire
	}
	return json.Marshal(out)
}

func encodeColumnValue(value ColumnValue) (any, error) {
	switch cv := value.(type) {
	case PlainText:
		return string(cv), nil
	case Number:
		return float64(cv), nil
	case Email:
		return map[string]string{"email": cv.Address, "text": cv.Address}, nil
	case Date:
		return map[string]string{"date": cv.Value}, nil
	case Labels:
		return map[string][]string{"labels": cv.Values}, nil
	case Country:
		return map[string]string{"countryCode": cv.Code}, nil
	case LinkedItem:
		return map[string]any{"board_id": cv.BoardID, "item_ids": cv.ItemIDs}, nil
	case StatusLabel:
		return map[string]string{"label": cv.Label}, nil
	case nil:
		return nil, fmt.Errorf("nil column value")
	default:
		return nil, fmt.Errorf("unhandled column value type %T", value)
	}
}
