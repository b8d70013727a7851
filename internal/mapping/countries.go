package mapping

// fallbackCountryCode is used when a submitted country name is not in the
// table. An unknown country must never fail a submission.
const fallbackCountryCode = "US"

// countryCodes maps the country names the forms offer to ISO 3166-1 alpha-2
// codes. Lookup is exact-match on the full name.
var countryCodes = map[string]string{
	"Afghanistan":    "AF",
	"Albania":        "AL",
	"Algeria":        "DZ",
	"Argentina":      "AR",
	"Australia":      "AU",
	"Austria":        "AT",
	"Bangladesh":     "BD",
	"Belgium":        "BE",
	"Brazil":         "BR",
	"Canada":         "CA",
	"Chile":          "CL",
	"China":          "CN",
	"Colombia":       "CO",
	"Denmark":        "DK",
	"Egypt":          "EG",
	"Finland":        "FI",
	"France":         "FR",
	"Germany":        "DE",
	"Greece":         "GR",
	"India":          "IN",
	"Indonesia":      "ID",
	"Ireland":        "IE",
	"Italy":          "IT",
	"Japan":          "JP",
	"Mexico":         "MX",
	"Netherlands":    "NL",
	"New Zealand":    "NZ",
	"Norway":         "NO",
	"Pakistan":       "PK",
	"Philippines":    "PH",
	"Poland":         "PL",
	"Portugal":       "PT",
	"Russia":         "RU",
	"South Africa":   "ZA",
	"South Korea":    "KR",
	"Spain":          "ES",
	"Sweden":         "SE",
	"Switzerland":    "CH",
	"Thailand":       "TH",
	"Turkey":         "TR",
	"Ukraine":        "UA",
	"United Kingdom": "GB",
	"United States":  "US",
	"Vietnam":        "VN",
}

// FormatCountry builds a country column value, silently falling back to US
// for names missing from the table.
func FormatCountry(name string) Country {
	if code, ok := countryCodes[name]; ok {
		return Country{Code: code}
	}
	return Country{Code: fallbackCountryCode}
}
