package phone

import (
	"sort"
	"strings"
)

// Country is a selectable dial-code entry.
type Country struct {
	DialCode string `json:"dialCode"`
	Name     string `json:"name"`
	ISOCode  string `json:"isoCode"`
}

// IsZero reports whether c is the empty country.
func (c Country) IsZero() bool {
	return c.DialCode == ""
}

// DomesticDialCode is the dial code that gets the strict mobile rules.
const DomesticDialCode = "+91"

var countryTable = []Country{
	{"+91", "India", "IN"},
	{"+1", "USA", "US"},
	{"+44", "UK", "GB"},
	{"+971", "UAE", "AE"},
	{"+61", "Australia", "AU"},
	{"+1", "Canada", "CA"},
	{"+65", "Singapore", "SG"},
	{"+86", "China", "CN"},
	{"+81", "Japan", "JP"},
	{"+49", "Germany", "DE"},
	{"+33", "France", "FR"},
	{"+39", "Italy", "IT"},
	{"+34", "Spain", "ES"},
	{"+92", "Pakistan", "PK"},
	{"+880", "Bangladesh", "BD"},
	{"+94", "Sri Lanka", "LK"},
	{"+977", "Nepal", "NP"},
	{"+60", "Malaysia", "MY"},
	{"+66", "Thailand", "TH"},
	{"+62", "Indonesia", "ID"},
	{"+63", "Philippines", "PH"},
	{"+84", "Vietnam", "VN"},
	{"+852", "Hong Kong", "HK"},
	{"+966", "Saudi Arabia", "SA"},
	{"+973", "Bahrain", "BH"},
	{"+965", "Kuwait", "KW"},
	{"+974", "Qatar", "QA"},
	{"+968", "Oman", "OM"},
	{"+20", "Egypt", "EG"},
	{"+27", "South Africa", "ZA"},
	{"+234", "Nigeria", "NG"},
	{"+254", "Kenya", "KE"},
	{"+55", "Brazil", "BR"},
	{"+52", "Mexico", "MX"},
	{"+54", "Argentina", "AR"},
	{"+7", "Russia", "RU"},
	{"+380", "Ukraine", "UA"},
	{"+48", "Poland", "PL"},
	{"+90", "Turkey", "TR"},
	{"+213", "Algeria", "DZ"},
	{"+376", "Andorra", "AD"},
	{"+244", "Angola", "AO"},
	{"+1264", "Anguilla", "AI"},
	{"+1268", "Antigua & Barbuda", "AG"},
	{"+374", "Armenia", "AM"},
	{"+297", "Aruba", "AW"},
	{"+43", "Austria", "AT"},
	{"+994", "Azerbaijan", "AZ"},
	{"+1242", "Bahamas", "BS"},
	{"+1246", "Barbados", "BB"},
	{"+375", "Belarus", "BY"},
	{"+32", "Belgium", "BE"},
	{"+501", "Belize", "BZ"},
	{"+229", "Benin", "BJ"},
	{"+1441", "Bermuda", "BM"},
	{"+975", "Bhutan", "BT"},
	{"+591", "Bolivia", "BO"},
	{"+387", "Bosnia Herzegovina", "BA"},
	{"+267", "Botswana", "BW"},
	{"+673", "Brunei", "BN"},
	{"+359", "Bulgaria", "BG"},
	{"+226", "Burkina Faso", "BF"},
	{"+257", "Burundi", "BI"},
	{"+855", "Cambodia", "KH"},
	{"+237", "Cameroon", "CM"},
	{"+238", "Cape Verde Islands", "CV"},
	{"+1345", "Cayman Islands", "KY"},
	{"+236", "Central African Republic", "CF"},
	{"+56", "Chile", "CL"},
	{"+57", "Colombia", "CO"},
	{"+269", "Comoros", "KM"},
	{"+242", "Congo", "CG"},
	{"+682", "Cook Islands", "CK"},
	{"+506", "Costa Rica", "CR"},
	{"+385", "Croatia", "HR"},
	{"+357", "Cyprus", "CY"},
	{"+420", "Czech Republic", "CZ"},
	{"+45", "Denmark", "DK"},
	{"+253", "Djibouti", "DJ"},
	{"+372", "Estonia", "EE"},
	{"+251", "Ethiopia", "ET"},
	{"+358", "Finland", "FI"},
	{"+995", "Georgia", "GE"},
	{"+233", "Ghana", "GH"},
	{"+30", "Greece", "GR"},
	{"+36", "Hungary", "HU"},
	{"+354", "Iceland", "IS"},
	{"+353", "Ireland", "IE"},
	{"+972", "Israel", "IL"},
	{"+1876", "Jamaica", "JM"},
	{"+962", "Jordan", "JO"},
	{"+7", "Kazakhstan", "KZ"},
	{"+82", "Korea South", "KR"},
	{"+961", "Lebanon", "LB"},
	{"+370", "Lithuania", "LT"},
	{"+960", "Maldives", "MV"},
	{"+356", "Malta", "MT"},
	{"+230", "Mauritius", "MU"},
	{"+377", "Monaco", "MC"},
	{"+212", "Morocco", "MA"},
	{"+31", "Netherlands", "NL"},
	{"+64", "New Zealand", "NZ"},
	{"+47", "Norway", "NO"},
	{"+351", "Portugal", "PT"},
	{"+40", "Romania", "RO"},
	{"+221", "Senegal", "SN"},
	{"+381", "Serbia", "RS"},
	{"+421", "Slovakia", "SK"},
	{"+386", "Slovenia", "SI"},
	{"+211", "South Sudan", "SS"},
	{"+46", "Sweden", "SE"},
	{"+41", "Switzerland", "CH"},
	{"+886", "Taiwan", "TW"},
	{"+255", "Tanzania", "TZ"},
	{"+216", "Tunisia", "TN"},
	{"+256", "Uganda", "UG"},
	{"+598", "Uruguay", "UY"},
	{"+998", "Uzbekistan", "UZ"},
	{"+58", "Venezuela", "VE"},
	{"+260", "Zambia", "ZM"},
	{"+263", "Zimbabwe", "ZW"},
}

// byPrefixLength orders the table longest dial code first so the first
// prefix hit is the most specific one. The sort is stable, so for shared
// codes such as +1 the earlier table entry wins.
var byPrefixLength = func() []Country {
	sorted := make([]Country, len(countryTable))
	copy(sorted, countryTable)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].DialCode) > len(sorted[j].DialCode)
	})
	return sorted
}()

// Countries returns a copy of the dial-code table in display order.
func Countries() []Country {
	out := make([]Country, len(countryTable))
	copy(out, countryTable)
	return out
}

// Default returns the country selected when a session starts.
func Default() Country {
	return countryTable[0]
}

// LookupDialCode finds the first table entry with exactly the given dial code.
func LookupDialCode(dialCode string) (Country, bool) {
	dialCode = strings.TrimSpace(dialCode)
	if dialCode != "" && !strings.HasPrefix(dialCode, "+") {
		dialCode = "+" + dialCode
	}
	for _, c := range countryTable {
		if c.DialCode == dialCode {
			return c, true
		}
	}
	return Country{}, false
}

// LookupISO finds a country by its two-letter code.
func LookupISO(iso string) (Country, bool) {
	iso = strings.ToUpper(strings.TrimSpace(iso))
	for _, c := range countryTable {
		if c.ISOCode == iso {
			return c, true
		}
	}
	return Country{}, false
}

// MatchPrefix returns the country whose dial code is the longest prefix of
// value. value is expected to start with "+".
func MatchPrefix(value string) (Country, bool) {
	for _, c := range byPrefixLength {
		if strings.HasPrefix(value, c.DialCode) {
			return c, true
		}
	}
	return Country{}, false
}
