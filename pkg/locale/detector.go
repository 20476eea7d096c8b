package locale

import "strings"

// InferCountryFromPhone matches an E.164 phone number against known country
// prefixes. Longer prefixes win so +972 is not shadowed by a hypothetical +9.
func InferCountryFromPhone(phone string) (Country, bool) {
	if !strings.HasPrefix(phone, "+") {
		return Country{}, false
	}

	var best Country
	var found bool
	for _, c := range Countries {
		if strings.HasPrefix(phone, c.PhonePrefix) {
			if !found || len(c.PhonePrefix) > len(best.PhonePrefix) {
				best = c
				found = true
			}
		}
	}
	return best, found
}

// InferTimezoneFromPhone returns the default timezone for the phone's
// country, or UTC when the country cannot be determined.
func InferTimezoneFromPhone(phone string) string {
	country, ok := InferCountryFromPhone(phone)
	if !ok {
		return FallbackTimezone
	}
	return country.DefaultTimezone
}
