// Package locale maps contact phone numbers to countries and IANA timezones.
// Webhook payloads occasionally arrive without a timezone; the phone prefix
// is the best remaining signal for localizing appointment times.
package locale

type Country struct {
	Code            string
	Name            string
	PhonePrefix     string
	DefaultTimezone string
}

var Countries = map[string]Country{
	"US": {
		Code:            "US",
		Name:            "United States",
		PhonePrefix:     "+1",
		DefaultTimezone: "America/New_York",
	},
	"GB": {
		Code:            "GB",
		Name:            "United Kingdom",
		PhonePrefix:     "+44",
		DefaultTimezone: "Europe/London",
	},
	"IL": {
		Code:            "IL",
		Name:            "Israel",
		PhonePrefix:     "+972",
		DefaultTimezone: "Asia/Jerusalem",
	},
}

const FallbackTimezone = "UTC"
