// Package sanitizer normalizes provider-supplied contact and metadata fields
// before validation and storage.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning the empty string rather than an error.
//
// Normalization includes:
//   - Phone numbers: convert to E.164 format (+[country][number])
//   - URLs: enforce HTTPS, lowercase domains, preserve paths, strip tracking params
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - Emails: trim and lowercase
package sanitizer
