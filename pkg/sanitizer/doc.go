// Package sanitizer normalizes user supplied travel data before validation and storage.
//
// All functions are idempotent and never fail: input that cannot be normalized
// becomes an empty string (or is dropped from a slice) and is then rejected by
// the validators.
//
// Normalization includes:
//   - Phone numbers: E.164, Indian numbers may omit the country code
//   - City keys: trimmed, whitespace collapsed, lower-cased ("  New   Delhi" becomes "new delhi")
//   - Airport/station codes and seat numbers: trimmed, upper-cased, inner spaces removed
//   - Emails: trimmed, lower-cased
//   - URLs: https, lower-cased host, tracking parameters dropped
//   - Slices: duplicates and empty values removed after normalization
package sanitizer
