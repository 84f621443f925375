// Package sanitizer normalizes guest and catalogue input before validation and storage.
//
// All functions are idempotent: applying them twice gives the same result as
// applying them once. They never return errors. Input that cannot be normalized
// is either dropped (empty strings in slices) or returned trimmed so that
// validation rejects it with a field-level message.
//
// Normalization includes:
//   - Phone numbers: E.164 via libphonenumber, Kenyan numbers accepted in national form
//   - Emails: trimmed and lowercased
//   - Names and free text: whitespace collapsed, control characters removed
//   - Amenity labels: lowercased, whitespace collapsed, de-duplicated
//   - URLs: trimmed, scheme and host lowercased, tracking parameters removed
package sanitizer
