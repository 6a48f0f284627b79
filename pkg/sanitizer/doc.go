// Package sanitizer normalizes free-text input before validation and storage.
//
// All functions are idempotent: applying them more than once yields the same
// result. Invalid input is never rejected here; validation is left to the
// caller.
//
// Normalization includes:
//   - Names: drop invisible characters, collapse runs of whitespace
//   - Emails: drop all whitespace and lowercase
//   - Phones: same as names, keeping the digits and punctuation as typed
package sanitizer
