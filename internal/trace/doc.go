// Package trace defines the recorded form of scenario calls and its
// canonical JSON encoding.
//
// Every call a scenario makes becomes an Event. Events are rendered as
// canonical JSON (sorted keys, NFC strings, no floats, no null) so golden
// files and content-addressed call IDs are byte-stable across runs.
//
// trace imports nothing internal; harness and store build on it.
package trace
