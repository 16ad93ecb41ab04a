// ABOUTME: Intervention model: one user-logged health event.
// ABOUTME: Stored append-only as a JSONL line per entry, one file per day.
package models

// Intervention is a single logged event: supplement, activity, or anything
// else the user reports. Raw is the verbatim message text; Cleaned is the
// normalized form used in analysis context.
type Intervention struct {
	Time    string `json:"time"`
	Raw     string `json:"raw"`
	Cleaned string `json:"cleaned"`
}
