// ABOUTME: Morning brief: one generated markdown document per day.
package models

// Brief pairs a calendar date with its generated markdown content.
type Brief struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}
