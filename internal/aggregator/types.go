package aggregator

import "encoding/json"

// Status reports the outcome of a secondary sub-fetch
type Status string

const (
	StatusOK           Status = "ok"
	StatusUnavailable  Status = "unavailable"
	StatusNotAttempted Status = "not_attempted"
)

// SubResult is a secondary value or an explicit marker of its absence.
// An unavailable sub-fetch is distinguishable from an empty list.
type SubResult struct {
	Status Status          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// OK wraps a fetched value
func OK(data []byte) SubResult {
	return SubResult{Status: StatusOK, Data: data}
}

// Unavailable marks a failed sub-fetch with its reason
func Unavailable(reason string) SubResult {
	return SubResult{Status: StatusUnavailable, Error: reason}
}

// NotAttempted marks a sub-fetch skipped by the fan-out bound
func NotAttempted() SubResult {
	return SubResult{Status: StatusNotAttempted}
}

// CourseDetails is a course with its most recent announcements
type CourseDetails struct {
	Course        json.RawMessage `json:"course"`
	Announcements SubResult       `json:"announcements"`
}

// Assignment is one coursework item with its submissions
type Assignment struct {
	CourseWork  json.RawMessage `json:"courseWork"`
	Submissions SubResult       `json:"submissions"`
}

// AssignmentSet is a course with its coursework in primary order
type AssignmentSet struct {
	Course      json.RawMessage `json:"course"`
	Assignments []Assignment    `json:"assignments"`
}
