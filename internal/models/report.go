package models

import "time"

// Report is a completed hot spot submission. A Report is only built once
// latitude, longitude and bonus are all collected and valid.
type Report struct {
	ID           int64
	SubmissionID string
	UserID       int64
	Latitude     float64
	Longitude    float64
	BonusAmount  float64
	Comment      string
	CreatedAt    time.Time
}
