package models

import "time"

// Session holds one user's dialogue progress. Sessions live in memory only;
// a restart drops them and the user starts over with /add.
type Session struct {
	UserID    int64
	Step      string
	Draft     Draft
	UpdatedAt time.Time
}

// Draft accumulates report fields as the dialogue advances. SubmissionID is
// minted when the draft becomes complete and is reused on storage retries.
type Draft struct {
	Latitude     *float64
	Longitude    *float64
	BonusAmount  *float64
	SubmissionID string
}
