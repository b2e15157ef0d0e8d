package db

import (
	"database/sql"

	"github.com/ad/go-telegram-hotspots/internal/models"
)

type SpotRepository struct {
	queue *Queue
}

func NewSpotRepository(queue *Queue) *SpotRepository {
	return &SpotRepository{queue: queue}
}

// Insert stores one completed report as a single row. The unique submission
// id makes a retried insert after a failed confirmation a no-op, so a report
// is never stored twice.
func (r *SpotRepository) Insert(report *models.Report) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT OR IGNORE INTO hot_spots (submission_id, user_id, latitude, longitude, bonus_byn, comment, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, report.SubmissionID, report.UserID, report.Latitude, report.Longitude, report.BonusAmount, report.Comment, report.CreatedAt.UTC())
		return nil, err
	})
	return err
}

func (r *SpotRepository) CountByUser(userID int64) (int, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		var count int
		err := db.QueryRow(`SELECT COUNT(*) FROM hot_spots WHERE user_id = ?`, userID).Scan(&count)
		return count, err
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}
