package main

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS predictions (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		inputs         TEXT NOT NULL,
		imputed_count  INTEGER NOT NULL DEFAULT 0,
		ite            REAL NOT NULL,
		recommendation TEXT NOT NULL,
		created_at     DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
	CREATE INDEX IF NOT EXISTS idx_predictions_recommendation ON predictions(recommendation);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// PredictionEntry is one audit row: the inputs that went in, how many were
// imputed, and what came out.
type PredictionEntry struct {
	ID             int64
	Inputs         string // "name=value" pairs in covariate order
	ImputedCount   int
	ITE            float64
	Recommendation string
	CreatedAt      time.Time
}

func InsertPrediction(db *sql.DB, e PredictionEntry) error {
	_, err := db.Exec(
		`INSERT INTO predictions (inputs, imputed_count, ite, recommendation)
		 VALUES (?, ?, ?, ?)`,
		e.Inputs, e.ImputedCount, e.ITE, e.Recommendation,
	)
	return err
}

func GetRecentPredictions(db *sql.DB, limit int) ([]PredictionEntry, error) {
	rows, err := db.Query(
		`SELECT id, inputs, imputed_count, ite, recommendation, created_at
		 FROM predictions ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PredictionEntry
	for rows.Next() {
		var e PredictionEntry
		if err := rows.Scan(
			&e.ID, &e.Inputs, &e.ImputedCount, &e.ITE, &e.Recommendation, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type PredictionStats struct {
	Total    int
	Treat    int
	Withhold int
	Neutral  int
	AvgITE   float64
}

func GetPredictionStats(db *sql.DB, since time.Time) (PredictionStats, error) {
	var s PredictionStats
	err := db.QueryRow(
		`SELECT COUNT(*), COALESCE(AVG(ite), 0),
		        COALESCE(SUM(CASE WHEN recommendation = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN recommendation = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN recommendation = ? THEN 1 ELSE 0 END), 0)
		 FROM predictions WHERE created_at >= ?`,
		string(RecommendTreat), string(RecommendWithhold), string(RecommendNeutral), since,
	).Scan(&s.Total, &s.AvgITE, &s.Treat, &s.Withhold, &s.Neutral)
	return s, err
}

// PrunePredictions deletes audit rows older than the cutoff and reports how
// many were removed.
func PrunePredictions(db *sql.DB, olderThan time.Time) (int64, error) {
	res, err := db.Exec(`DELETE FROM predictions WHERE created_at < ?`, olderThan)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
