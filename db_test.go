package main

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "ohcaite-test.db")
	db, err := InitDB(dbPath)
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInsertAndGetRecentPredictions(t *testing.T) {
	db := newTestDB(t)

	entries := []PredictionEntry{
		{Inputs: "age=65 sex=1", ImputedCount: 0, ITE: 0.10, Recommendation: string(RecommendTreat)},
		{Inputs: "age=30 sex=0", ImputedCount: 2, ITE: -0.10, Recommendation: string(RecommendWithhold)},
		{Inputs: "age=90 sex=1", ImputedCount: 0, ITE: 0.02, Recommendation: string(RecommendNeutral)},
	}
	for _, e := range entries {
		if err := InsertPrediction(db, e); err != nil {
			t.Fatalf("InsertPrediction failed: %v", err)
		}
	}

	recent, err := GetRecentPredictions(db, 2)
	if err != nil {
		t.Fatalf("GetRecentPredictions failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(recent))
	}
	// Newest first.
	if recent[0].Inputs != "age=90 sex=1" {
		t.Fatalf("unexpected newest row: %q", recent[0].Inputs)
	}
	if recent[1].ImputedCount != 2 {
		t.Fatalf("unexpected imputed count: %d", recent[1].ImputedCount)
	}
}

func TestGetPredictionStats(t *testing.T) {
	db := newTestDB(t)

	for _, e := range []PredictionEntry{
		{Inputs: "a", ITE: 0.10, Recommendation: string(RecommendTreat)},
		{Inputs: "b", ITE: 0.08, Recommendation: string(RecommendTreat)},
		{Inputs: "c", ITE: -0.10, Recommendation: string(RecommendWithhold)},
		{Inputs: "d", ITE: 0.00, Recommendation: string(RecommendNeutral)},
	} {
		if err := InsertPrediction(db, e); err != nil {
			t.Fatalf("InsertPrediction failed: %v", err)
		}
	}

	stats, err := GetPredictionStats(db, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("GetPredictionStats failed: %v", err)
	}
	if stats.Total != 4 || stats.Treat != 2 || stats.Withhold != 1 || stats.Neutral != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.AvgITE < 0.019 || stats.AvgITE > 0.021 {
		t.Fatalf("unexpected avg ITE: %v", stats.AvgITE)
	}
}

func TestPrunePredictions(t *testing.T) {
	db := newTestDB(t)

	old := time.Now().UTC().AddDate(0, 0, -120)
	if _, err := db.Exec(
		`INSERT INTO predictions (inputs, ite, recommendation, created_at) VALUES (?, ?, ?, ?)`,
		"stale", 0.01, string(RecommendNeutral), old,
	); err != nil {
		t.Fatalf("insert stale row: %v", err)
	}
	if err := InsertPrediction(db, PredictionEntry{
		Inputs: "fresh", ITE: 0.10, Recommendation: string(RecommendTreat),
	}); err != nil {
		t.Fatalf("InsertPrediction failed: %v", err)
	}

	pruned, err := PrunePredictions(db, time.Now().UTC().AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("PrunePredictions failed: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected 1 pruned row, got %d", pruned)
	}

	remaining, err := GetRecentPredictions(db, 10)
	if err != nil {
		t.Fatalf("GetRecentPredictions failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Inputs != "fresh" {
		t.Fatalf("unexpected remaining rows: %+v", remaining)
	}
}

func TestRunMaintenancePrunesByRetention(t *testing.T) {
	db := newTestDB(t)
	cfg := Config{RetentionDays: 30}

	old := time.Now().UTC().AddDate(0, 0, -45)
	if _, err := db.Exec(
		`INSERT INTO predictions (inputs, ite, recommendation, created_at) VALUES (?, ?, ?, ?)`,
		"stale", 0.01, string(RecommendNeutral), old,
	); err != nil {
		t.Fatalf("insert stale row: %v", err)
	}
	if err := InsertPrediction(db, PredictionEntry{
		Inputs: "fresh", ITE: 0.10, Recommendation: string(RecommendTreat),
	}); err != nil {
		t.Fatalf("InsertPrediction failed: %v", err)
	}

	RunMaintenance(cfg, db, time.Now().UTC())

	remaining, err := GetRecentPredictions(db, 10)
	if err != nil {
		t.Fatalf("GetRecentPredictions failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Inputs != "fresh" {
		t.Fatalf("expected only the fresh row to survive, got %+v", remaining)
	}
}
