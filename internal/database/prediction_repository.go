package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aioracle/aioracle/internal/models"
)

// ErrNotFound is returned when no prediction matches a lookup.
var ErrNotFound = errors.New("prediction not found")

const predictionColumns = `id, timestamp, agi_date, agi_type, agi_prob, asi_date, asi_context, singularity_date, singularity_prob`

// PredictionRepository is the append-only prediction log.
type PredictionRepository struct {
	db *DB
}

// NewPredictionRepository creates a new prediction repository.
func NewPredictionRepository(db *DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Save appends a prediction. Ids are UUIDv7 so rows saved within the same
// second still order by insertion.
func (r *PredictionRepository) Save(ctx context.Context, p models.Prediction) (models.PredictionRecord, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return models.PredictionRecord{}, fmt.Errorf("failed to generate prediction id: %w", err)
	}

	query := r.db.Rebind(`
		INSERT INTO predictions (` + predictionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err = r.db.ExecContext(ctx, query,
		id.String(),
		p.Timestamp,
		p.AGIDate,
		p.AGIType,
		p.AGIProb,
		p.ASIDate,
		p.ASIContext,
		p.SingularityDate,
		p.SingularityProb,
	)
	if err != nil {
		return models.PredictionRecord{}, fmt.Errorf("failed to save prediction: %w", err)
	}

	return models.PredictionRecord{ID: id.String(), Prediction: p}, nil
}

// History returns up to limit predictions, newest first.
func (r *PredictionRepository) History(ctx context.Context, limit int) ([]models.PredictionRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	query := r.db.Rebind(`
		SELECT ` + predictionColumns + `
		FROM predictions
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	records := []models.PredictionRecord{}
	for rows.Next() {
		rec, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Latest returns the most recent prediction or ErrNotFound.
func (r *PredictionRepository) Latest(ctx context.Context) (models.PredictionRecord, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	`

	rec, err := scanPrediction(r.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return models.PredictionRecord{}, ErrNotFound
	}
	return rec, err
}

// Count returns the number of stored predictions.
func (r *PredictionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM predictions").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPrediction(s scanner) (models.PredictionRecord, error) {
	var rec models.PredictionRecord
	err := s.Scan(
		&rec.ID,
		&rec.Timestamp,
		&rec.AGIDate,
		&rec.AGIType,
		&rec.AGIProb,
		&rec.ASIDate,
		&rec.ASIContext,
		&rec.SingularityDate,
		&rec.SingularityProb,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("failed to scan prediction: %w", err)
	}
	return rec, nil
}
